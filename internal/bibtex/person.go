package bibtex

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Person is a structured BibTeX name.
type Person struct {
	First string // given names
	Von   string // lower-case particles, e.g. "van der"
	Last  string // family name
	Jr    string // lineage, e.g. "Jr."
}

// ParsePersons splits a name list on the top-level "and" separator.
func ParsePersons(s string) []Person {
	var persons []Person
	var current []string
	for _, w := range splitWords(s) {
		if strings.EqualFold(w, "and") {
			if len(current) > 0 {
				persons = append(persons, ParsePerson(strings.Join(current, " ")))
			}
			current = nil
			continue
		}
		current = append(current, w)
	}
	if len(current) > 0 {
		persons = append(persons, ParsePerson(strings.Join(current, " ")))
	}
	return persons
}

// ParsePerson parses one name in any of the three BibTeX forms:
// "First von Last", "von Last, First" and "von Last, Jr, First".
func ParsePerson(s string) Person {
	parts := splitTopLevel(s, ',')
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	switch len(parts) {
	case 1:
		return parseFirstVonLast(splitWords(parts[0]))
	case 2:
		p := parseVonLast(splitWords(parts[0]))
		p.First = parts[1]
		return p
	default:
		p := parseVonLast(splitWords(parts[0]))
		p.Jr = parts[1]
		p.First = strings.Join(parts[2:], ", ")
		return p
	}
}

// parseFirstVonLast handles the comma-free form. The last word is always
// part of the last name.
func parseFirstVonLast(words []string) Person {
	n := len(words)
	if n == 0 {
		return Person{}
	}
	if n == 1 {
		return Person{Last: words[0]}
	}

	start := -1
	for i := 0; i < n-1; i++ {
		if isVonWord(words[i]) {
			start = i
			break
		}
	}
	if start < 0 {
		return Person{
			First: strings.Join(words[:n-1], " "),
			Last:  words[n-1],
		}
	}

	end := start
	for i := start; i < n-1; i++ {
		if isVonWord(words[i]) {
			end = i
		}
	}
	return Person{
		First: strings.Join(words[:start], " "),
		Von:   strings.Join(words[start:end+1], " "),
		Last:  strings.Join(words[end+1:], " "),
	}
}

// parseVonLast splits the part before the first comma.
func parseVonLast(words []string) Person {
	n := len(words)
	end := -1
	for i := 0; i < n-1; i++ {
		if isVonWord(words[i]) {
			end = i
		}
	}
	if end < 0 {
		return Person{Last: strings.Join(words, " ")}
	}
	return Person{
		Von:  strings.Join(words[:end+1], " "),
		Last: strings.Join(words[end+1:], " "),
	}
}

// String formats the name as "von Last, Jr, First".
func (p Person) String() string {
	name := p.Last
	if p.Von != "" {
		name = p.Von + " " + name
	}
	switch {
	case p.Jr != "":
		name += ", " + p.Jr + ", " + p.First
	case p.First != "":
		name += ", " + p.First
	}
	return strings.TrimSpace(name)
}

// FormatPersons formats a name list in BibTeX style: "Last, First and Last, First".
func FormatPersons(persons []Person) string {
	formatted := make([]string, len(persons))
	for i, p := range persons {
		formatted[i] = p.String()
	}
	return strings.Join(formatted, " and ")
}

// isVonWord reports whether a word starts with a lower-case letter.
// Braced words are never particles.
func isVonWord(w string) bool {
	r, _ := utf8.DecodeRuneInString(w)
	return unicode.IsLower(r)
}

// splitWords splits on whitespace outside braces.
func splitWords(s string) []string {
	var words []string
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '{':
			depth++
		case r == '}':
			if depth > 0 {
				depth--
			}
		case unicode.IsSpace(r) && depth == 0:
			if b.Len() > 0 {
				words = append(words, b.String())
				b.Reset()
			}
			continue
		}
		b.WriteRune(r)
	}
	if b.Len() > 0 {
		words = append(words, b.String())
	}
	return words
}

// splitTopLevel splits on sep outside braces.
func splitTopLevel(s string, sep rune) []string {
	var parts []string
	depth := 0
	last := 0
	for i, r := range s {
		switch {
		case r == '{':
			depth++
		case r == '}':
			if depth > 0 {
				depth--
			}
		case r == sep && depth == 0:
			parts = append(parts, s[last:i])
			last = i + utf8.RuneLen(r)
		}
	}
	return append(parts, s[last:])
}
