package bibtex

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// FormatEntry converts an entry to BibTeX text. Person lists come first
// (author, then editor), followed by the fields in order.
func FormatEntry(e *Entry) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("@%s{%s,\n", e.Type, e.Key))

	for _, role := range Roles {
		if persons := e.Persons[role]; len(persons) > 0 {
			b.WriteString(fmt.Sprintf("  %s = {%s},\n", role, FormatPersons(persons)))
		}
	}

	for _, f := range e.Fields {
		b.WriteString(fmt.Sprintf("  %s = {%s},\n", f.Name, f.Value))
	}

	b.WriteString("}\n")

	return b.String()
}

// Format converts a whole bibliography to BibTeX text.
func Format(bib *Bibliography) string {
	var entries []string
	for _, e := range bib.entries {
		entries = append(entries, FormatEntry(e))
	}
	return strings.Join(entries, "\n")
}

// Write writes a bibliography to w.
func Write(w io.Writer, bib *Bibliography) error {
	_, err := io.WriteString(w, Format(bib))
	return err
}

// WriteFile writes a bibliography to path, replacing any existing file.
func WriteFile(path string, bib *Bibliography) error {
	if err := os.WriteFile(path, []byte(Format(bib)), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
