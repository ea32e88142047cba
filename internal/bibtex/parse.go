package bibtex

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// ParseError reports malformed BibTeX input.
type ParseError struct {
	Line int
	Msg  string
	// Err is the underlying error, if any (e.g. ErrDuplicateKey).
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// monthMacros are the predefined @string abbreviations.
var monthMacros = map[string]string{
	"jan": "January",
	"feb": "February",
	"mar": "March",
	"apr": "April",
	"may": "May",
	"jun": "June",
	"jul": "July",
	"aug": "August",
	"sep": "September",
	"oct": "October",
	"nov": "November",
	"dec": "December",
}

// ParseFile parses a .bib file.
func ParseFile(path string) (*Bibliography, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads BibTeX text. Entries keep the order in which they appear.
// Entry types and field names are lower-cased; field values have their
// whitespace collapsed. @comment and @preamble blocks are skipped, @string
// macros are expanded.
func Parse(r io.Reader) (*Bibliography, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	p := &parser{
		src:    string(data),
		macros: make(map[string]string),
		bib:    NewBibliography(),
	}
	if err := p.parse(); err != nil {
		return nil, err
	}
	return p.bib, nil
}

type parser struct {
	src    string
	pos    int
	macros map[string]string
	bib    *Bibliography
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return &ParseError{Line: p.line(), Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) wrap(err error) error {
	return &ParseError{Line: p.line(), Msg: err.Error(), Err: err}
}

func (p *parser) line() int {
	return strings.Count(p.src[:p.pos], "\n") + 1
}

func (p *parser) parse() error {
	for {
		at := strings.IndexByte(p.src[p.pos:], '@')
		if at < 0 {
			return nil
		}
		p.pos += at + 1
		if err := p.parseBlock(); err != nil {
			return err
		}
	}
}

// parseBlock parses everything after an '@'. An '@' that is not followed
// by a type name and an opening delimiter is free text and is skipped.
func (p *parser) parseBlock() error {
	start := p.pos
	p.skipSpace()
	blockType := strings.ToLower(p.readIdent())
	p.skipSpace()
	if blockType == "" || p.eof() || (p.src[p.pos] != '{' && p.src[p.pos] != '(') {
		p.pos = start
		return nil
	}

	closer, err := p.openDelim()
	if err != nil {
		return err
	}

	switch blockType {
	case "comment":
		return p.skipUntilClose(closer)
	case "preamble":
		if _, err := p.parseValue(); err != nil {
			return err
		}
		return p.expect(closer)
	case "string":
		return p.parseMacro(closer)
	default:
		return p.parseEntry(blockType, closer)
	}
}

func (p *parser) openDelim() (byte, error) {
	if p.eof() {
		return 0, p.errorf("unexpected end of input")
	}
	switch p.src[p.pos] {
	case '{':
		p.pos++
		return '}', nil
	case '(':
		p.pos++
		return ')', nil
	}
	return 0, p.errorf("expected '{' or '(' but found %q", p.src[p.pos])
}

func (p *parser) parseMacro(closer byte) error {
	p.skipSpace()
	name := strings.ToLower(p.readIdent())
	if name == "" {
		return p.errorf("expected @string name")
	}
	p.skipSpace()
	if err := p.expect('='); err != nil {
		return err
	}
	value, err := p.parseValue()
	if err != nil {
		return err
	}
	p.macros[name] = value
	p.skipSpace()
	return p.expect(closer)
}

func (p *parser) parseEntry(entryType string, closer byte) error {
	p.skipSpace()
	start := p.pos
	for !p.eof() && p.src[p.pos] != ',' && p.src[p.pos] != closer && !isSpace(p.src[p.pos]) {
		p.pos++
	}
	key := p.src[start:p.pos]
	if key == "" {
		return p.errorf("missing citation key for @%s", entryType)
	}

	entry := NewEntry(entryType, key)
	p.skipSpace()
	for {
		if p.eof() {
			return p.errorf("unterminated entry %q", key)
		}
		if p.src[p.pos] == closer {
			p.pos++
			break
		}
		if err := p.expect(','); err != nil {
			return err
		}
		p.skipSpace()
		if !p.eof() && p.src[p.pos] == closer {
			p.pos++
			break
		}
		if err := p.parseField(entry); err != nil {
			return err
		}
		p.skipSpace()
	}

	if err := p.bib.Add(entry); err != nil {
		return p.wrap(err)
	}
	return nil
}

func (p *parser) parseField(entry *Entry) error {
	name := strings.ToLower(p.readIdent())
	if name == "" {
		return p.errorf("expected field name in entry %q", entry.Key)
	}
	p.skipSpace()
	if err := p.expect('='); err != nil {
		return err
	}
	value, err := p.parseValue()
	if err != nil {
		return err
	}

	if IsPersonRole(name) {
		if _, dup := entry.Persons[name]; dup {
			return p.errorf("duplicate field %q in entry %q", name, entry.Key)
		}
		entry.Persons[name] = ParsePersons(value)
		return nil
	}
	if entry.Has(name) {
		return p.errorf("duplicate field %q in entry %q", name, entry.Key)
	}
	entry.Fields = append(entry.Fields, Field{Name: name, Value: value})
	return nil
}

// parseValue reads a possibly '#'-concatenated value.
func (p *parser) parseValue() (string, error) {
	var b strings.Builder
	for {
		p.skipSpace()
		if p.eof() {
			return "", p.errorf("unexpected end of input in value")
		}
		var part string
		var err error
		switch c := p.src[p.pos]; {
		case c == '{':
			part, err = p.readBraced()
		case c == '"':
			part, err = p.readQuoted()
		case c >= '0' && c <= '9':
			part = p.readDigits()
		default:
			part, err = p.readMacroRef()
		}
		if err != nil {
			return "", err
		}
		b.WriteString(part)

		p.skipSpace()
		if p.eof() || p.src[p.pos] != '#' {
			break
		}
		p.pos++
	}
	return collapseSpace(b.String()), nil
}

func (p *parser) readBraced() (string, error) {
	start := p.pos + 1
	depth := 0
	for ; !p.eof(); p.pos++ {
		switch p.src[p.pos] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				s := p.src[start:p.pos]
				p.pos++
				return s, nil
			}
		}
	}
	return "", p.errorf("unbalanced braces")
}

func (p *parser) readQuoted() (string, error) {
	p.pos++
	start := p.pos
	depth := 0
	for ; !p.eof(); p.pos++ {
		switch p.src[p.pos] {
		case '{':
			depth++
		case '}':
			depth--
		case '"':
			if depth == 0 {
				s := p.src[start:p.pos]
				p.pos++
				return s, nil
			}
		}
	}
	return "", p.errorf("unterminated quoted value")
}

func (p *parser) readDigits() string {
	start := p.pos
	for !p.eof() && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *parser) readMacroRef() (string, error) {
	name := strings.ToLower(p.readIdent())
	if name == "" {
		return "", p.errorf("expected value but found %q", p.src[p.pos])
	}
	if v, ok := p.macros[name]; ok {
		return v, nil
	}
	if v, ok := monthMacros[name]; ok {
		return v, nil
	}
	return "", p.errorf("undefined macro %q", name)
}

// skipUntilClose skips a block body up to its matching closer.
func (p *parser) skipUntilClose(closer byte) error {
	open := byte('{')
	if closer == ')' {
		open = '('
	}
	depth := 1
	for ; !p.eof(); p.pos++ {
		switch p.src[p.pos] {
		case open:
			depth++
		case closer:
			depth--
			if depth == 0 {
				p.pos++
				return nil
			}
		}
	}
	return p.errorf("unterminated @comment")
}

func (p *parser) readIdent() string {
	start := p.pos
	for !p.eof() && isIdentChar(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *parser) expect(c byte) error {
	if p.eof() {
		return p.errorf("expected %q but reached end of input", c)
	}
	if p.src[p.pos] != c {
		return p.errorf("expected %q but found %q", c, p.src[p.pos])
	}
	p.pos++
	return nil
}

func (p *parser) skipSpace() {
	for !p.eof() && isSpace(p.src[p.pos]) {
		p.pos++
	}
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func isIdentChar(c byte) bool {
	if isSpace(c) {
		return false
	}
	return !strings.ContainsRune(`"#%'(),={}@`, rune(c))
}

// collapseSpace replaces whitespace runs with a single space.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
