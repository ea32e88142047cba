// Package bibtex reads and writes BibTeX bibliography files.
package bibtex

import (
	"errors"
	"fmt"
	"strings"
)

// Person roles stored as structured name lists rather than plain fields.
const (
	RoleAuthor = "author"
	RoleEditor = "editor"
)

// Roles lists the person roles in the order they are written.
var Roles = []string{RoleAuthor, RoleEditor}

// IsPersonRole reports whether a field name holds a person list.
func IsPersonRole(name string) bool {
	return name == RoleAuthor || name == RoleEditor
}

// ErrDuplicateKey is returned when two entries share a citation key.
var ErrDuplicateKey = errors.New("duplicate entry key")

// Field is a single named field value. Values are kept as raw LaTeX text
// without the enclosing braces or quotes.
type Field struct {
	Name  string
	Value string
}

// Entry is one bibliographic record.
type Entry struct {
	Key     string
	Type    string // lower-cased, e.g. "article"
	Fields  []Field
	Persons map[string][]Person
}

// NewEntry creates an empty entry of the given type.
func NewEntry(entryType, key string) *Entry {
	return &Entry{
		Key:     key,
		Type:    strings.ToLower(entryType),
		Persons: make(map[string][]Person),
	}
}

// Get returns the value of a field and whether it is present.
func (e *Entry) Get(name string) (string, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Has reports whether the entry has the named field.
func (e *Entry) Has(name string) bool {
	_, ok := e.Get(name)
	return ok
}

// Set replaces the value of a field, or appends it if absent.
func (e *Entry) Set(name, value string) {
	for i := range e.Fields {
		if e.Fields[i].Name == name {
			e.Fields[i].Value = value
			return
		}
	}
	e.Fields = append(e.Fields, Field{Name: name, Value: value})
}

// FieldNames returns field names in order.
func (e *Entry) FieldNames() []string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Name
	}
	return names
}

// PersonsFor returns the person list for a role (nil if none).
func (e *Entry) PersonsFor(role string) []Person {
	return e.Persons[role]
}

// SetPersons stores a copy of the person list for a role.
// An empty list removes the role.
func (e *Entry) SetPersons(role string, persons []Person) {
	if e.Persons == nil {
		e.Persons = make(map[string][]Person)
	}
	if len(persons) == 0 {
		delete(e.Persons, role)
		return
	}
	e.Persons[role] = append([]Person(nil), persons...)
}

// Clone returns a deep copy of the entry.
func (e *Entry) Clone() *Entry {
	c := &Entry{
		Key:     e.Key,
		Type:    e.Type,
		Fields:  append([]Field(nil), e.Fields...),
		Persons: make(map[string][]Person, len(e.Persons)),
	}
	for role, ps := range e.Persons {
		c.Persons[role] = append([]Person(nil), ps...)
	}
	return c
}

// Bibliography is an ordered collection of entries keyed by citation key.
type Bibliography struct {
	entries []*Entry
	byKey   map[string]*Entry
}

// NewBibliography creates an empty bibliography.
func NewBibliography() *Bibliography {
	return &Bibliography{byKey: make(map[string]*Entry)}
}

// Add appends an entry. Keys must be unique.
func (b *Bibliography) Add(e *Entry) error {
	if _, exists := b.byKey[e.Key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateKey, e.Key)
	}
	b.entries = append(b.entries, e)
	b.byKey[e.Key] = e
	return nil
}

// Get returns the entry with the given key.
func (b *Bibliography) Get(key string) (*Entry, bool) {
	e, ok := b.byKey[key]
	return e, ok
}

// Entries returns the entries in insertion order.
func (b *Bibliography) Entries() []*Entry {
	return append([]*Entry(nil), b.entries...)
}

// Keys returns the citation keys in insertion order.
func (b *Bibliography) Keys() []string {
	keys := make([]string, len(b.entries))
	for i, e := range b.entries {
		keys[i] = e.Key
	}
	return keys
}

// Len returns the number of entries.
func (b *Bibliography) Len() int {
	return len(b.entries)
}
