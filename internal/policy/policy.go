// Package policy defines, per BibTeX entry type, the minimal set of fields to
// keep and the field that names the publication venue.
//
// Reference: https://www.bibtex.com/format/
package policy

import (
	"fmt"
	"slices"
)

// EntryType is a lower-case BibTeX entry type.
type EntryType string

// Entry types with a built-in policy.
const (
	Book          EntryType = "book"
	InBook        EntryType = "inbook"
	InCollection  EntryType = "incollection"
	Article       EntryType = "article"
	Proceedings   EntryType = "proceedings"
	InProceedings EntryType = "inproceedings"
	Conference    EntryType = "conference"
	TechReport    EntryType = "techreport"
	PhDThesis     EntryType = "phdthesis"
	Misc          EntryType = "misc"
	Unpublished   EntryType = "unpublished"
)

// Venue field names.
const (
	FieldJournal   = "journal"
	FieldBooktitle = "booktitle"
)

// MinFields are required for every entry type.
var MinFields = []string{"title", "author", "year"}

// Policy is the field policy for one entry type.
type Policy struct {
	// Required lists the fields kept in select-fields mode, MinFields first.
	Required []string `json:"required"`
	// Venue is the field holding the venue name; empty if the type has none.
	Venue string `json:"venue,omitempty"`
}

// Requires reports whether field is in the required set.
func (p Policy) Requires(field string) bool {
	return slices.Contains(p.Required, field)
}

// HasVenue reports whether the type designates a venue field.
func (p Policy) HasVenue() bool {
	return p.Venue != ""
}

// Override changes or adds the policy for one type. Extra fields are added
// after MinFields. A nil Venue keeps the existing venue field.
type Override struct {
	Extra []string
	Venue *string
}

// Registry is an immutable lookup of policies by entry type.
type Registry struct {
	policies map[EntryType]Policy
}

// Default returns the built-in registry.
func Default() *Registry {
	return newRegistry(map[EntryType]struct {
		extra []string
		venue string
	}{
		// a book
		Book: {},
		// usually a chapter or section in a book
		InBook: {extra: []string{"booktitle"}},
		// usually an article in a collection
		InCollection: {extra: []string{"booktitle"}, venue: FieldBooktitle},
		// usually a journal article
		Article: {extra: []string{"volume", "number", "pages"}, venue: FieldJournal},
		// usually a conference proceeding
		Proceedings: {extra: []string{"editor", "booktitle"}, venue: FieldBooktitle},
		// usually an article in a conference proceeding
		InProceedings: {extra: []string{"pages"}, venue: FieldBooktitle},
		Conference:    {extra: []string{"pages"}, venue: FieldBooktitle},
		// usually a technical report
		TechReport: {},
		// usually a doctoral thesis
		PhDThesis: {extra: []string{"school"}},
		// usually an online indexable dataset or webpage
		Misc:        {extra: []string{"doi", "url"}},
		Unpublished: {extra: []string{"note"}},
	})
}

func newRegistry(table map[EntryType]struct {
	extra []string
	venue string
}) *Registry {
	r := &Registry{policies: make(map[EntryType]Policy, len(table))}
	for t, def := range table {
		r.policies[t] = Policy{Required: required(def.extra), Venue: def.venue}
	}
	return r
}

// required builds MinFields followed by the extra fields, without duplicates.
func required(extra []string) []string {
	fields := slices.Clone(MinFields)
	for _, f := range extra {
		if !slices.Contains(fields, f) {
			fields = append(fields, f)
		}
	}
	return fields
}

// Lookup returns the policy for an entry type.
func (r *Registry) Lookup(entryType string) (Policy, bool) {
	p, ok := r.policies[EntryType(entryType)]
	if !ok {
		return Policy{}, false
	}
	return Policy{Required: slices.Clone(p.Required), Venue: p.Venue}, true
}

// Types returns the known entry types in sorted order.
func (r *Registry) Types() []EntryType {
	types := make([]EntryType, 0, len(r.policies))
	for t := range r.policies {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}

// With returns a new registry with the overrides applied. The receiver is
// left unchanged.
func (r *Registry) With(overrides map[string]Override) (*Registry, error) {
	next := &Registry{policies: make(map[EntryType]Policy, len(r.policies)+len(overrides))}
	for t, p := range r.policies {
		next.policies[t] = p
	}

	for name, o := range overrides {
		if name == "" {
			return nil, fmt.Errorf("policy override with empty entry type")
		}
		t := EntryType(name)
		p, exists := next.policies[t]
		if o.Extra != nil || !exists {
			p.Required = required(o.Extra)
		}
		if o.Venue != nil {
			p.Venue = *o.Venue
		}
		if p.Venue == "author" || p.Venue == "editor" {
			return nil, fmt.Errorf("policy for %q: venue field cannot be a person list (%s)", name, p.Venue)
		}
		next.policies[t] = p
	}
	return next, nil
}
