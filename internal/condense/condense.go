// Package condense shortens venue names in bibliography entries and,
// optionally, reduces every entry to the minimal field set of its type.
package condense

import (
	"log/slog"

	"github.com/matsen/bibcondense/internal/bibtex"
	"github.com/matsen/bibcondense/internal/policy"
)

// NameLookup resolves an original venue name to its short name.
type NameLookup interface {
	Lookup(name string) (string, bool)
}

// Options controls condensation.
type Options struct {
	// SelectFields keeps only the required fields of each entry type.
	SelectFields bool
}

// Condenser applies a name map and a field policy to entries.
type Condenser struct {
	names    NameLookup
	policies *policy.Registry
	opts     Options
}

// New creates a Condenser.
func New(names NameLookup, policies *policy.Registry, opts Options) *Condenser {
	return &Condenser{names: names, policies: policies, opts: opts}
}

// Outcome is the result of condensing one entry.
type Outcome struct {
	// Entry is the condensed entry; nil when Unrecognized.
	Entry *bibtex.Entry
	// Unmapped is set when the venue name has no short name.
	Unmapped bool
	// UnmappedVenue is that venue name. It may be empty.
	UnmappedVenue string
	// Unrecognized is set in select-fields mode for types with no policy.
	Unrecognized bool
}

// Entry condenses a single entry. The input is never modified.
//
// The venue field of the entry's type is looked up in the name map and
// replaced by its short name. An unmapped venue is reported in the outcome
// and the original value is kept. A missing venue field is an error, as is an
// unknown entry type outside select-fields mode.
func (c *Condenser) Entry(e *bibtex.Entry) (Outcome, error) {
	pol, known := c.policies.Lookup(e.Type)
	if !known {
		if c.opts.SelectFields {
			return Outcome{Unrecognized: true}, nil
		}
		return Outcome{}, &MissingVenueFieldError{Key: e.Key, Type: e.Type}
	}

	var out Outcome
	venue := ""
	if pol.HasVenue() {
		value, ok := e.Get(pol.Venue)
		if !ok {
			return Outcome{}, &MissingVenueFieldError{Key: e.Key, Type: e.Type, Field: pol.Venue}
		}
		if short, mapped := c.names.Lookup(value); mapped {
			venue = short
		} else {
			venue = value
			out.Unmapped = true
			out.UnmappedVenue = value
		}
	} else {
		slog.Debug("no venue field to shorten", "key", e.Key, "type", e.Type)
	}

	condensed := bibtex.NewEntry(e.Type, e.Key)
	if c.opts.SelectFields {
		selectFields(condensed, e, pol)
	} else {
		copyFields(condensed, e, pol.Venue)
	}

	if pol.HasVenue() {
		condensed.Set(pol.Venue, venue)
	}

	out.Entry = condensed
	return out, nil
}

// copyFields copies every field except the venue, and all person lists.
func copyFields(dst, src *bibtex.Entry, venueField string) {
	for _, f := range src.Fields {
		if f.Name != venueField {
			dst.Fields = append(dst.Fields, f)
		}
	}
	for _, role := range bibtex.Roles {
		dst.SetPersons(role, src.PersonsFor(role))
	}
}

// selectFields copies the required fields other than persons and venue,
// using "" for the ones the entry lacks. Person lists are kept only for
// required roles.
func selectFields(dst, src *bibtex.Entry, pol policy.Policy) {
	for _, name := range pol.Required {
		if bibtex.IsPersonRole(name) || name == pol.Venue {
			continue
		}
		value, _ := src.Get(name)
		dst.Fields = append(dst.Fields, bibtex.Field{Name: name, Value: value})
	}
	for _, role := range bibtex.Roles {
		if pol.Requires(role) {
			dst.SetPersons(role, src.PersonsFor(role))
		}
	}
}
