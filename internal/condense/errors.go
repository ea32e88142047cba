package condense

import (
	"fmt"
	"strings"
)

// MissingVenueFieldError is returned when an entry lacks the venue field its
// type requires, or when its type has no policy at all. It aborts the run.
type MissingVenueFieldError struct {
	Key   string
	Type  string
	Field string // empty when the type itself is unknown
}

func (e *MissingVenueFieldError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("entry %q has type %q, for which no venue field is configured", e.Key, e.Type)
	}
	return fmt.Sprintf("entry %q of type %q has no field %q, which is expected for this entry type", e.Key, e.Type, e.Field)
}

// UnmappedVenueError lists every venue name that has no short name, in the
// order first encountered.
type UnmappedVenueError struct {
	Venues []string
}

func (e *UnmappedVenueError) Error() string {
	quoted := make([]string, len(e.Venues))
	for i, v := range e.Venues {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return fmt.Sprintf("%d venue names have no short name: %s", len(e.Venues), strings.Join(quoted, ", "))
}
