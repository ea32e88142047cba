package condense

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/matsen/bibcondense/internal/bibtex"
)

// Result collects the outcome of condensing a whole bibliography.
type Result struct {
	// Condensed holds one condensed entry per processed entry, in source order.
	Condensed *bibtex.Bibliography
	// UnmappedVenues lists distinct venue names without a short name.
	UnmappedVenues []string
	// Unrecognized holds the original entries whose type has no policy.
	// Only populated in select-fields mode.
	Unrecognized *bibtex.Bibliography
	// Total is the number of entries read.
	Total int
}

// Run condenses every entry of bib in order.
//
// A missing venue field stops the run at once. Unmapped venues do not: every
// entry is still processed so that the complete list can be reported, and
// Run then returns the result together with an *UnmappedVenueError. Callers
// must not write output in that case.
func (c *Condenser) Run(bib *bibtex.Bibliography) (*Result, error) {
	res := &Result{
		Condensed:    bibtex.NewBibliography(),
		Unrecognized: bibtex.NewBibliography(),
	}
	seen := make(map[string]bool)

	for _, e := range bib.Entries() {
		res.Total++
		slog.Debug("reading entry", "key", e.Key, "type", e.Type)

		out, err := c.Entry(e)
		if err != nil {
			return nil, err
		}

		if out.Unrecognized {
			if err := res.Unrecognized.Add(e.Clone()); err != nil {
				return nil, fmt.Errorf("recording unrecognized entry: %w", err)
			}
			continue
		}

		if out.Unmapped && !seen[out.UnmappedVenue] {
			seen[out.UnmappedVenue] = true
			res.UnmappedVenues = append(res.UnmappedVenues, out.UnmappedVenue)
		}
		if err := res.Condensed.Add(out.Entry); err != nil {
			return nil, fmt.Errorf("recording condensed entry: %w", err)
		}
	}

	slog.Info("iterated through all entries",
		"entries", res.Total,
		"condensed", res.Condensed.Len(),
		"unrecognized", res.Unrecognized.Len(),
		"unmapped_venues", len(res.UnmappedVenues))

	if len(res.UnmappedVenues) > 0 {
		return res, &UnmappedVenueError{Venues: slices.Clone(res.UnmappedVenues)}
	}
	return res, nil
}
