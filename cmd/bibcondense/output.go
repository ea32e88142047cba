package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/matsen/bibcondense/internal/condense"
)

// separatorWidth is the width of the rules framing human-readable lists.
const separatorWidth = 80

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error          string   `json:"error"`
	UnmappedVenues []string `json:"unmapped_venues,omitempty"`
}

// CondenseResponse is the response for a condense run.
type CondenseResponse struct {
	Status             string   `json:"status"`
	Entries            int      `json:"entries"`
	Condensed          int      `json:"condensed"`
	Output             string   `json:"output,omitempty"`
	Unrecognized       []string `json:"unrecognized,omitempty"`
	UnrecognizedOutput string   `json:"unrecognized_output,omitempty"`
	DryRun             bool     `json:"dry_run,omitempty"`
}

// PolicyResponse describes the field policy of one entry type.
type PolicyResponse struct {
	Type     string   `json:"type"`
	Required []string `json:"required"`
	Venue    string   `json:"venue,omitempty"`
}

// reportError outputs an error in the appropriate format (human or JSON).
// Unmapped venues are listed one per line so they can be pasted into the
// short names table.
func reportError(err error) {
	var unmapped *condense.UnmappedVenueError
	isUnmapped := errors.As(err, &unmapped)

	if !humanOutput {
		resp := ErrorResponse{Error: err.Error()}
		if isUnmapped {
			resp.Error = "venue names without a short name"
			resp.UnmappedVenues = unmapped.Venues
		}
		outputJSON(resp)
		return
	}

	if !isUnmapped {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		return
	}

	rule := strings.Repeat("=", separatorWidth)
	fmt.Fprintf(os.Stderr, "There are %d venue names without a short name:\n", len(unmapped.Venues))
	fmt.Fprintln(os.Stderr, rule)
	for _, v := range unmapped.Venues {
		if v == "" {
			v = `""`
		}
		fmt.Fprintln(os.Stderr, v)
	}
	fmt.Fprintln(os.Stderr, rule)
	fmt.Fprintln(os.Stderr, "error: add them to the short names table and run this again")
}

// printCondenseHuman prints a run summary.
func printCondenseHuman(resp CondenseResponse) {
	outputHuman("Read %d entries\n", resp.Entries)
	if resp.DryRun {
		outputHuman("Would condense %d entries into %s\n", resp.Condensed, resp.Output)
	} else {
		outputHuman("Condensed %d entries into %s\n", resp.Condensed, resp.Output)
	}

	if len(resp.Unrecognized) == 0 {
		return
	}
	outputHuman("%s\n", strings.Repeat("-", separatorWidth))
	outputHuman("%d entries have a type with no field policy: %s\n",
		len(resp.Unrecognized), formatIDList(resp.Unrecognized))
	if resp.DryRun {
		outputHuman("Would write them unchanged to %s\n", resp.UnrecognizedOutput)
	} else {
		outputHuman("Wrote them unchanged to %s\n", resp.UnrecognizedOutput)
	}
}

// printPoliciesHuman prints the policy table with aligned columns.
func printPoliciesHuman(policies []PolicyResponse) {
	outputHuman("%-15s %-10s %s\n", "TYPE", "VENUE", "REQUIRED FIELDS")
	for _, p := range policies {
		venue := p.Venue
		if venue == "" {
			venue = "-"
		}
		outputHuman("%-15s %-10s %s\n", p.Type, venue, strings.Join(p.Required, ", "))
	}
}

// formatIDList formats a list of IDs as a comma-separated string.
func formatIDList(ids []string) string {
	return strings.Join(ids, ", ")
}
