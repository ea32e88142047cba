package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/bibcondense/internal/bibtex"
	"github.com/matsen/bibcondense/internal/condense"
	"github.com/matsen/bibcondense/internal/config"
	"github.com/matsen/bibcondense/internal/shortnames"
)

var (
	condenseSelectFields bool
	condenseDryRun       bool
)

func init() {
	rootCmd.Flags().BoolVar(&condenseSelectFields, "select_fields", false, "Keep only the required fields of each entry type")
	rootCmd.Flags().BoolVar(&condenseDryRun, "dry-run", false, "Report what would be written without writing files")
}

// condenseOptions gathers the inputs of one run.
type condenseOptions struct {
	InputBib        string
	InputShortNames string
	SelectFields    bool
	DryRun          bool
}

func runCondense(cmd *cobra.Command, args []string) error {
	opts := condenseOptions{
		InputBib:        args[0],
		InputShortNames: args[1],
		SelectFields:    cfg.SelectFields,
		DryRun:          condenseDryRun,
	}
	if cmd.Flags().Changed("select_fields") {
		opts.SelectFields = condenseSelectFields
	}

	resp, err := condenseFiles(cfg, opts)
	if err != nil {
		return err
	}

	if humanOutput {
		printCondenseHuman(resp)
		return nil
	}
	return outputJSON(resp)
}

// condenseFiles runs the whole pipeline: load the short names, parse the
// bibliography, condense it and write the output files. Nothing is written
// unless every entry was condensed without error.
func condenseFiles(cfg *config.Config, opts condenseOptions) (CondenseResponse, error) {
	registry, err := cfg.Registry()
	if err != nil {
		return CondenseResponse{}, err
	}

	names, err := shortnames.Load(opts.InputShortNames, cfg.ShortNameColumns())
	if err != nil {
		return CondenseResponse{}, err
	}

	bib, err := bibtex.ParseFile(opts.InputBib)
	if err != nil {
		return CondenseResponse{}, fmt.Errorf("parsing %s: %w", opts.InputBib, err)
	}

	c := condense.New(names, registry, condense.Options{SelectFields: opts.SelectFields})
	res, err := c.Run(bib)
	if err != nil {
		return CondenseResponse{}, err
	}

	resp := CondenseResponse{
		Status:    "ok",
		Entries:   res.Total,
		Condensed: res.Condensed.Len(),
		Output:    condensedPath(opts.InputBib),
		DryRun:    opts.DryRun,
	}
	if res.Unrecognized.Len() > 0 {
		resp.Unrecognized = res.Unrecognized.Keys()
		resp.UnrecognizedOutput = unrecognizedPath(opts.InputBib)
		slog.Warn("entries with no field policy",
			"count", res.Unrecognized.Len(),
			"keys", formatIDList(resp.Unrecognized))
	}

	if opts.DryRun {
		return resp, nil
	}

	if err := bibtex.WriteFile(resp.Output, res.Condensed); err != nil {
		return CondenseResponse{}, err
	}
	slog.Info("exported condensed bibliography", "path", resp.Output)

	if resp.UnrecognizedOutput != "" {
		if err := bibtex.WriteFile(resp.UnrecognizedOutput, res.Unrecognized); err != nil {
			return CondenseResponse{}, err
		}
		slog.Info("exported unrecognized bibliography", "path", resp.UnrecognizedOutput)
	}

	return resp, nil
}

// condensedPath returns "<input without .bib>.condensed.bib".
func condensedPath(inputBib string) string {
	base := inputBib
	if ext := filepath.Ext(inputBib); strings.EqualFold(ext, ".bib") {
		base = strings.TrimSuffix(inputBib, ext)
	}
	return base + ".condensed.bib"
}

// unrecognizedPath returns "UNRECOGNIZED_<input file name>" in the input's directory.
func unrecognizedPath(inputBib string) string {
	dir, file := filepath.Split(inputBib)
	return filepath.Join(dir, "UNRECOGNIZED_"+file)
}
