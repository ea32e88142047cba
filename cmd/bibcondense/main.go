// Package main provides the bibcondense CLI entry point.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/bibcondense/internal/config"
	"github.com/matsen/bibcondense/internal/logging"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	configPath  string
	logLevel    string

	// cfg is loaded before any command runs
	cfg *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Errors are printed here since we have SilenceErrors: true
		reportError(err)
		os.Exit(exitCode(err))
	}
}

var rootCmd = &cobra.Command{
	Use:   "bibcondense <input_bib> <input_short_names>",
	Short: "Condense BibTeX data with short venue names and selected fields",
	Long: `Condense BibTeX data (*.bib) by using shorter names for the venue (e.g.,
journal, booktitle) and/or including selected fields in the entry.

Shortening venue names:
  Short venue names come from a CSV file maintained by the user, with a
  header row containing the columns original_value and short_value.
  Abbreviations generally follow the LTWA (List of Title Word
  Abbreviations), which is based on ISO 4; DBLP and the Web of Science
  list are good sources. Every venue must have a short name: unknown
  venues are listed and nothing is written.

Field selection:
  With --select_fields, only a minimal set of fields is kept for each
  entry type (see 'bibcondense policy'). Entries of other types are
  written unchanged to UNRECOGNIZED_<input_bib>.

  Whenever possible, prefer changing the bibliography options of your
  LaTeX document over modifying the bibliography data.

Output:
  <input_bib without .bib>.condensed.bib next to the input file.

Examples:
  bibcondense refs.bib short_names.csv
  bibcondense refs.bib short_names.csv --select_fields
  bibcondense refs.bib short_names.csv --config bibcondense.yml --human`,
	Args:          cobra.ExactArgs(2),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("%w: %w", errConfig, err)
		}
		cfg = loaded

		level, err := resolveLogLevel(cfg, logLevel, cmd.Flags().Changed("log-level"))
		if err != nil {
			return err
		}
		logging.Init(os.Stderr, level, !humanOutput)
		return nil
	},
	RunE: runCondense,
}

// resolveLogLevel picks the --log-level flag when given, else the config value.
func resolveLogLevel(cfg *config.Config, flagValue string, flagSet bool) (slog.Level, error) {
	if !flagSet {
		level, err := logging.ParseLevel(cfg.LogLevel)
		if err != nil {
			return level, fmt.Errorf("%w: %w", errConfig, err)
		}
		return level, nil
	}
	level, err := logging.ParseLevel(flagValue)
	if err != nil {
		return level, fmt.Errorf("--log-level: %w", err)
	}
	return level, nil
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "Log level (debug, info, warn, error)")
	rootCmd.Version = Version
}
