package main

import (
	"errors"

	"github.com/matsen/bibcondense/internal/bibtex"
	"github.com/matsen/bibcondense/internal/condense"
	"github.com/matsen/bibcondense/internal/config"
	"github.com/matsen/bibcondense/internal/shortnames"
)

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, I/O failure)
	ExitConfigError = 2 // Configuration error (config file, short names header or duplicates)
	ExitDataError   = 3 // Data error (malformed .bib, missing venue field, unmapped venues)
)

// errConfig marks failures to load the config file.
var errConfig = errors.New("configuration error")

// exitCode maps an error returned by a command to the process exit code.
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var cfgErr *shortnames.ConfigError
	var parseErr *bibtex.ParseError
	var venueFieldErr *condense.MissingVenueFieldError
	var unmappedErr *condense.UnmappedVenueError

	switch {
	case errors.Is(err, errConfig), errors.Is(err, config.ErrInvalid), errors.As(err, &cfgErr):
		return ExitConfigError
	case errors.As(err, &parseErr), errors.As(err, &venueFieldErr), errors.As(err, &unmappedErr):
		return ExitDataError
	default:
		return ExitError
	}
}
