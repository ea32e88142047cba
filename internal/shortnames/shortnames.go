// Package shortnames loads the table mapping full venue names to their
// abbreviations.
//
// In general abbreviations follow the LTWA (List of Title Word
// Abbreviations), which is based on ISO 4. DBLP and the Web of Science
// journal list are good sources of abbreviated names.
package shortnames

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Default header column names.
const (
	DefaultOriginalColumn = "original_value"
	DefaultShortColumn    = "short_value"
)

var (
	// ErrMissingColumns is returned when the header lacks a required column.
	ErrMissingColumns = errors.New("missing required header columns")
	// ErrDuplicateName is returned when an original name is defined twice.
	ErrDuplicateName = errors.New("duplicate original name")
)

// ConfigError reports a malformed or inconsistent mapping table.
type ConfigError struct {
	Path   string
	Err    error
	Detail string
}

func (e *ConfigError) Error() string {
	msg := e.Err.Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Path != "" {
		msg = e.Path + ": " + msg
	}
	return msg
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Columns names the two required header columns.
type Columns struct {
	Original string
	Short    string
}

// DefaultColumns returns the standard column names.
func DefaultColumns() Columns {
	return Columns{Original: DefaultOriginalColumn, Short: DefaultShortColumn}
}

// Map maps original venue names to short names.
type Map struct {
	short  map[string]string
	header []string
}

// New builds a map from name pairs.
func New(pairs map[string]string) *Map {
	m := &Map{
		short:  make(map[string]string, len(pairs)),
		header: []string{DefaultOriginalColumn, DefaultShortColumn},
	}
	for original, short := range pairs {
		m.short[normalizeName(original)] = short
	}
	return m
}

// Load reads a CSV mapping table from path.
func Load(path string, cols Columns) (*Map, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening short names: %w", err)
	}
	defer file.Close()

	m, err := parse(file, path, cols)
	if err != nil {
		return nil, err
	}

	slog.Info("parsed short names mapping",
		"path", path,
		"original_names", m.Len(),
		"short_names", m.DistinctShort())
	return m, nil
}

// Parse reads a CSV mapping table. The first row is the header; every later
// row maps one original name to one short name.
func Parse(r io.Reader, cols Columns) (*Map, error) {
	return parse(r, "", cols)
}

func parse(r io.Reader, path string, cols Columns) (*Map, error) {
	// Spreadsheet exports often start with a byte order mark.
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &ConfigError{Path: path, Err: ErrMissingColumns, Detail: "file is empty"}
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	origIdx := slices.Index(header, cols.Original)
	shortIdx := slices.Index(header, cols.Short)
	if origIdx < 0 || shortIdx < 0 {
		return nil, &ConfigError{
			Path:   path,
			Err:    ErrMissingColumns,
			Detail: fmt.Sprintf("want %q and %q, found %s", cols.Original, cols.Short, strings.Join(header, ", ")),
		}
	}

	m := &Map{
		short:  make(map[string]string),
		header: header,
	}
	firstSeen := make(map[string]int)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading short names: %w", err)
		}
		line, _ := reader.FieldPos(0)

		original := normalizeName(cell(record, origIdx))
		if prev, dup := firstSeen[original]; dup {
			return nil, &ConfigError{
				Path:   path,
				Err:    ErrDuplicateName,
				Detail: fmt.Sprintf("%q on lines %d and %d; each original name must map to one short name only", original, prev, line),
			}
		}
		firstSeen[original] = line
		m.short[original] = cell(record, shortIdx)
	}

	return m, nil
}

func cell(record []string, i int) string {
	if i < len(record) {
		return record[i]
	}
	return ""
}

// normalizeName puts a venue name in NFC form with single spaces, the same
// shape the BibTeX parser gives field values.
func normalizeName(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}

// Lookup returns the short name for an original venue name.
func (m *Map) Lookup(name string) (string, bool) {
	s, ok := m.short[normalizeName(name)]
	return s, ok
}

// Len returns the number of original names.
func (m *Map) Len() int {
	return len(m.short)
}

// DistinctShort returns the number of distinct short names.
func (m *Map) DistinctShort() int {
	seen := make(map[string]struct{}, len(m.short))
	for _, s := range m.short {
		seen[s] = struct{}{}
	}
	return len(seen)
}

// Header returns the header row in file order.
func (m *Map) Header() []string {
	return slices.Clone(m.header)
}
