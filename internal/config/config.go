// Package config handles the optional YAML configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/matsen/bibcondense/internal/policy"
	"github.com/matsen/bibcondense/internal/shortnames"
)

// Config represents the settings read from a config.yml file.
type Config struct {
	LogLevel     string                    `yaml:"log_level,omitempty" validate:"oneof=debug info warn warning error"`
	SelectFields bool                      `yaml:"select_fields,omitempty"`
	Columns      Columns                   `yaml:"columns,omitempty"`
	Policies     map[string]PolicyOverride `yaml:"policies,omitempty" validate:"dive,keys,required,bibname,endkeys"`
}

// Columns names the header columns of the short names table.
type Columns struct {
	Original string `yaml:"original,omitempty" validate:"required"`
	Short    string `yaml:"short,omitempty" validate:"required,nefield=Original"`
}

// PolicyOverride replaces or adds the field policy of one entry type.
type PolicyOverride struct {
	// Extra fields required in addition to title, author and year.
	Extra []string `yaml:"extra,omitempty" validate:"omitempty,dive,required,bibname"`
	// Venue is the venue field; nil keeps the built-in one, "" means none.
	Venue *string `yaml:"venue,omitempty"`
}

// DefaultLogLevel is used when the config does not set one.
const DefaultLogLevel = "info"

// ErrInvalid is returned when a config file fails validation.
var ErrInvalid = errors.New("invalid config")

// Default returns the configuration used without a config file.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads configuration from path. An empty path yields Default().
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML config data, fills in defaults and validates it.
// Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in default values for optional settings.
func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if cfg.Columns.Original == "" {
		cfg.Columns.Original = shortnames.DefaultOriginalColumn
	}
	if cfg.Columns.Short == "" {
		cfg.Columns.Short = shortnames.DefaultShortColumn
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report YAML key names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("bibname", isBibName)
	return v
}

// isBibName accepts BibTeX entry type and field names: no whitespace and
// none of the characters that delimit BibTeX syntax.
func isBibName(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return !strings.ContainsAny(s, " \t\n\r\"#%'(),={}@")
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	msgs := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fieldPath(e), friendlyMessage(e)))
	}
	sort.Strings(msgs)
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

// fieldPath strips the root struct name from the namespace.
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", e.Param())
	case "nefield":
		return "must differ from " + strings.ToLower(e.Param())
	case "bibname":
		return "must not contain spaces or BibTeX delimiters"
	default:
		return fmt.Sprintf("failed %s validation", e.Tag())
	}
}

// ShortNameColumns returns the configured header column names.
func (c *Config) ShortNameColumns() shortnames.Columns {
	return shortnames.Columns{Original: c.Columns.Original, Short: c.Columns.Short}
}

// Registry returns the built-in field policies with the configured
// overrides applied. Type and field names are lower-cased to match parsed
// entries.
func (c *Config) Registry() (*policy.Registry, error) {
	if len(c.Policies) == 0 {
		return policy.Default(), nil
	}

	overrides := make(map[string]policy.Override, len(c.Policies))
	for name, o := range c.Policies {
		var extra []string
		if o.Extra != nil {
			extra = make([]string, len(o.Extra))
			for i, f := range o.Extra {
				extra[i] = strings.ToLower(f)
			}
		}
		var venue *string
		if o.Venue != nil {
			v := strings.ToLower(*o.Venue)
			venue = &v
		}
		overrides[strings.ToLower(name)] = policy.Override{Extra: extra, Venue: venue}
	}

	reg, err := policy.Default().With(overrides)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return reg, nil
}
