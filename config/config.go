// Package config loads multiplet job files. A job names the entity source,
// the identifier and group columns, how pair weights and compatibility are
// computed, and the matching parameters.
//
// Jobs are YAML (.yaml, .yml) or TOML (.toml); both use the same snake_case
// keys. Expressions are Lua source evaluated per row (see expr.CompileLua).
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrUnknownExtension indicates a job file that is neither YAML nor TOML.
var ErrUnknownExtension = errors.New("config: unknown job file extension")

// Job is one multiplet run.
type Job struct {
	Input       Input  `yaml:"input" toml:"input"`
	IDColumn    string `yaml:"id_column" toml:"id_column" validate:"required"`
	GroupColumn string `yaml:"group_column" toml:"group_column" validate:"required,nefield=IDColumn"`
	// MaxGroups caps the number of groups; 0 keeps the library default and
	// a negative value disables the cap.
	MaxGroups   int    `yaml:"max_groups" toml:"max_groups"`
	IndexColumn string `yaml:"index_column" toml:"index_column"`

	Edges  Edges  `yaml:"edges" toml:"edges"`
	Match  Match  `yaml:"match" toml:"match"`
	Greedy Greedy `yaml:"greedy" toml:"greedy"`
}

// Input describes where entities come from. Path is a file for csv/jsonl;
// for sql, DSN and Query are required and Driver defaults to postgres.
type Input struct {
	Format     string   `yaml:"format" toml:"format" validate:"omitempty,oneof=csv jsonl ndjson json sql"`
	Path       string   `yaml:"path" toml:"path" validate:"required_unless=Format sql"`
	Comma      string   `yaml:"comma" toml:"comma" validate:"omitempty,len=1"`
	NullValues []string `yaml:"null_values" toml:"null_values"`
	Strings    []string `yaml:"strings" toml:"strings"`
	Driver     string   `yaml:"driver" toml:"driver"`
	DSN        string   `yaml:"dsn" toml:"dsn" validate:"required_if=Format sql"`
	Query      string   `yaml:"query" toml:"query" validate:"required_if=Format sql"`
}

// Edges configures hyperedge construction.
type Edges struct {
	// Weight is a Lua expression over the pair row (attributes suffixed _A
	// and _B). Empty means 0.
	Weight string `yaml:"weight" toml:"weight"`
	// Filter is a Lua boolean expression; Threshold keeps pairs with
	// weight ≤ Threshold. At most one of them may be set.
	Filter       string   `yaml:"filter" toml:"filter" validate:"excluded_with=Threshold"`
	Threshold    *float64 `yaml:"threshold" toml:"threshold"`
	Aggregator   string   `yaml:"aggregator" toml:"aggregator" validate:"omitempty,oneof=sum max min mean"`
	WeightColumn string   `yaml:"weight_column" toml:"weight_column"`
}

// Match configures the exact strategies.
type Match struct {
	Multiplier      float64 `yaml:"multiplier" toml:"multiplier" validate:"gte=0"`
	Penalty         float64 `yaml:"penalty" toml:"penalty" validate:"gte=0"`
	ForceSetPacking bool    `yaml:"force_set_packing" toml:"force_set_packing"`
	MaxTime         string  `yaml:"max_time" toml:"max_time" validate:"omitempty,duration"`
	Verbose         int     `yaml:"verbose" toml:"verbose" validate:"gte=0"`
}

// MaxTimeDuration parses MaxTime; empty is 0 (no limit).
func (m Match) MaxTimeDuration() time.Duration {
	d, _ := time.ParseDuration(m.MaxTime)
	return d
}

// Greedy configures the randomized search.
type Greedy struct {
	Attempts      int    `yaml:"attempts" toml:"attempts" validate:"gte=0"`
	Preference    string `yaml:"preference" toml:"preference"`
	SetAggregator string `yaml:"set_aggregator" toml:"set_aggregator" validate:"omitempty,oneof=sum max min mean"`
	Seed          int64  `yaml:"seed" toml:"seed"`
	Workers       int    `yaml:"workers" toml:"workers" validate:"gte=0"`
	TopK          int    `yaml:"top_k" toml:"top_k" validate:"gte=0"`
	Verbose       int    `yaml:"verbose" toml:"verbose" validate:"gte=0"`
}

// validate is a singleton validator instance
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("duration", func(fl validator.FieldLevel) bool {
		_, err := time.ParseDuration(fl.Field().String())
		return err == nil
	})
	return v
}

// Load reads and validates a job file, choosing the decoder by extension.
func Load(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	job, err := Decode(bytes.NewReader(data), filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return job, nil
}

// Decode reads a job from r; ext is ".yaml", ".yml" or ".toml". Unknown
// keys are errors.
func Decode(r io.Reader, ext string) (*Job, error) {
	var job Job
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&job); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("yaml: %w", err)
		}
	case ".toml":
		md, err := toml.NewDecoder(r).Decode(&job)
		if err != nil {
			return nil, fmt.Errorf("toml: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("toml: unknown key %q", undecoded[0].String())
		}
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownExtension, ext)
	}

	if err := job.Validate(); err != nil {
		return nil, err
	}
	return &job, nil
}

// Validate checks the struct tags and returns the first violation in a
// readable form.
func (j *Job) Validate() error {
	return formatValidationError(validate.Struct(j))
}

func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	// Return the first validation error in a user-friendly format
	for _, e := range validationErrs {
		field := e.Namespace()
		param := e.Param()

		switch e.Tag() {
		case "required", "required_if", "required_unless":
			return fmt.Errorf("config: %s: field is required", field)
		case "oneof":
			return fmt.Errorf("config: %s: must be one of [%s]", field, param)
		case "gte":
			return fmt.Errorf("config: %s: must be at least %s", field, param)
		case "nefield":
			return fmt.Errorf("config: %s: must differ from %s", field, param)
		case "excluded_with":
			return fmt.Errorf("config: %s: cannot be combined with %s", field, param)
		case "duration":
			return fmt.Errorf("config: %s: %q is not a duration", field, e.Value())
		default:
			return fmt.Errorf("config: %s: validation failed (%s)", field, e.Tag())
		}
	}

	return err
}
