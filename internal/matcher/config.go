// file: internal/matcher/config.go
// version: 1.0.0
// guid: 9c2de328-867e-4248-b2bd-17b38296ba1d

package matcher

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfiguration is returned when weights or options cannot be used
// for scoring.
var ErrInvalidConfiguration = errors.New("invalid matcher configuration")

// ConfigError describes which configuration field was rejected.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidConfiguration, e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfiguration }

// NoLimit disables truncation for both Search and Suggest.
const NoLimit = -1

// Defaults reproducing the catalog's historical brand search behavior.
const (
	DefaultTranspositionWeight = 0.4
	DefaultEditWeight          = 0.3
	DefaultSubstringWeight     = 0.3
	DefaultThreshold           = 0.3
	DefaultMinQueryLength      = 2
	DefaultSuggestLimit        = 10
)

// Weights controls how the three component scores are blended. The blend is
// normalized by the weight sum, so weights need not add up to 1.
type Weights struct {
	Transposition float64 `json:"transposition" mapstructure:"transposition"`
	Edit          float64 `json:"edit" mapstructure:"edit"`
	Substring     float64 `json:"substring" mapstructure:"substring"`
}

// DefaultWeights returns the default blend.
func DefaultWeights() Weights {
	return Weights{
		Transposition: DefaultTranspositionWeight,
		Edit:          DefaultEditWeight,
		Substring:     DefaultSubstringWeight,
	}
}

// NewWeights builds a validated Weights value.
func NewWeights(transposition, edit, substring float64) (Weights, error) {
	w := Weights{Transposition: transposition, Edit: edit, Substring: substring}
	if err := w.Validate(); err != nil {
		return Weights{}, err
	}
	return w, nil
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Transposition + w.Edit + w.Substring
}

// Validate rejects negative, non-finite, or all-zero weights.
func (w Weights) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"transposition_weight", w.Transposition},
		{"edit_weight", w.Edit},
		{"substring_weight", w.Substring},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return &ConfigError{Field: f.name, Reason: "must be a finite number"}
		}
		if f.value < 0 {
			return &ConfigError{Field: f.name, Reason: "must not be negative"}
		}
	}
	if w.Sum() == 0 {
		return &ConfigError{Field: "weights", Reason: "at least one weight must be positive"}
	}
	return nil
}

// Options controls normalization, filtering and truncation.
//
// Limit semantics: 0 selects the operation default (unlimited for Search,
// DefaultSuggestLimit for Suggest), NoLimit disables truncation, and a
// positive value truncates to that many results.
type Options struct {
	Threshold      float64 `json:"threshold" mapstructure:"threshold"`
	Limit          int     `json:"limit" mapstructure:"limit"`
	CaseSensitive  bool    `json:"case_sensitive" mapstructure:"case_sensitive"`
	MinQueryLength int     `json:"min_query_length" mapstructure:"min_query_length"`
}

// DefaultOptions returns case-insensitive options with the default threshold
// and minimum query length.
func DefaultOptions() Options {
	return Options{
		Threshold:      DefaultThreshold,
		MinQueryLength: DefaultMinQueryLength,
	}
}

// Validate rejects thresholds outside [0, 1], a minimum query length below 1
// and limits below NoLimit.
func (o Options) Validate() error {
	if math.IsNaN(o.Threshold) || o.Threshold < 0 || o.Threshold > 1 {
		return &ConfigError{Field: "threshold", Reason: "must be within [0, 1]"}
	}
	if o.MinQueryLength < 1 {
		return &ConfigError{Field: "min_query_length", Reason: "must be at least 1"}
	}
	if o.Limit < NoLimit {
		return &ConfigError{Field: "limit", Reason: "must be -1 (unlimited), 0 (default) or positive"}
	}
	return nil
}

// WithThreshold returns a copy of o using threshold.
func (o Options) WithThreshold(threshold float64) Options {
	o.Threshold = threshold
	return o
}

// WithLimit returns a copy of o using limit.
func (o Options) WithLimit(limit int) Options {
	o.Limit = limit
	return o
}

// Config bundles the options and weights used by a search call.
type Config struct {
	Options Options `json:"options" mapstructure:"options"`
	Weights Weights `json:"weights" mapstructure:"weights"`
}

// DefaultConfig returns the default options and weights.
func DefaultConfig() Config {
	return Config{Options: DefaultOptions(), Weights: DefaultWeights()}
}

// NewConfig validates opts and weights and bundles them.
func NewConfig(opts Options, weights Weights) (Config, error) {
	if err := opts.Validate(); err != nil {
		return Config{}, err
	}
	if err := weights.Validate(); err != nil {
		return Config{}, err
	}
	return Config{Options: opts, Weights: weights}, nil
}

// Validate checks both halves of the configuration.
func (c Config) Validate() error {
	if err := c.Options.Validate(); err != nil {
		return err
	}
	return c.Weights.Validate()
}
