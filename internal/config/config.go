// Package config loads and validates the CLI's JSON run configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config describes one matcher run end to end: where the holdings come
// from, which definitions to try, the search caps, and where output goes.
type Config struct {
	Underlying string `json:"underlying" validate:"required"` // e.g. "AAPL"

	// HoldingsFile points at a JSON holdings file; HoldingsURL fetches the
	// same shape over HTTP instead. Exactly one source must be set.
	HoldingsFile string `json:"holdings_file,omitempty" validate:"required_without=HoldingsURL,excluded_with=HoldingsURL"`
	HoldingsURL  string `json:"holdings_url,omitempty" validate:"omitempty,url"`

	// Definitions names the library strategies to try, in order. Empty
	// means the full default library.
	Definitions []string `json:"definitions,omitempty"`

	// EnumeratorPolicy selects candidate ordering: "default" or
	// "absolute_risk".
	EnumeratorPolicy string `json:"enumerator_policy,omitempty" validate:"omitempty,oneof=default absolute_risk"`

	MaxDurationMS    int   `json:"max_duration_ms,omitempty" validate:"gte=0"` // 0 = unbounded
	MaxTotalMatches  int   `json:"max_total_matches,omitempty" validate:"gte=0"`
	MaxMatchesPerLeg []int `json:"max_matches_per_leg,omitempty" validate:"dive,gte=0"`

	OutputDir string `json:"output_dir,omitempty"`
	Verbosity int    `json:"verbosity,omitempty" validate:"gte=0,lte=3"` // 0=errors,1=info,2=debug,3=trace
}

// MaxDuration converts the configured millisecond budget to a Duration.
func (c *Config) MaxDuration() time.Duration {
	return time.Duration(c.MaxDurationMS) * time.Millisecond
}

// Load reads, parses, and validates a config file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(b)
}

// Parse parses and validates raw config JSON.
func Parse(b []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "./out"
	}
	if cfg.EnumeratorPolicy == "" {
		cfg.EnumeratorPolicy = "default"
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
