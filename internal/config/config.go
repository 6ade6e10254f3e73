// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and environment variables over the defaults.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"fmt"
	"time"

	"github.com/okian/fieldtrials/internal/adapters/ingest"
	"github.com/okian/fieldtrials/internal/domain/headtohead"
	"github.com/okian/fieldtrials/internal/domain/scoring"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// MaxUploadMB caps the size of an uploaded spreadsheet.
	MaxUploadMB int `koanf:"max_upload_mb"`

	// SessionTTLSeconds is how long an idle session survives.
	SessionTTLSeconds int `koanf:"session_ttl_seconds"`

	// MaxSessions caps live sessions; the least recently used one is evicted.
	MaxSessions int `koanf:"max_sessions"`

	// Decision matrix weights.
	ScoringWeightMean float64 `koanf:"scoring_weight_mean"`
	ScoringWeightMax  float64 `koanf:"scoring_weight_max"`
	ScoringWeightMin  float64 `koanf:"scoring_weight_min"`

	// TieThreshold is the head-to-head tie band in productivity units.
	TieThreshold float64 `koanf:"tie_threshold"`

	// HighlightedGroups are drawn apart in charts and offered as head-to-head heads.
	HighlightedGroups []string `koanf:"highlighted_groups"`

	// RelativeBands are the ascending edges used to label relative productivity.
	RelativeBands []float64 `koanf:"relative_bands"`

	// Columns maps spreadsheet headers to canonical column keys, merged over
	// the built-in mapping.
	Columns map[string]string `koanf:"columns"`
}

// New creates a Config with defaults.
func New() *Config {
	w := scoring.DefaultWeights()
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		MaxUploadMB:       32,
		SessionTTLSeconds: 1800,
		MaxSessions:       256,
		ScoringWeightMean: w.Mean,
		ScoringWeightMax:  w.Max,
		ScoringWeightMin:  w.Min,
		TieThreshold:      headtohead.DefaultThreshold,
		HighlightedGroups: []string{"9504VIP3", "9801VIP3", "9703TG", "9602VIP3", "9705VIP3"},
		RelativeBands:     []float64{90, 95},
		Columns:           map[string]string{},
	}
}

// Weights returns the configured decision matrix weights.
func (c *Config) Weights() scoring.Weights {
	return scoring.Weights{Mean: c.ScoringWeightMean, Max: c.ScoringWeightMax, Min: c.ScoringWeightMin}
}

// SessionTTL returns SessionTTLSeconds as a duration.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLSeconds) * time.Second
}

// MaxUploadBytes returns MaxUploadMB in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// IngestMapping returns the configured header overrides.
func (c *Config) IngestMapping() ingest.Mapping {
	return ingest.Mapping(c.Columns)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	case c.MaxUploadMB <= 0:
		return fmt.Errorf("%w: max_upload_mb must be positive", ErrInvalidConfig)
	case c.SessionTTLSeconds <= 0:
		return fmt.Errorf("%w: session_ttl_seconds must be positive", ErrInvalidConfig)
	case c.MaxSessions <= 0:
		return fmt.Errorf("%w: max_sessions must be positive", ErrInvalidConfig)
	case c.TieThreshold < 0:
		return fmt.Errorf("%w: tie_threshold must not be negative", ErrInvalidConfig)
	}
	if err := c.Weights().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	for i := 1; i < len(c.RelativeBands); i++ {
		if c.RelativeBands[i] <= c.RelativeBands[i-1] {
			return fmt.Errorf("%w: relative_bands must be strictly ascending", ErrInvalidConfig)
		}
	}
	if len(c.RelativeBands) == 0 {
		return fmt.Errorf("%w: relative_bands must not be empty", ErrInvalidConfig)
	}
	return nil
}
