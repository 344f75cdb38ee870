// Package config defines the report configuration and its loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file and PROTEAMS_* env vars.
// - Errors returned from this package wrap ErrInvalidConfig or ErrLoadConfig.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Defaults.
const (
	DefaultLogLevel          = "warning"
	DefaultAPIBaseURL        = "https://api.opendota.com/api"
	DefaultRequestTimeoutMS  = 20_000
	DefaultNumTeams          = 5
	DefaultLookupConcurrency = 1
	DefaultOutputFormat      = "yaml"
)

var outputFormats = map[string]struct{}{"yaml": {}, "text": {}}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warning, error, critical.
	LogLevel string `koanf:"log_level"`

	// APIBaseURL is the OpenDota API root, without a trailing slash.
	APIBaseURL string `koanf:"api_base_url"`

	// APIKey is sent as the api_key query parameter when set.
	APIKey string `koanf:"api_key"`

	// RequestTimeoutMS bounds each HTTP request.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	// NumTeams is how many teams the report ranks. Values <= 0 yield an empty report.
	NumTeams int `koanf:"num_teams"`

	// LookupConcurrency bounds parallel team metadata lookups. 1 is sequential.
	LookupConcurrency int `koanf:"lookup_concurrency"`

	// OutputFormat selects the report rendering: yaml or text.
	OutputFormat string `koanf:"output_format"`

	// MetricsFile, when set, receives a Prometheus text dump after the run.
	MetricsFile string `koanf:"metrics_file"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:          DefaultLogLevel,
		APIBaseURL:        DefaultAPIBaseURL,
		RequestTimeoutMS:  DefaultRequestTimeoutMS,
		NumTeams:          DefaultNumTeams,
		LookupConcurrency: DefaultLookupConcurrency,
		OutputFormat:      DefaultOutputFormat,
	}
}

// RequestTimeout returns RequestTimeoutMS as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// Validate checks the values that cannot be repaired at run time.
func (c *Config) Validate() error {
	raw := strings.TrimSpace(c.APIBaseURL)
	if raw == "" {
		return fmt.Errorf("%w: api_base_url must not be empty", ErrInvalidConfig)
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: api_base_url must be an absolute http(s) URL, got %q", ErrInvalidConfig, c.APIBaseURL)
	}
	if c.RequestTimeoutMS <= 0 {
		return fmt.Errorf("%w: request_timeout_ms must be positive, got %d", ErrInvalidConfig, c.RequestTimeoutMS)
	}
	if c.LookupConcurrency < 1 {
		return fmt.Errorf("%w: lookup_concurrency must be at least 1, got %d", ErrInvalidConfig, c.LookupConcurrency)
	}
	if _, ok := outputFormats[strings.ToLower(strings.TrimSpace(c.OutputFormat))]; !ok {
		return fmt.Errorf("%w: output_format must be yaml or text, got %q", ErrInvalidConfig, c.OutputFormat)
	}
	return nil
}
