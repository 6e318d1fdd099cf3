// Package config loads runtime settings for the classkeeper sync core.
// Values are layered: defaults, then an optional JSON file, then
// command-line flags, with later sources taking precedence.
package config

import "time"

// Config holds runtime settings for the sync core and CLI.
type Config struct {
	// APIBaseURL is the base URL of the hosted LMS REST API.
	APIBaseURL string

	// APIToken is the opaque bearer token forwarded with each request.
	// Obtaining and refreshing it is the caller's concern.
	APIToken string

	// DatabasePath is the SQLite file backing the local cache.
	DatabasePath string

	// RequestTimeout bounds each remote API call.
	RequestTimeout time.Duration

	// TrendMinSamples is the minimum number of scored records before a
	// grade trend is reported.
	TrendMinSamples int
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8000"
	c.DatabasePath = "classkeeper.db"
	c.RequestTimeout = 15 * time.Second
	c.TrendMinSamples = 4
}

// LoadConfig constructs a Config from defaults, JSON file and flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
