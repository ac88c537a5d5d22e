package config

import "fmt"

// SentryConfig defines settings for Sentry error monitoring. Reporting is
// disabled while DSN is empty.
type SentryConfig struct {
	DSN         string `json:"dsn"`
	Environment string `json:"environment"`
	Release     string `json:"release"`
	// SampleRate is the share of error events sent, in [0, 1].
	SampleRate float64 `json:"sample_rate"`
	Debug      bool    `json:"debug"`
	// FlushSeconds bounds how long the CLI waits for queued events on exit.
	FlushSeconds int `json:"flush_seconds"`
}

// SetDefaults applies sane defaults.
func (c *SentryConfig) SetDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1
	}
	if c.FlushSeconds == 0 {
		c.FlushSeconds = 2
	}
}

// Validate checks the sample rate and flush timeout.
func (c SentryConfig) Validate() error {
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("sample_rate must be within [0,1], got %g", c.SampleRate)
	}
	if c.FlushSeconds < 0 {
		return fmt.Errorf("flush_seconds must not be negative")
	}
	return nil
}
