package observability

import "time"

// Config configures tracing and metrics export over OTLP/HTTP.
type Config struct {
	Enabled bool `mapstructure:"enabled" json:"enabled"`
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string `mapstructure:"endpoint" json:"endpoint"`
	Insecure bool   `mapstructure:"insecure" json:"insecure"`
	// SampleRate is the trace sampling ratio (0.0 to 1.0).
	SampleRate float64 `mapstructure:"sample_rate" json:"sample_rate"`
	// MetricsInterval is the metric export interval.
	MetricsInterval time.Duration `mapstructure:"metrics_interval" json:"metrics_interval"`

	// Filled from the service config, not from the tracing section.
	ServiceName    string `mapstructure:"-" json:"-"`
	ServiceVersion string `mapstructure:"-" json:"-"`
	Environment    string `mapstructure:"-" json:"-"`
}

// ApplyDefaults sets development defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
	if c.MetricsInterval <= 0 {
		c.MetricsInterval = 15 * time.Second
	}
	if c.ServiceVersion == "" {
		c.ServiceVersion = "dev"
	}
}
