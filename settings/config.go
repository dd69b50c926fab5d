package settings

import (
	"errors"
	"fmt"
	"time"
)

var errReadOnly = errors.New("settings: store is read-only")

// Backends for Config.Backend.
const (
	BackendStatic   = "static"
	BackendDatabase = "database"
)

// Config selects and tunes the settings store.
type Config struct {
	// Backend is "database" (persisted, seeded with defaults) or "static"
	// (Initial only, useful for demos and tests).
	Backend string `mapstructure:"backend" json:"backend"`
	// Initial values overlay Defaults for the static backend and are
	// seeded into an empty database.
	Initial map[string]any `mapstructure:"initial" json:"-"`
	// EncryptionKey seals secret values at rest and in the cache.
	EncryptionKey string `mapstructure:"encryption_key" json:"-"`
	// CacheTTL enables the Redis cache when positive and Redis is enabled.
	CacheTTL time.Duration `mapstructure:"cache_ttl" json:"cache_ttl"`
}

// ApplyDefaults fills zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Backend == "" {
		c.Backend = BackendDatabase
	}
}

// Validate checks the backend name.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendStatic, BackendDatabase:
		return nil
	default:
		return fmt.Errorf("settings: unsupported backend %q", c.Backend)
	}
}

// InitialValues returns Defaults overlaid with Initial.
func (c *Config) InitialValues() Settings {
	out := Defaults()
	for k, v := range c.Initial {
		out[k] = v
	}
	return out
}
