package flash

import (
	"fmt"
	"time"

	"github.com/kbukum/audiodesk/encryption"
	"github.com/kbukum/audiodesk/redis"
)

// Backends for Config.Backend.
const (
	BackendCookie = "cookie"
	BackendRedis  = "redis"
)

// Config selects where notices are kept between requests.
type Config struct {
	Backend    string        `mapstructure:"backend" json:"backend"`
	CookieName string        `mapstructure:"cookie_name" json:"cookie_name"`
	TTL        time.Duration `mapstructure:"ttl" json:"ttl"`
}

// ApplyDefaults fills zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Backend == "" {
		c.Backend = BackendCookie
	}
	if c.CookieName == "" {
		c.CookieName = DefaultCookieName
	}
	if c.TTL <= 0 {
		c.TTL = defaultTTL
	}
}

// Validate checks the backend name.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendCookie, BackendRedis:
		return nil
	default:
		return fmt.Errorf("flash: unsupported backend %q", c.Backend)
	}
}

// New builds the configured store. The redis backend needs client; the
// cookie backend seals its cookie with enc when enc is not nil.
func New(cfg Config, client *redis.Client, enc encryption.Encryptor, secure bool) (Store, error) {
	cfg.ApplyDefaults()
	switch cfg.Backend {
	case BackendRedis:
		if client == nil {
			return nil, fmt.Errorf("flash: redis backend requires redis to be enabled")
		}
		return NewRedisStore(client, cfg.TTL, secure), nil
	case BackendCookie:
		return NewCookieStore(cfg.CookieName, secure, enc), nil
	default:
		return nil, fmt.Errorf("flash: unsupported backend %q", cfg.Backend)
	}
}
