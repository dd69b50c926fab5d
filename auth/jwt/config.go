package jwt

import (
	"errors"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// SigningMethod names a supported HMAC algorithm.
type SigningMethod string

const (
	HS256 SigningMethod = "HS256"
	HS384 SigningMethod = "HS384"
	HS512 SigningMethod = "HS512"
)

// Config configures the token service.
type Config struct {
	// Secret is the HMAC signing key.
	Secret string `yaml:"secret" mapstructure:"secret"`
	// Method defaults to HS256.
	Method SigningMethod `yaml:"method" mapstructure:"method"`
	// Issuer is checked on parse and stamped on generate when set.
	Issuer string `yaml:"issuer" mapstructure:"issuer"`
	// Audience is checked on parse and stamped on generate when set.
	Audience string `yaml:"audience" mapstructure:"audience"`
	// AccessTokenTTL defaults to 12h.
	AccessTokenTTL time.Duration `yaml:"access_token_ttl" mapstructure:"access_token_ttl"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Method == "" {
		c.Method = HS256
	}
	if c.AccessTokenTTL == 0 {
		c.AccessTokenTTL = 12 * time.Hour
	}
}

// Validate checks the secret and method.
func (c *Config) Validate() error {
	if c.Secret == "" {
		return errors.New("jwt: secret is required")
	}
	if len(c.Secret) < 16 {
		return errors.New("jwt: secret must be at least 16 characters")
	}
	if c.signingMethod() == nil {
		return errors.New("jwt: unsupported signing method: " + string(c.Method))
	}
	return nil
}

func (c *Config) signingMethod() gojwt.SigningMethod {
	switch c.Method {
	case HS256:
		return gojwt.SigningMethodHS256
	case HS384:
		return gojwt.SigningMethodHS384
	case HS512:
		return gojwt.SigningMethodHS512
	default:
		return nil
	}
}
