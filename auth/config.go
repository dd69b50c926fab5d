package auth

import (
	"fmt"

	"github.com/kbukum/audiodesk/auth/jwt"
)

// Config holds session authentication configuration.
type Config struct {
	JWT jwt.Config `yaml:"jwt" mapstructure:"jwt"`
	// CookieName is the cookie carrying the session token. Defaults to "session".
	CookieName string `yaml:"cookie_name" mapstructure:"cookie_name"`
	// LoginPath is where page requests without a session are redirected.
	LoginPath string `yaml:"login_path" mapstructure:"login_path"`
}

// ApplyDefaults sets defaults for unset fields.
func (c *Config) ApplyDefaults() {
	c.JWT.ApplyDefaults()
	if c.CookieName == "" {
		c.CookieName = "session"
	}
	if c.LoginPath == "" {
		c.LoginPath = "/login"
	}
}

// Validate checks the token configuration.
func (c *Config) Validate() error {
	if err := c.JWT.Validate(); err != nil {
		return fmt.Errorf("auth.jwt: %w", err)
	}
	return nil
}

// Describe returns a one-liner for the startup summary.
func (c *Config) Describe() string {
	return fmt.Sprintf("JWT(%s) TTL=%s cookie=%s", c.JWT.Method, c.JWT.AccessTokenTTL, c.CookieName)
}
