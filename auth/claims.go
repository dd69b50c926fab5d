package auth

import (
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// Role names carried in session tokens.
const (
	RoleUser  = "User"
	RoleAdmin = "Admin"
)

// SessionClaims are the claims of a signed-in user's session token.
type SessionClaims struct {
	gojwt.RegisteredClaims
	UserID string   `json:"oid"`
	Name   string   `json:"name,omitempty"`
	Email  string   `json:"preferred_username,omitempty"`
	Roles  []string `json:"roles,omitempty"`
}

// NewSessionClaims returns empty claims for token parsing.
func NewSessionClaims() *SessionClaims { return &SessionClaims{} }

// SetDefaults stamps the standard time, issuer and audience claims.
func (c *SessionClaims) SetDefaults(now time.Time, ttl time.Duration, issuer, audience string) {
	c.IssuedAt = gojwt.NewNumericDate(now)
	c.NotBefore = gojwt.NewNumericDate(now)
	c.ExpiresAt = gojwt.NewNumericDate(now.Add(ttl))
	if c.Subject == "" {
		c.Subject = c.UserID
	}
	if issuer != "" {
		c.Issuer = issuer
	}
	if audience != "" {
		c.Audience = gojwt.ClaimStrings{audience}
	}
}

// HasRole reports whether the session carries role.
func (c *SessionClaims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}
