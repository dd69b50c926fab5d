package httpclient

import (
	"context"
	"fmt"
	"net/http"
)

// AuthType identifies the authentication method.
type AuthType int

const (
	AuthNone AuthType = iota
	AuthBearer
	AuthAPIKey
	// AuthTokenSource fetches a bearer token per request.
	AuthTokenSource
)

// TokenSource returns a bearer token, refreshing it when needed.
type TokenSource func(ctx context.Context) (string, error)

// AuthConfig configures request authentication.
type AuthConfig struct {
	Type AuthType
	// Token is the static bearer token (AuthBearer).
	Token string
	// Key and Header carry an API key (AuthAPIKey). Header defaults to X-API-Key.
	Key    string
	Header string
	// Source is consulted on every request (AuthTokenSource).
	Source TokenSource
}

// BearerAuth sends a static bearer token.
func BearerAuth(token string) *AuthConfig {
	return &AuthConfig{Type: AuthBearer, Token: token}
}

// APIKeyAuthHeader sends key in the named header.
func APIKeyAuthHeader(key, header string) *AuthConfig {
	return &AuthConfig{Type: AuthAPIKey, Key: key, Header: header}
}

// TokenAuth sends a bearer token obtained from src.
func TokenAuth(src TokenSource) *AuthConfig {
	return &AuthConfig{Type: AuthTokenSource, Source: src}
}

func (a *AuthConfig) apply(ctx context.Context, req *http.Request) error {
	if a == nil {
		return nil
	}
	switch a.Type {
	case AuthBearer:
		req.Header.Set("Authorization", "Bearer "+a.Token)
	case AuthAPIKey:
		name := a.Header
		if name == "" {
			name = "X-API-Key"
		}
		req.Header.Set(name, a.Key)
	case AuthTokenSource:
		if a.Source == nil {
			return fmt.Errorf("token source not set")
		}
		token, err := a.Source(ctx)
		if err != nil {
			return fmt.Errorf("acquire token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return nil
}
