// Package auth resolves the signed-in user of a request from a JWT carried
// in the session cookie or a bearer Authorization header.
package auth

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/kbukum/audiodesk/auth/jwt"
	"github.com/kbukum/audiodesk/errors"
)

// TokenParser turns a raw token into session claims.
// *jwt.Service[*SessionClaims] satisfies it.
type TokenParser interface {
	Parse(token string) (*SessionClaims, error)
}

// SessionResolver extracts and validates the session token of a request.
type SessionResolver struct {
	parser     TokenParser
	cookieName string
}

// NewSessionResolver returns a resolver reading cookieName, then the
// Authorization header.
func NewSessionResolver(parser TokenParser, cookieName string) *SessionResolver {
	if cookieName == "" {
		cookieName = "session"
	}
	return &SessionResolver{parser: parser, cookieName: cookieName}
}

// NewJWTResolver builds the token service from cfg and wraps it in a
// resolver.
func NewJWTResolver(cfg Config) (*SessionResolver, *jwt.Service[*SessionClaims], error) {
	cfg.ApplyDefaults()
	svc, err := jwt.NewService(cfg.JWT, NewSessionClaims)
	if err != nil {
		return nil, nil, err
	}
	return NewSessionResolver(svc, cfg.CookieName), svc, nil
}

// CookieName returns the cookie the resolver reads.
func (r *SessionResolver) CookieName() string { return r.cookieName }

// Resolve returns the request's session. A request with no token yields
// ErrNoSession; a bad token yields an Unauthorized AppError.
func (r *SessionResolver) Resolve(req *http.Request) (*SessionClaims, error) {
	token := r.tokenFrom(req)
	if token == "" {
		return nil, ErrNoSession
	}
	claims, err := r.parser.Parse(token)
	if err != nil {
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.TokenExpired().WithCause(err)
		}
		return nil, errors.InvalidToken().WithCause(err)
	}
	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	if claims.UserID == "" {
		return nil, errors.InvalidToken()
	}
	return claims, nil
}

func (r *SessionResolver) tokenFrom(req *http.Request) string {
	if c, err := req.Cookie(r.cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	header := req.Header.Get("Authorization")
	if scheme, token, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	return ""
}
