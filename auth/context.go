package auth

import (
	"context"
	"errors"
)

type sessionKey struct{}

// ErrNoSession is returned when a request carries no valid session.
var ErrNoSession = errors.New("auth: no session in context")

// WithSession stores the resolved session in ctx.
func WithSession(ctx context.Context, claims *SessionClaims) context.Context {
	return context.WithValue(ctx, sessionKey{}, claims)
}

// SessionFrom returns the session stored by WithSession.
func SessionFrom(ctx context.Context) (*SessionClaims, bool) {
	claims, ok := ctx.Value(sessionKey{}).(*SessionClaims)
	return claims, ok && claims != nil
}

// UserID returns the signed-in user's id or "" when there is no session.
func UserID(ctx context.Context) string {
	if claims, ok := SessionFrom(ctx); ok {
		return claims.UserID
	}
	return ""
}
