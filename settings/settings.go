// Package settings holds the deployment's administrator-controlled feature
// switches and service credentials, the stores that load them, and the
// sanitizer that strips secrets before settings reach a browser.
package settings

import (
	"context"
	"strconv"
	"strings"
)

// Settings is a snapshot of setting key to value. Values are strings or
// bools; a missing key is absent.
type Settings map[string]any

// Store supplies the current settings snapshot.
type Store interface {
	Get(ctx context.Context) (Settings, error)
}

// Writer is implemented by stores that accept updates.
type Writer interface {
	Set(ctx context.Context, key string, value any) error
}

// Enabled reports whether a feature gate is on: the value is boolean true or
// a string that parses as true. Anything else, including absence, is off.
func (s Settings) Enabled(key string) bool {
	switch v := s[key].(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && b
	default:
		return false
	}
}

// String returns the string value for key, or "" when absent or not a string.
func (s Settings) String(key string) string {
	v, _ := s[key].(string)
	return v
}

// Present reports whether key holds a non-empty string.
func (s Settings) Present(key string) bool {
	return strings.TrimSpace(s.String(key)) != ""
}

// Clone returns a shallow copy.
func (s Settings) Clone() Settings {
	out := make(Settings, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
