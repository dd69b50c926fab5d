package settings

import "strings"

// sensitiveMarkers flag a key as secret-bearing when its lower-cased name
// contains any of them.
var sensitiveMarkers = []string{"key", "secret", "password", "token", "connection"}

// IsSensitiveKey reports whether key must never be exposed to a client.
func IsSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	for _, m := range sensitiveMarkers {
		if strings.Contains(k, m) {
			return true
		}
	}
	return false
}

// Sanitize returns a copy of s without sensitive keys. Nested maps are
// sanitized the same way. s is not modified.
func Sanitize(s Settings) Settings {
	out := make(Settings, len(s))
	for k, v := range s {
		if IsSensitiveKey(k) {
			continue
		}
		out[k] = sanitizeValue(v)
	}
	return out
}

func sanitizeValue(v any) any {
	switch nested := v.(type) {
	case Settings:
		return Sanitize(nested)
	case map[string]any:
		return map[string]any(Sanitize(Settings(nested)))
	default:
		return v
	}
}
