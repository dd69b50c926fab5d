package authz

import "strings"

// MatchPattern reports whether a "resource:action" pattern covers required.
// Either half may be "*":
//
//   - "*:*"              matches everything
//   - "transcripts:*"    matches "transcripts:read", "transcripts:upload"
//   - "*:read"           matches "transcripts:read", "workspace:read"
//
// Values without a ":" are compared whole, "*" still matching anything.
func MatchPattern(pattern, required string) bool {
	if pattern == required || pattern == "*" || pattern == "*:*" {
		return true
	}

	patRes, patAct, patOK := strings.Cut(pattern, ":")
	reqRes, reqAct, reqOK := strings.Cut(required, ":")
	if !patOK || !reqOK {
		return matchWildcard(pattern, required)
	}
	return matchWildcard(patRes, reqRes) && matchWildcard(patAct, reqAct)
}

// MatchAny returns true if any of the patterns match the required permission.
func MatchAny(patterns []string, required string) bool {
	for _, p := range patterns {
		if MatchPattern(p, required) {
			return true
		}
	}
	return false
}

func matchWildcard(pattern, value string) bool {
	return pattern == "*" || pattern == value
}
