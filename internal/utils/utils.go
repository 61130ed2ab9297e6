package utils

import (
	"path"
	"strings"
)

// MatchesWithWildcard allows a matcher like /dashboard/* to do a prefix match.
// If the last character is a *, it just checks whether the value starts with the rest.
// Otherwise it does a literal match.
func MatchesWithWildcard(valueToEvaluate string, matcher string) bool {
	if matcher == "" {
		return valueToEvaluate == ""
	}
	if matcher[len(matcher)-1] == '*' {
		return strings.HasPrefix(valueToEvaluate, matcher[:len(matcher)-1])
	}
	return valueToEvaluate == matcher
}

// CleanPath normalises a request path: leading slash, no trailing slash, no dot segments,
// no query string. "" becomes "/".
func CleanPath(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
