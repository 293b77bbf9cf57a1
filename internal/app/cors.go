package app

import (
	"net/url"
	"strings"
)

// originHost strips the scheme from an origin, leaving "host[:port]".
func originHost(origin string) string {
	if u, err := url.Parse(origin); err == nil && u.Host != "" {
		return u.Host
	}
	return origin
}

// originPatternMatches tests host against a configured origin pattern.
// "*.example.com" matches any subdomain; "localhost:*" matches any port.
func originPatternMatches(pattern, host string) bool {
	switch {
	case pattern == host:
		return true
	case strings.HasPrefix(pattern, "*."):
		return strings.HasSuffix(host, pattern[1:])
	case strings.HasSuffix(pattern, ":*"):
		return strings.HasPrefix(host, strings.TrimSuffix(pattern, "*"))
	}
	return false
}
