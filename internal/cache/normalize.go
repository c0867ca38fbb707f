package cache

import (
	"regexp"
	"strings"
)

var (
	schemePattern = regexp.MustCompile(`(?i)^https?://`)
	wwwPattern    = regexp.MustCompile(`(?i)^www\.`)
)

// EnsureScheme prefixes https:// when the URL has no http(s) scheme.
func EnsureScheme(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" || schemePattern.MatchString(rawURL) {
		return rawURL
	}
	return "https://" + rawURL
}

// NormalizeURL returns the cache key form of a URL: no scheme, no leading
// "www.", no trailing slash, lower case.
func NormalizeURL(rawURL string) string {
	u := schemePattern.ReplaceAllString(EnsureScheme(rawURL), "")
	u = wwwPattern.ReplaceAllString(u, "")
	u = strings.TrimSuffix(u, "/")
	return strings.ToLower(u)
}
