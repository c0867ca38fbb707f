package ratelimit

import "strings"

// unlimited marks endpoints that bypass limiting.
var unlimited = EndpointConfig{}

// MatchEndpoint returns the configuration for method+path, preferring exact
// matches over prefix matches. GET /health and GET /schema are never limited.
// It returns nil when nothing matches.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if method == "GET" && (path == "/health" || path == "/schema") {
		u := unlimited
		return &u
	}

	for i := range configs {
		if configs[i].Path == path && configs[i].Method == method {
			return &configs[i]
		}
	}
	for i := range configs {
		c := &configs[i]
		if c.Method == method && strings.HasSuffix(c.Path, "/") && strings.HasPrefix(path, c.Path) {
			return c
		}
	}
	return nil
}
