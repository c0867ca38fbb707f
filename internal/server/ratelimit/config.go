package ratelimit

import (
	"strings"
	"time"

	"github.com/jonathan/geo-visibility/internal/config"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // exact path, or a prefix when it ends with "/"
	Method string        // HTTP method
	Limit  int           // requests per window
	Window time.Duration // refill window
	Burst  int           // bucket capacity, defaults to Limit
}

// LoadConfig reads RATE_LIMIT_* environment variables.
func LoadConfig() *Config {
	if !config.EnvBool("RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}

	analyzeLimit := config.EnvInt("RATE_LIMIT_ANALYZE_LIMIT", 20)
	return &Config{
		Enabled:         true,
		DefaultLimit:    config.EnvInt("RATE_LIMIT_DEFAULT_LIMIT", 1000),
		DefaultWindow:   config.EnvDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: config.EnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		Whitelist:       parseIPList(config.EnvString("RATE_LIMIT_WHITELIST", "")),
		Blacklist:       parseIPList(config.EnvString("RATE_LIMIT_BLACKLIST", "")),
		EndpointConfigs: DefaultEndpointConfigs(analyzeLimit),
	}
}

// DefaultEndpointConfigs returns the per-endpoint limits. analyzeLimit caps
// full analyses per client per hour.
func DefaultEndpointConfigs(analyzeLimit int) []EndpointConfig {
	burst := max(1, analyzeLimit/5)
	return []EndpointConfig{
		// Analyses fetch a site and call the model several times.
		{Path: "/analyze", Method: "POST", Limit: analyzeLimit, Window: time.Hour, Burst: burst},
		{Path: "/api/analyze", Method: "POST", Limit: analyzeLimit, Window: time.Hour, Burst: burst},
		{Path: "/history/reanalyze", Method: "POST", Limit: analyzeLimit, Window: time.Hour, Burst: burst},

		// Credential endpoints.
		{Path: "/auth/", Method: "POST", Limit: 20, Window: time.Minute, Burst: 5},
	}
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
