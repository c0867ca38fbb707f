package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// envValue returns the parsed value of key, or fallback when the variable is
// unset, blank, or does not parse.
func envValue[T any](key string, fallback T, parse func(string) (T, error)) T {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := parse(raw)
	if err != nil {
		return fallback
	}
	return v
}

// EnvString returns the trimmed value of key or fallback.
func EnvString(key, fallback string) string {
	return envValue(key, fallback, func(s string) (string, error) { return s, nil })
}

// EnvInt returns key parsed as a decimal int or fallback.
func EnvInt(key string, fallback int) int {
	return envValue(key, fallback, strconv.Atoi)
}

// EnvBool returns key parsed by strconv.ParseBool or fallback.
func EnvBool(key string, fallback bool) bool {
	return envValue(key, fallback, strconv.ParseBool)
}

// EnvDuration returns key parsed by time.ParseDuration or fallback.
func EnvDuration(key string, fallback time.Duration) time.Duration {
	return envValue(key, fallback, time.ParseDuration)
}
