// Package config provides configuration loading and validation for the server and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Default values applied when neither the config file nor the environment sets a field.
const (
	DefaultProvider   = "gemini"
	DefaultCacheTTL   = 24 * time.Hour
	DefaultProbeDelay = 500 * time.Millisecond
	DefaultLogLevel   = "info"
	DefaultTracxnURL  = "https://api.tracxn.com/1.0"
)

// Config is the application configuration. It can be loaded from a JSON file
// and is then overlaid with environment variables.
type Config struct {
	// LLM
	Provider        string `json:"provider,omitempty"` // gemini, openai or anthropic
	GeminiAPIKey    string `json:"gemini_api_key,omitempty"`
	OpenAIAPIKey    string `json:"openai_api_key,omitempty"`
	AnthropicAPIKey string `json:"anthropic_api_key,omitempty"`

	// Competitor intelligence
	TracxnAPIKey  string `json:"tracxn_api_key,omitempty"`
	TracxnBaseURL string `json:"tracxn_base_url,omitempty"`
	SearchAPIKey  string `json:"search_api_key,omitempty"` // Google Custom Search
	SearchCX      string `json:"search_cx,omitempty"`

	// Storage
	DatabaseURL   string `json:"database_url,omitempty"`
	RedisAddr     string `json:"redis_addr,omitempty"`
	RedisPassword string `json:"redis_password,omitempty"`
	RedisDB       int    `json:"redis_db,omitempty"`

	// Behavior
	CacheTTL   Duration `json:"cache_ttl,omitempty"`
	ProbeDelay Duration `json:"probe_delay,omitempty"`
	UseBrowser bool     `json:"use_browser,omitempty"`
	LogLevel   string   `json:"log_level,omitempty"`
	LogFile    string   `json:"log_file,omitempty"`
}

// Duration is a time.Duration that reads "24h"-style strings from JSON.
type Duration time.Duration

// UnmarshalJSON accepts a duration string or a number of nanoseconds.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid duration: %s", string(data))
	}
	*d = Duration(n)
	return nil
}

// MarshalJSON writes the duration as a string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// LoadConfig loads configuration from a JSON file.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Load reads the optional config file at path, overlays the environment and
// fills defaults. An empty path means environment only.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	cfg.ApplyEnv()
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields with any environment variables that are set.
func (c *Config) ApplyEnv() {
	c.Provider = EnvString("LLM_PROVIDER", c.Provider)
	c.GeminiAPIKey = EnvString("GEMINI_API_KEY", c.GeminiAPIKey)
	c.OpenAIAPIKey = EnvString("OPENAI_API_KEY", c.OpenAIAPIKey)
	c.AnthropicAPIKey = EnvString("ANTHROPIC_API_KEY", c.AnthropicAPIKey)
	c.TracxnAPIKey = EnvString("TRACXN_API_KEY", c.TracxnAPIKey)
	c.TracxnBaseURL = EnvString("TRACXN_BASE_URL", c.TracxnBaseURL)
	c.SearchAPIKey = EnvString("GOOGLE_SEARCH_API_KEY", c.SearchAPIKey)
	c.SearchCX = EnvString("GOOGLE_SEARCH_CX", c.SearchCX)
	c.DatabaseURL = EnvString("DATABASE_URL", c.DatabaseURL)
	c.RedisAddr = EnvString("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = EnvString("REDIS_PASSWORD", c.RedisPassword)
	c.RedisDB = EnvInt("REDIS_DB", c.RedisDB)
	c.CacheTTL = Duration(EnvDuration("CACHE_TTL", time.Duration(c.CacheTTL)))
	c.ProbeDelay = Duration(EnvDuration("PROBE_DELAY", time.Duration(c.ProbeDelay)))
	c.UseBrowser = EnvBool("USE_BROWSER", c.UseBrowser)
	c.LogLevel = EnvString("LOG_LEVEL", c.LogLevel)
	c.LogFile = EnvString("LOG_FILE", c.LogFile)
}

// ApplyDefaults fills zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = DefaultProvider
	}
	if c.TracxnBaseURL == "" {
		c.TracxnBaseURL = DefaultTracxnURL
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = Duration(DefaultCacheTTL)
	}
	if c.ProbeDelay == 0 {
		c.ProbeDelay = Duration(DefaultProbeDelay)
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}

// Validate checks that the configuration has valid values.
// Missing API keys are not errors; the matching features degrade to fallbacks.
func (c *Config) Validate() error {
	switch c.Provider {
	case "", "gemini", "openai", "anthropic":
	default:
		return fmt.Errorf("config error: unknown provider %q", c.Provider)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("config error: 'cache_ttl' must be non-negative")
	}
	if c.ProbeDelay < 0 {
		return fmt.Errorf("config error: 'probe_delay' must be non-negative")
	}
	if c.RedisDB < 0 {
		return fmt.Errorf("config error: 'redis_db' must be non-negative")
	}
	if (c.SearchAPIKey == "") != (c.SearchCX == "") {
		return fmt.Errorf("config error: 'search_api_key' and 'search_cx' must be set together")
	}
	return nil
}

// ProviderAPIKey returns the key for the configured generative provider.
func (c *Config) ProviderAPIKey() string {
	switch c.Provider {
	case "openai":
		return c.OpenAIAPIKey
	case "anthropic":
		return c.AnthropicAPIKey
	default:
		return c.GeminiAPIKey
	}
}
