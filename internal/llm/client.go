package llm

import (
	"context"
	"errors"
)

// DefaultTemperature is used when Options.Temperature is zero.
const DefaultTemperature = 0.1

// ErrEmptyResponse is returned when a provider answers without any text.
var ErrEmptyResponse = errors.New("no text in model response")

// Options tunes a single generation call.
type Options struct {
	Tier ModelTier
	// Temperature is the sampling temperature; zero means DefaultTemperature.
	Temperature float32
}

func (o Options) temperature() float32 {
	if o.Temperature == 0 {
		return DefaultTemperature
	}
	return o.Temperature
}

func (o Options) tier() ModelTier {
	if o.Tier == "" {
		return TierStandard
	}
	return o.Tier
}

// Client is an abstraction over LLM providers.
// Callers must treat every returned string as untrusted.
type Client interface {
	// GenerateContent generates free text
	GenerateContent(ctx context.Context, prompt string, opts Options) (string, error)
	// GenerateJSON generates a JSON document, stripped of markdown fences
	GenerateJSON(ctx context.Context, prompt string, opts Options) (string, error)
	// GetModel returns the provider model used for a tier
	GetModel(tier ModelTier) string
	// Close releases any resources held by the client
	Close() error
}

// NewClient creates a client for config.Provider.
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderOpenAI:
		return NewOpenAIClient(config, apiKey)
	case ProviderAnthropic:
		return NewAnthropicClient(config, apiKey)
	default:
		return NewGeminiClient(ctx, config, apiKey)
	}
}
