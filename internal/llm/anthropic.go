package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicClient implements Client on the Messages API
type AnthropicClient struct {
	client *anthropic.Client
	config *Config
}

// NewAnthropicClient creates a new Anthropic client
func NewAnthropicClient(config *Config, apiKey string) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicClient{client: &client, config: config}, nil
}

// GenerateContent generates text content
func (c *AnthropicClient) GenerateContent(ctx context.Context, prompt string, opts Options) (string, error) {
	model := c.config.GetModel(opts.tier())
	if model == "" {
		return "", fmt.Errorf("no model configured for tier %s", opts.tier())
	}

	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   int64(c.config.maxTokens()),
		Temperature: anthropic.Float(float64(opts.temperature())),
		Messages: []anthropic.MessageParam{{
			Role: anthropic.MessageParamRoleUser,
			Content: []anthropic.ContentBlockParamUnion{{
				OfText: &anthropic.TextBlockParam{Text: prompt},
			}},
		}},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic message failed: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			sb.WriteString(b.Text)
		}
	}
	if sb.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return sb.String(), nil
}

// GenerateJSON asks for JSON and strips whatever prose surrounds it.
// The Messages API has no JSON mode.
func (c *AnthropicClient) GenerateJSON(ctx context.Context, prompt string, opts Options) (string, error) {
	text, err := c.GenerateContent(ctx, prompt+"\n\nRespond with valid JSON only.", opts)
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

// GetModel returns the model name for a tier
func (c *AnthropicClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close is a no-op.
func (c *AnthropicClient) Close() error {
	return nil
}
