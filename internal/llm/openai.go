package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const jsonSystemPrompt = "You are an expert analyst. Always respond with valid JSON only."

// OpenAIClient implements Client on the Chat Completions API
type OpenAIClient struct {
	client *openai.Client
	config *Config
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(config *Config, apiKey string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIClient{client: &client, config: config}, nil
}

func (c *OpenAIClient) complete(ctx context.Context, prompt string, opts Options, asJSON bool) (string, error) {
	model := c.config.GetModel(opts.tier())
	if model == "" {
		return "", fmt.Errorf("no model configured for tier %s", opts.tier())
	}

	messages := []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)}
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Temperature: openai.Float(float64(opts.temperature())),
		MaxTokens:   openai.Int(int64(c.config.maxTokens())),
	}
	if asJSON {
		messages = append([]openai.ChatCompletionMessageParamUnion{openai.SystemMessage(jsonSystemPrompt)}, messages...)
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		}
	}
	params.Messages = messages

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// GenerateContent generates text content
func (c *OpenAIClient) GenerateContent(ctx context.Context, prompt string, opts Options) (string, error) {
	return c.complete(ctx, prompt, opts, false)
}

// GenerateJSON generates a JSON object response
func (c *OpenAIClient) GenerateJSON(ctx context.Context, prompt string, opts Options) (string, error) {
	text, err := c.complete(ctx, prompt, opts, true)
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

// GetModel returns the model name for a tier
func (c *OpenAIClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close is a no-op; the HTTP client has nothing to release.
func (c *OpenAIClient) Close() error {
	return nil
}
