package llm

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_RequiresAPIKey(t *testing.T) {
	for _, provider := range []string{"gemini", "openai", "anthropic"} {
		t.Run(provider, func(t *testing.T) {
			_, err := NewClient(context.Background(), ConfigFor(provider), "")
			assert.Error(t, err)
		})
	}
}

func TestNewClient_SelectsProvider(t *testing.T) {
	c, err := NewClient(context.Background(), ConfigFor("openai"), "sk-test")
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, c)
	assert.Equal(t, "gpt-4o", c.GetModel(TierStandard))
	assert.NoError(t, c.Close())

	c, err = NewClient(context.Background(), ConfigFor("anthropic"), "sk-ant")
	require.NoError(t, err)
	assert.IsType(t, &AnthropicClient{}, c)
	assert.NoError(t, c.Close())
}

func TestResponseText(t *testing.T) {
	_, err := responseText(nil)
	assert.ErrorIs(t, err, ErrEmptyResponse)

	_, err = responseText(&genai.GenerateContentResponse{})
	assert.ErrorIs(t, err, ErrEmptyResponse)

	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text("hello "), genai.Text("world")}},
		}},
	}
	text, err := responseText(resp)
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)

	resp.Candidates[0].Content.Parts = []genai.Part{genai.Blob{MIMEType: "image/png"}}
	_, err = responseText(resp)
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestResponseText_Blocked(t *testing.T) {
	_, err := responseText(&genai.GenerateContentResponse{
		PromptFeedback: &genai.PromptFeedback{BlockReason: genai.BlockReasonSafety},
	})
	assert.ErrorIs(t, err, ErrBlocked)

	_, err = responseText(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}},
	})
	assert.ErrorIs(t, err, ErrBlocked)
}
