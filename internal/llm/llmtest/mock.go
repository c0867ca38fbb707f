// Package llmtest provides a scriptable llm.Client for tests.
package llmtest

import (
	"context"
	"errors"
	"sync"

	"github.com/jonathan/geo-visibility/internal/llm"
)

// ErrNoResponse is returned when a mock has no handler configured.
var ErrNoResponse = errors.New("llmtest: no response configured")

// Call records one invocation of the mock.
type Call struct {
	Method  string
	Prompt  string
	Options llm.Options
}

// MockClient implements llm.Client with overridable handlers.
// It is safe for concurrent use.
type MockClient struct {
	GenerateJSONFunc    func(ctx context.Context, prompt string, opts llm.Options) (string, error)
	GenerateContentFunc func(ctx context.Context, prompt string, opts llm.Options) (string, error)

	mu    sync.Mutex
	calls []Call
}

// JSON returns a mock whose GenerateJSON always answers body.
func JSON(body string) *MockClient {
	return &MockClient{
		GenerateJSONFunc: func(context.Context, string, llm.Options) (string, error) {
			return body, nil
		},
	}
}

// Failing returns a mock whose every call fails with err.
func Failing(err error) *MockClient {
	f := func(context.Context, string, llm.Options) (string, error) { return "", err }
	return &MockClient{GenerateJSONFunc: f, GenerateContentFunc: f}
}

func (m *MockClient) record(method, prompt string, opts llm.Options) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Method: method, Prompt: prompt, Options: opts})
}

// GenerateContent calls GenerateContentFunc.
func (m *MockClient) GenerateContent(ctx context.Context, prompt string, opts llm.Options) (string, error) {
	m.record("GenerateContent", prompt, opts)
	if m.GenerateContentFunc == nil {
		return "", ErrNoResponse
	}
	return m.GenerateContentFunc(ctx, prompt, opts)
}

// GenerateJSON calls GenerateJSONFunc.
func (m *MockClient) GenerateJSON(ctx context.Context, prompt string, opts llm.Options) (string, error) {
	m.record("GenerateJSON", prompt, opts)
	if m.GenerateJSONFunc == nil {
		return "", ErrNoResponse
	}
	return m.GenerateJSONFunc(ctx, prompt, opts)
}

// GetModel returns a fixed model name.
func (m *MockClient) GetModel(tier llm.ModelTier) string {
	return "mock-" + string(tier)
}

// Close is a no-op.
func (m *MockClient) Close() error { return nil }

// Calls returns a copy of the recorded calls.
func (m *MockClient) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}
