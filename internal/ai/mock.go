package ai

import "context"

const mockResponse = "Generated Content based on your prompt: [AI DATA]"

// MockProvider answers every prompt with a fixed text.
type MockProvider struct {
	Response string
}

func NewMockProvider(resp string) *MockProvider {
	if resp == "" {
		resp = mockResponse
	}
	return &MockProvider{Response: resp}
}

func (m *MockProvider) Generate(_ context.Context, prompt string) (string, Usage, error) {
	return m.Response, Usage{Model: "mock", PromptTokens: len(prompt) / 4, CompletionTokens: len(m.Response) / 4}, nil
}
