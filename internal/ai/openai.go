package ai

import (
	"context"
	"net/http"

	"github.com/gnemet/DeckForge/internal/config"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider talks to OpenAI or any compatible endpoint.
type OpenAIProvider struct {
	client   *openai.Client
	settings config.ProviderSettings
}

func newOpenAIClient(s config.ProviderSettings, httpClient *http.Client) *openai.Client {
	oc := openai.DefaultConfig(s.Key)
	if s.Endpoint != "" {
		oc.BaseURL = s.Endpoint
	}
	if httpClient != nil {
		oc.HTTPClient = httpClient
	}
	return openai.NewClientWithConfig(oc)
}

func NewOpenAIProvider(s config.ProviderSettings, httpClient *http.Client) *OpenAIProvider {
	return &OpenAIProvider{client: newOpenAIClient(s, httpClient), settings: s}
}

func (p *OpenAIProvider) Generate(ctx context.Context, prompt string) (string, Usage, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.settings.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   p.settings.MaxTokens,
		Temperature: float32(p.settings.Temperature),
	})
	if err != nil {
		return "", Usage{}, err
	}

	usage := Usage{
		Model:            resp.Model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}
	if len(resp.Choices) == 0 {
		return "", usage, ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, usage, nil
}
