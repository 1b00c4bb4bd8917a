package ai

import (
	"context"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/gnemet/DeckForge/internal/config"
)

type ClaudeProvider struct {
	messages anthropic.MessageService
	settings config.ProviderSettings
}

func NewClaudeProvider(s config.ProviderSettings, httpClient *http.Client) *ClaudeProvider {
	url := s.Endpoint
	if url == "" {
		url = "https://api.anthropic.com/"
	}
	url = strings.TrimRight(url, "/") + "/"

	options := []option.RequestOption{
		option.WithBaseURL(url),
		option.WithAPIKey(s.Key),
	}
	if httpClient != nil {
		options = append(options, option.WithHTTPClient(httpClient))
	}

	return &ClaudeProvider{
		messages: anthropic.NewMessageService(options...),
		settings: s,
	}
}

func (p *ClaudeProvider) Generate(ctx context.Context, prompt string) (string, Usage, error) {
	maxTokens := int64(p.settings.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	req := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.settings.Model),
		MaxTokens: maxTokens,
		System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if p.settings.Temperature > 0 {
		req.Temperature = anthropic.Float(p.settings.Temperature)
	}

	message, err := p.messages.New(ctx, req)
	if err != nil {
		return "", Usage{}, err
	}

	var sb strings.Builder
	for _, c := range message.Content {
		if c.Type == "text" {
			sb.WriteString(c.Text)
		}
	}

	return sb.String(), Usage{
		Model:            string(message.Model),
		PromptTokens:     int(message.Usage.InputTokens),
		CompletionTokens: int(message.Usage.OutputTokens),
	}, nil
}
