package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/gnemet/DeckForge/internal/config"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type GeminiProvider struct {
	client   *genai.Client
	settings config.ProviderSettings
}

func NewGeminiProvider(ctx context.Context, s config.ProviderSettings) (*GeminiProvider, error) {
	opts := []option.ClientOption{option.WithAPIKey(s.Key)}
	if s.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(s.Endpoint))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &GeminiProvider{client: client, settings: s}, nil
}

func (p *GeminiProvider) Generate(ctx context.Context, prompt string) (string, Usage, error) {
	model := p.client.GenerativeModel(p.settings.Model)
	model.SystemInstruction = genai.NewUserContent(genai.Text(systemPrompt))
	model.ResponseMIMEType = "application/json"
	if p.settings.Temperature > 0 {
		model.SetTemperature(float32(p.settings.Temperature))
	}
	if p.settings.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(p.settings.MaxTokens))
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", Usage{}, err
	}

	usage := Usage{Model: p.settings.Model}
	if resp.UsageMetadata != nil {
		usage.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		usage.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", usage, ErrEmptyResponse
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return sb.String(), usage, nil
}

func (p *GeminiProvider) Close() error {
	return p.client.Close()
}
