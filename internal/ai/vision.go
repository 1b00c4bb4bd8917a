package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gnemet/DeckForge/internal/config"
	openai "github.com/sashabaranov/go-openai"
)

const captionPrompt = "Describe this image in one short sentence suitable as a slide caption."

// Captioner describes uploaded images with a vision-capable chat model.
type Captioner struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewCaptioner uses the provider named by vision.provider, which must be an
// OpenAI-compatible driver.
func NewCaptioner(cfg *config.Config) (*Captioner, error) {
	s, ok := cfg.AI.Providers[cfg.Vision.Provider]
	if !ok {
		return nil, fmt.Errorf("vision provider %q is not configured", cfg.Vision.Provider)
	}
	if s.Driver != "openai" {
		return nil, fmt.Errorf("vision needs an openai driver, %q has %q", cfg.Vision.Provider, s.Driver)
	}
	if s.Key == "" {
		return nil, fmt.Errorf("vision: %w", ErrMissingCredentials)
	}

	model := cfg.Vision.Model
	if model == "" {
		model = s.Model
	}
	return &Captioner{
		client:  newOpenAIClient(s, &http.Client{Timeout: cfg.AI.Timeout}),
		model:   model,
		timeout: cfg.AI.Timeout,
	}, nil
}

func (c *Captioner) Caption(ctx context.Context, data []byte, mime string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	dataURL := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: 100,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: captionPrompt},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: openai.ImageURLDetailLow,
						},
					},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("vision caption: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	caption := strings.TrimSpace(resp.Choices[0].Message.Content)
	if caption == "" {
		return "", ErrEmptyResponse
	}
	return caption, nil
}
