package images

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/gnemet/DeckForge/internal/config"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIGenerator calls the images endpoint (DALL-E or compatible).
type OpenAIGenerator struct {
	client     *openai.Client
	httpClient *http.Client
	model      string
	size       string
}

func NewOpenAIGenerator(cfg config.ImageConfig, httpClient *http.Client) *OpenAIGenerator {
	oc := openai.DefaultConfig(cfg.Key)
	if cfg.Endpoint != "" {
		oc.BaseURL = cfg.Endpoint
	}
	oc.HTTPClient = httpClient

	model := cfg.Model
	if model == "" {
		model = openai.CreateImageModelDallE3
	}
	size := cfg.Size
	if size == "" {
		size = openai.CreateImageSize1024x1024
	}

	return &OpenAIGenerator{
		client:     openai.NewClientWithConfig(oc),
		httpClient: httpClient,
		model:      model,
		size:       size,
	}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) ([]byte, error) {
	resp, err := g.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          g.model,
		N:              1,
		Size:           g.size,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return nil, fmt.Errorf("create image: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, ErrNoImage
	}

	d := resp.Data[0]
	switch {
	case d.B64JSON != "":
		return base64.StdEncoding.DecodeString(d.B64JSON)
	case d.URL != "":
		return download(ctx, g.httpClient, d.URL)
	}
	return nil, ErrNoImage
}
