package images

import (
	"context"
	"fmt"
	"io"

	"github.com/gnemet/DeckForge/internal/config"
	"github.com/replicate/replicate-go"
)

const FluxSchnell = "black-forest-labs/flux-schnell"

// ReplicateGenerator runs a flux model on Replicate.
type ReplicateGenerator struct {
	client *replicate.Client
	model  string
}

func NewReplicateGenerator(cfg config.ImageConfig) (*ReplicateGenerator, error) {
	options := []replicate.ClientOption{replicate.WithToken(cfg.Key)}
	if cfg.Endpoint != "" {
		options = append(options, replicate.WithBaseURL(cfg.Endpoint))
	}

	client, err := replicate.NewClient(options...)
	if err != nil {
		return nil, err
	}

	model := cfg.Model
	if model == "" || model == "dall-e-3" {
		model = FluxSchnell
	}
	return &ReplicateGenerator{client: client, model: model}, nil
}

func (g *ReplicateGenerator) Generate(ctx context.Context, prompt string) ([]byte, error) {
	input := replicate.PredictionInput{
		"prompt":        prompt,
		"aspect_ratio":  "3:2",
		"output_format": "png",
	}

	output, err := g.client.RunWithOptions(ctx, g.model, input, nil, replicate.WithBlockUntilDone(), replicate.WithFileOutput())
	if err != nil {
		return nil, fmt.Errorf("replicate %s: %w", g.model, err)
	}

	file := firstFile(output)
	if file == nil {
		return nil, fmt.Errorf("replicate %s: unsupported output %T", g.model, output)
	}
	return io.ReadAll(file)
}

// flux-schnell returns a list of files, other models a single one.
func firstFile(output replicate.PredictionOutput) *replicate.FileOutput {
	switch v := output.(type) {
	case *replicate.FileOutput:
		return v
	case []any:
		for _, item := range v {
			if f, ok := item.(*replicate.FileOutput); ok {
				return f
			}
		}
	}
	return nil
}
