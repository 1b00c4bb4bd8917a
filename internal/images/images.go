package images

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gnemet/DeckForge/internal/catalog"
	"github.com/gnemet/DeckForge/internal/config"
)

const PlaceholderCaption = "AI image placeholder"

var (
	ErrNotConfigured = errors.New("image generation is not configured")
	ErrNoImage       = errors.New("image endpoint returned no image")
)

// Generator produces raw image bytes for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

// Palette colours the placeholder.
type Palette struct {
	Background color.RGBA
	Text       color.RGBA
	Accent     color.RGBA
}

func ThemePalette(t catalog.Theme) Palette {
	return Palette{
		Background: t.Background.RGBA(),
		Text:       t.Content.RGBA(),
		Accent:     t.Accent.RGBA(),
	}
}

// Image is always usable: when generation failed, Data holds a placeholder
// PNG and Err the reason.
type Image struct {
	Data        []byte
	MIME        string
	Placeholder bool
	Err         error
}

type Requester struct {
	generator Generator
	timeout   time.Duration
}

// NewRequester picks the generator named by cfg.Driver. Without a key or when
// disabled, every request yields a placeholder.
func NewRequester(cfg config.ImageConfig) *Requester {
	r := &Requester{timeout: cfg.Timeout}
	if !cfg.Enabled {
		return r
	}
	if cfg.Key == "" {
		log.Printf("Image generation enabled but no %s key configured, using placeholders", cfg.Driver)
		return r
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	switch cfg.Driver {
	case "openai":
		r.generator = NewOpenAIGenerator(cfg, httpClient)
	case "replicate":
		g, err := NewReplicateGenerator(cfg)
		if err != nil {
			log.Printf("Replicate client unavailable: %v", err)
			return r
		}
		r.generator = g
	default:
		log.Printf("Unknown image driver %q, using placeholders", cfg.Driver)
	}
	return r
}

func NewRequesterWithGenerator(g Generator, timeout time.Duration) *Requester {
	return &Requester{generator: g, timeout: timeout}
}

// Available reports whether a real image endpoint is configured.
func (r *Requester) Available() bool {
	return r.generator != nil
}

// GenerateImage makes exactly one attempt and never returns an empty image.
func (r *Requester) GenerateImage(ctx context.Context, prompt string, pal Palette) Image {
	if r.generator == nil {
		return r.placeholder(prompt, pal, ErrNotConfigured)
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	data, err := r.generator.Generate(ctx, prompt)
	if err == nil && len(data) == 0 {
		err = ErrNoImage
	}
	if err != nil {
		log.Printf("Image generation failed: %v", err)
		return r.placeholder(prompt, pal, err)
	}

	data, mime, err := Normalize(data)
	if err != nil {
		log.Printf("Image generation returned unusable data: %v", err)
		return r.placeholder(prompt, pal, err)
	}
	return Image{Data: data, MIME: mime}
}

func (r *Requester) placeholder(prompt string, pal Palette, cause error) Image {
	data, err := Placeholder(prompt, PlaceholderCaption, pal)
	if err != nil {
		// encoding an in-memory RGBA image does not fail in practice
		return Image{Err: errors.Join(cause, err)}
	}
	return Image{Data: data, MIME: "image/png", Placeholder: true, Err: cause}
}

// download fetches url with ctx's deadline; anything but 200 is an error.
func download(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image download: unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}
