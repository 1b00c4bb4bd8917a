package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gnemet/DeckForge/internal/config"
)

var (
	ErrMissingCredentials = errors.New("AI provider has no API key")
	ErrUnknownDriver      = errors.New("unknown AI driver")
	ErrEmptyResponse      = errors.New("AI provider returned no text")
)

const systemPrompt = "You are an expert presentation designer. You answer with valid JSON only."

// Usage is the token accounting of one call.
type Usage struct {
	Provider         string
	Model            string
	PromptTokens     int
	CompletionTokens int
}

func (u Usage) TotalTokens() int {
	return u.PromptTokens + u.CompletionTokens
}

// Provider is one chat-completion backend.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, Usage, error)
}

type Client struct {
	Name     string
	Settings config.ProviderSettings

	provider Provider
	timeout  time.Duration
	closer   func() error

	// OnUsage, when set, receives the token usage of every successful call.
	OnUsage func(Usage)
}

// NewClient builds a client for the active provider. Providers other than
// mock need a key.
func NewClient(cfg *config.Config) (*Client, error) {
	settings, ok := cfg.AI.Active()
	if !ok {
		return nil, fmt.Errorf("AI provider %q is not configured", cfg.AI.ActiveProvider)
	}

	c := &Client{
		Name:     cfg.AI.ActiveProvider,
		Settings: settings,
		timeout:  cfg.AI.Timeout,
	}

	if settings.Driver != "mock" && settings.Key == "" {
		return nil, fmt.Errorf("%s: %w", c.Name, ErrMissingCredentials)
	}

	httpClient := &http.Client{Timeout: cfg.AI.Timeout}

	switch settings.Driver {
	case "openai":
		c.provider = NewOpenAIProvider(settings, httpClient)
	case "claude":
		c.provider = NewClaudeProvider(settings, httpClient)
	case "gemini":
		g, err := NewGeminiProvider(context.Background(), settings)
		if err != nil {
			return nil, err
		}
		c.provider = g
		c.closer = g.Close
	case "mock":
		c.provider = NewMockProvider("")
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, settings.Driver)
	}

	log.Printf("AI provider %s ready (driver %s, model %s)", c.Name, settings.Driver, settings.Model)
	return c, nil
}

// NewClientWithProvider wraps an existing provider, mainly for tests and tools.
func NewClientWithProvider(name string, p Provider, timeout time.Duration) *Client {
	return &Client{Name: name, Settings: config.ProviderSettings{Driver: name}, provider: p, timeout: timeout}
}

// GenerateContent sends prompt once, bounded by the configured timeout.
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	text, usage, err := c.provider.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%s: %w", c.Name, err)
	}
	if text == "" {
		return "", fmt.Errorf("%s: %w", c.Name, ErrEmptyResponse)
	}

	if usage.Provider == "" {
		usage.Provider = c.Name
	}
	log.Printf("AI %s answered in %v (%d tokens)", c.Name, time.Since(start).Round(time.Millisecond), usage.TotalTokens())
	if c.OnUsage != nil {
		c.OnUsage(usage)
	}
	return text, nil
}

// Complete makes Client usable as a content completer.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	return c.GenerateContent(ctx, prompt)
}

func (c *Client) Close() error {
	if c.closer != nil {
		return c.closer()
	}
	return nil
}
