package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gnemet/DeckForge/internal/ai"
	"github.com/gnemet/DeckForge/internal/config"
	"github.com/gnemet/DeckForge/internal/content"
)

func main() {
	fmt.Println("=== DeckForge AI Connection Tester ===")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	active := cfg.AI.ActiveProvider
	settings, _ := cfg.AI.Active()

	fmt.Printf("Active Provider: %s (Driver: %s)\n", active, settings.Driver)
	fmt.Printf("Model: %s\n", settings.Model)

	if settings.Key == "" {
		fmt.Println("Warning: AI Key is EMPTY. Please set it in config.yaml or as an environment variable (e.g., OPENAI_API_KEY).")
	} else {
		maskedKey := settings.Key
		if len(maskedKey) > 8 {
			maskedKey = maskedKey[:4] + "..." + maskedKey[len(maskedKey)-4:]
		}
		fmt.Printf("API Key detected: %s\n", maskedKey)
	}

	client, err := ai.NewClient(cfg)
	if err != nil {
		log.Fatalf("Failed to create AI client: %v", err)
	}
	defer client.Close()
	client.OnUsage = func(u ai.Usage) {
		fmt.Printf("Tokens: %d prompt + %d completion, estimated cost $%.5f\n", u.PromptTokens, u.CompletionTokens, u.Cost())
	}

	// A real content request exercises the JSON parsing as well
	params := content.Params{Topic: "Remote Work", SlideCount: content.MinSlides}
	prompt := content.BuildPrompt(params)

	fmt.Println("\nRequesting a 3 slide outline (timeout 60s)...")
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	start := time.Now()
	response, err := client.GenerateContent(ctx, prompt)
	if err != nil {
		fmt.Printf("\nAI ERROR: %v\n", err)
		return
	}
	fmt.Printf("\nAI RESPONSE (%v):\n%s\n", time.Since(start).Round(time.Millisecond), response)

	p, err := content.ParsePresentation(response, params.SlideCount)
	if err != nil {
		fmt.Printf("\nResponse is not usable, decks would fall back to templates: %v\n", err)
		return
	}
	fmt.Printf("\nParsed %q with %d slides\n", p.Title, len(p.Slides))
}
