package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/gnemet/DeckForge/internal/config"
	"github.com/gnemet/DeckForge/internal/generator"
)

type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			*l = append(*l, s)
		}
	}
	return nil
}

func main() {
	var focus, docs, imgs listFlag

	topic := flag.String("topic", "", "Presentation topic")
	slides := flag.Int("slides", generator.DefaultSlideCount, "Number of content slides")
	theme := flag.String("theme", "", "Theme key (see -themes)")
	custom := flag.String("custom", "", "Additional content for the last slide")
	footer := flag.String("footer", "", "Footer text on content slides")
	lang := flag.String("lang", "en", "Language of the deck labels")
	useAI := flag.Bool("ai", true, "Generate content with the configured AI provider")
	genImages := flag.Bool("images", false, "Generate slide images")
	charts := flag.Bool("charts", false, "Add chart placeholders")
	research := flag.Bool("research", false, "Search the web for context")
	outDir := flag.String("out", ".", "Output directory")
	dataFile := flag.String("data-file", "", "Path to a JSON request file")
	listThemes := flag.Bool("themes", false, "List themes and focus areas and exit")
	flag.Var(&focus, "focus", "Focus areas, comma separated")
	flag.Var(&docs, "doc", "Reference document (repeatable)")
	flag.Var(&imgs, "image", "Image to include (repeatable)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	svc, err := generator.NewFromConfig(cfg, nil)
	if err != nil {
		log.Fatalf("Failed to initialize generator: %v", err)
	}
	defer svc.Close()

	if *listThemes {
		for _, t := range svc.Themes() {
			fmt.Printf("%-14s %s\n", t.Key, t.Description)
		}
		fmt.Printf("\nFocus areas: %s\n", strings.Join(svc.Catalog().FocusAreas(), ", "))
		return
	}

	req := generator.Request{
		Topic:             *topic,
		SlideCount:        *slides,
		Theme:             *theme,
		FocusAreas:        focus,
		CustomContent:     *custom,
		Footer:            *footer,
		Lang:              *lang,
		UseAI:             *useAI,
		GenerateImages:    *genImages,
		ChartPlaceholders: *charts,
		WebResearch:       *research,
	}
	if *dataFile != "" {
		data, err := os.ReadFile(*dataFile)
		if err != nil {
			log.Fatalf("Error reading data file: %v", err)
		}
		if err := json.Unmarshal(data, &req); err != nil {
			log.Fatalf("Error parsing JSON data: %v", err)
		}
	}
	if req.Topic == "" {
		fmt.Println("Usage: deckgen -topic <topic> [-slides n] [-theme key] [-focus a,b] [-doc file] [-image file] [-out dir]")
		os.Exit(1)
	}

	if req.Documents, err = readFiles(docs); err != nil {
		log.Fatal(err)
	}
	if req.Images, err = readFiles(imgs); err != nil {
		log.Fatal(err)
	}
	req.Origin = "cli"

	res, err := svc.Generate(context.Background(), req)
	if err != nil {
		log.Fatalf("Error generating presentation: %v", err)
	}
	for _, w := range res.Warnings {
		fmt.Printf("Warning: %s\n", w)
	}

	path := filepath.Join(*outDir, res.Filename)
	if err := os.WriteFile(path, res.Deck, 0644); err != nil {
		log.Fatalf("Error writing %s: %v", path, err)
	}
	fmt.Printf("Successfully generated %s (%d content slides, %s content)\n", path, len(res.Presentation.Slides), res.Source)
}

func readFiles(paths []string) ([]generator.Upload, error) {
	var out []generator.Upload
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("error reading %s: %w", p, err)
		}
		out = append(out, generator.Upload{Name: filepath.Base(p), Data: data})
	}
	return out, nil
}
