package generator

import (
	"database/sql"
	"log"

	"github.com/gnemet/DeckForge/internal/ai"
	"github.com/gnemet/DeckForge/internal/catalog"
	"github.com/gnemet/DeckForge/internal/config"
	"github.com/gnemet/DeckForge/internal/database"
	"github.com/gnemet/DeckForge/internal/images"
	"github.com/gnemet/DeckForge/internal/search"
)

type dbRecorder struct {
	db *sql.DB
}

func (r dbRecorder) RecordGeneration(g *database.Generation) error {
	return database.SaveGeneration(r.db, g)
}

// NewFromConfig wires the service from configuration. Missing credentials
// never fail: the affected step falls back to templates or placeholders.
// db may be nil.
func NewFromConfig(cfg *config.Config, db *sql.DB) (*Service, error) {
	cat, err := catalog.NewCatalogProvider()
	if err != nil {
		return nil, err
	}

	opts := []Option{
		WithCreator(cfg.Application.Name),
		WithImages(images.NewRequester(cfg.Image)),
	}

	client, err := ai.NewClient(cfg)
	if err != nil {
		log.Printf("AI content disabled: %v", err)
	} else {
		if db != nil {
			client.OnUsage = func(u ai.Usage) {
				if err := database.LogAIUsage(db, &database.AIUsage{
					Provider:         u.Provider,
					Model:            u.Model,
					PromptTokens:     u.PromptTokens,
					CompletionTokens: u.CompletionTokens,
					TotalTokens:      u.TotalTokens(),
					Cost:             u.Cost(),
				}); err != nil {
					log.Printf("Failed to log AI usage: %v", err)
				}
			}
		}
		opts = append(opts, WithCompleter(client))
	}

	if cfg.Vision.Enabled {
		c, err := ai.NewCaptioner(cfg)
		if err != nil {
			log.Printf("Vision captions disabled: %v", err)
		} else {
			opts = append(opts, WithCaptioner(c))
		}
	}

	if sr := searcherFor(cfg.Search); sr != nil {
		opts = append(opts, WithSearcher(sr))
	}

	if db != nil {
		opts = append(opts, WithRecorder(dbRecorder{db: db}))
	}

	return New(cat, opts...), nil
}

// searcherFor returns nil when web research is disabled, never a typed nil.
func searcherFor(cfg config.SearchConfig) Searcher {
	if !cfg.Enabled {
		return nil
	}
	return search.NewSearcher(cfg)
}

// Reconfigure applies the settings that are safe to change at runtime: image
// generation and web research. AI providers need a restart.
func (s *Service) Reconfigure(cfg *config.Config) {
	s.SetImages(images.NewRequester(cfg.Image))
	s.SetSearcher(searcherFor(cfg.Search))
	log.Printf("Applied config: images enabled=%t (%s), web research enabled=%t", cfg.Image.Enabled, cfg.Image.Driver, cfg.Search.Enabled)
}
