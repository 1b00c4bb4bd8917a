package database

import (
	"database/sql"
	"time"
)

// Generation is the metadata of one produced deck. Slide text is never stored.
type Generation struct {
	ID         string    `json:"id"`
	Topic      string    `json:"topic"`
	Theme      string    `json:"theme"`
	SlideCount int       `json:"slide_count"`
	Source     string    `json:"source"` // ai | template
	Origin     string    `json:"origin"` // web | cli | observer
	Filename   string    `json:"filename"`
	Warnings   int       `json:"warnings"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

type AIUsage struct {
	ID               int       `json:"id"`
	GenerationID     string    `json:"generation_id,omitempty"`
	Provider         string    `json:"provider"`
	Model            string    `json:"model"`
	PromptTokens     int       `json:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens"`
	TotalTokens      int       `json:"total_tokens"`
	Cost             float64   `json:"cost"`
	CreatedAt        time.Time `json:"created_at"`
}

type Stats struct {
	Generations   int     `json:"generations"`
	AIGenerations int     `json:"ai_generations"`
	TotalTokens   int     `json:"total_tokens"`
	TotalCost     float64 `json:"total_cost"`
}

func SaveGeneration(db *sql.DB, g *Generation) error {
	query := `
		INSERT INTO generations (id, topic, theme, slide_count, source, origin, filename, warnings, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := db.Exec(query, g.ID, g.Topic, g.Theme, g.SlideCount, g.Source, g.Origin, g.Filename, g.Warnings, g.DurationMS)
	return err
}

func ListRecentGenerations(db *sql.DB, limit int) ([]Generation, error) {
	rows, err := db.Query("SELECT id, topic, theme, slide_count, source, origin, filename, warnings, duration_ms, created_at FROM generations ORDER BY created_at DESC LIMIT $1", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var gens []Generation
	for rows.Next() {
		var g Generation
		if err := rows.Scan(&g.ID, &g.Topic, &g.Theme, &g.SlideCount, &g.Source, &g.Origin, &g.Filename, &g.Warnings, &g.DurationMS, &g.CreatedAt); err != nil {
			return nil, err
		}
		gens = append(gens, g)
	}
	return gens, rows.Err()
}

func LogAIUsage(db *sql.DB, u *AIUsage) error {
	query := `
		INSERT INTO ai_usage (generation_id, provider, model, prompt_tokens, completion_tokens, total_tokens, cost)
		VALUES (NULLIF($1, ''), $2, $3, $4, $5, $6, $7)
	`
	_, err := db.Exec(query, u.GenerationID, u.Provider, u.Model, u.PromptTokens, u.CompletionTokens, u.TotalTokens, u.Cost)
	return err
}

func GetStats(db *sql.DB) (*Stats, error) {
	var s Stats
	err := db.QueryRow(`
		SELECT COUNT(*), COUNT(*) FILTER (WHERE source = 'ai')
		FROM generations
	`).Scan(&s.Generations, &s.AIGenerations)
	if err != nil {
		return nil, err
	}

	err = db.QueryRow("SELECT COALESCE(SUM(total_tokens), 0), COALESCE(SUM(cost), 0) FROM ai_usage").Scan(&s.TotalTokens, &s.TotalCost)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
