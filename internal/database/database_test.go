package database_test

import (
	"os"
	"testing"

	"github.com/gnemet/DeckForge/internal/database"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Runs against a real PostgreSQL when DB_URL is set.
func TestUsageLog(t *testing.T) {
	url := os.Getenv("DB_URL")
	if url == "" {
		t.Skip("DB_URL not set")
	}

	db, err := database.NewConnection(url)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, database.EnsureSchema(db))

	before, err := database.GetStats(db)
	require.NoError(t, err)

	id := uuid.NewString()
	require.NoError(t, database.SaveGeneration(db, &database.Generation{
		ID:         id,
		Topic:      "Remote Work",
		Theme:      "professional",
		SlideCount: 3,
		Source:     "ai",
		Origin:     "web",
		Filename:   "AI_Presentation_Remote_Work_20240101_120000.pptx",
	}))
	require.NoError(t, database.LogAIUsage(db, &database.AIUsage{
		GenerationID:     id,
		Provider:         "openai",
		Model:            "gpt-4o-mini",
		PromptTokens:     100,
		CompletionTokens: 50,
		TotalTokens:      150,
		Cost:             0.0001,
	}))

	after, err := database.GetStats(db)
	require.NoError(t, err)
	require.Equal(t, before.Generations+1, after.Generations)
	require.Equal(t, before.AIGenerations+1, after.AIGenerations)
	require.Equal(t, before.TotalTokens+150, after.TotalTokens)

	recent, err := database.ListRecentGenerations(db, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	require.Equal(t, id, recent[0].ID)
}
