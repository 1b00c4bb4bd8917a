package observer_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gnemet/DeckForge/internal/api"
	"github.com/gnemet/DeckForge/internal/catalog"
	"github.com/gnemet/DeckForge/internal/config"
	"github.com/gnemet/DeckForge/internal/generator"
	"github.com/gnemet/DeckForge/internal/observer"
	"github.com/gnemet/DeckForge/internal/pptx"
	"github.com/stretchr/testify/require"
)

var _ api.HotFolder = (*observer.Observer)(nil)

func newObserver(t *testing.T) (*observer.Observer, config.StorageConfig, chan string) {
	t.Helper()
	root := t.TempDir()
	storage := config.StorageConfig{
		Stage:  filepath.Join(root, "stage"),
		Output: filepath.Join(root, "output"),
	}
	require.NoError(t, os.MkdirAll(storage.Stage, 0755))

	cfg := &config.Config{Application: config.ApplicationConfig{Storage: storage}}
	logs := make(chan string, 100)
	o := observer.NewObserver(cfg, generator.New(catalog.Default()), logs)
	o.Settle = 10 * time.Millisecond
	return o, storage, logs
}

func run(t *testing.T, o *observer.Observer) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- o.Start(ctx) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})
}

func decks(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "*.pptx"))
	require.NoError(t, err)
	return matches
}

func TestObserverProcessesExistingRequest(t *testing.T) {
	o, storage, logs := newObserver(t)
	req := `{"topic": "Remote Work", "slides": 3, "theme": "dark"}`
	require.NoError(t, os.WriteFile(filepath.Join(storage.Stage, "remote.json"), []byte(req), 0644))

	run(t, o)

	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(storage.Stage, "processed", "remote.json"))
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	out := decks(t, storage.Output)
	require.Len(t, out, 1)
	require.True(t, strings.HasPrefix(filepath.Base(out[0]), "AI_Presentation_Remote_Work_"))

	data, err := os.ReadFile(out[0])
	require.NoError(t, err)
	slides, err := pptx.ReadSlides(data)
	require.NoError(t, err)
	require.Len(t, slides, 5)

	require.NotEmpty(t, logs)
}

func TestObserverProcessesDroppedDocument(t *testing.T) {
	o, storage, _ := newObserver(t)
	run(t, o)

	require.Eventually(t, func() bool {
		_, err := os.Stat(storage.Output)
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	notes := "Quarterly results were strong.\n- Revenue up 12%\n- Churn down"
	require.NoError(t, os.WriteFile(filepath.Join(storage.Stage, "Q3_review.md"), []byte(notes), 0644))

	require.Eventually(t, func() bool {
		return len(decks(t, storage.Output)) == 1 && !o.IsProcessing()
	}, 5*time.Second, 20*time.Millisecond)

	data, err := os.ReadFile(decks(t, storage.Output)[0])
	require.NoError(t, err)
	text, err := pptx.ExtractText(data)
	require.NoError(t, err)
	require.Contains(t, text, "Additional Insights - Q3 review")
	require.Contains(t, text, "Revenue up 12%")
}

func TestObserverMovesInvalidRequestsAside(t *testing.T) {
	o, storage, _ := newObserver(t)
	require.NoError(t, os.WriteFile(filepath.Join(storage.Stage, "broken.json"), []byte("{not json"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(storage.Stage, "empty.json"), []byte(`{"topic": ""}`), 0644))

	run(t, o)

	require.Eventually(t, func() bool {
		_, err1 := os.Stat(filepath.Join(storage.Stage, "failed", "broken.json"))
		_, err2 := os.Stat(filepath.Join(storage.Stage, "failed", "empty.json"))
		return err1 == nil && err2 == nil
	}, 5*time.Second, 20*time.Millisecond)
	require.Empty(t, decks(t, storage.Output))
}

func TestRetryFailed(t *testing.T) {
	o, storage, _ := newObserver(t)
	failed := filepath.Join(storage.Stage, "failed")
	require.NoError(t, os.MkdirAll(failed, 0755))
	require.NoError(t, os.MkdirAll(storage.Output, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(failed, "retry.json"), []byte(`{"topic": "Solar Power"}`), 0644))

	o.RetryFailed(context.Background())

	require.FileExists(t, filepath.Join(storage.Stage, "processed", "retry.json"))
	require.Len(t, decks(t, storage.Output), 1)
	require.False(t, o.IsProcessing())
}
