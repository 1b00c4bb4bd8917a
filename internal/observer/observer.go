package observer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gnemet/DeckForge/internal/config"
	"github.com/gnemet/DeckForge/internal/document"
	"github.com/gnemet/DeckForge/internal/generator"
)

const (
	processedDir = "processed"
	failedDir    = "failed"
)

// Generator is the part of generator.Service the hot folder needs.
type Generator interface {
	Generate(ctx context.Context, req generator.Request) (*generator.Result, error)
}

// Observer watches the stage folder. A dropped .json file is decoded as a
// generation request; a dropped document becomes the source material of a
// request titled after the file name. Decks are written to the output folder.
type Observer struct {
	cfg         config.StorageConfig
	gen         Generator
	activeTasks int
	mu          sync.Mutex
	// files are handled one at a time, whether from the watcher or a retry
	procMu      sync.Mutex
	LogChan     chan string

	// Settle is how long a file must rest before it is read.
	Settle time.Duration
}

func NewObserver(cfg *config.Config, gen Generator, logChan chan string) *Observer {
	return &Observer{
		cfg:     cfg.Application.Storage,
		gen:     gen,
		LogChan: logChan,
		Settle:  2 * time.Second,
	}
}

func (o *Observer) log(format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	log.Println(msg)
	if o.LogChan != nil {
		select {
		case o.LogChan <- msg:
		default:
			// fast non-blocking drop if buffer full
		}
	}
}

func (o *Observer) incrementTask() {
	o.mu.Lock()
	o.activeTasks++
	o.mu.Unlock()
}

func (o *Observer) decrementTask() {
	o.mu.Lock()
	o.activeTasks--
	o.mu.Unlock()
}

func accepted(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".json") || document.Supported(name)
}

func (o *Observer) Start(ctx context.Context) error {
	stageDir := o.cfg.Stage
	if stageDir == "" {
		return fmt.Errorf("stage storage directory not configured")
	}

	// Ensure directories exist
	for _, dir := range []string{stageDir, o.outputDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(stageDir); err != nil {
		return err
	}

	o.log("Background observer started, watching: %s", stageDir)

	// Initial scan
	o.scanDirectory(ctx, stageDir)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if (event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) && accepted(event.Name) {
				o.log("Detected change in: %s", event.Name)

				// Debounce/delay for file transfer to complete
				select {
				case <-time.After(o.Settle):
				case <-ctx.Done():
					return nil
				}
				o.processFile(ctx, event.Name)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			o.log("Watcher error: %v", err)

		case <-ctx.Done():
			return nil
		}
	}
}

func (o *Observer) outputDir() string {
	if o.cfg.Output != "" {
		return o.cfg.Output
	}
	return filepath.Join(o.cfg.Stage, "output")
}

func (o *Observer) scanDirectory(ctx context.Context, dir string) {
	files, err := os.ReadDir(dir)
	if err != nil {
		o.log("Failed to scan directory: %v", err)
		return
	}

	for _, f := range files {
		if !f.IsDir() && accepted(f.Name()) {
			o.processFile(ctx, filepath.Join(dir, f.Name()))
		}
	}
}

// requestFor turns a dropped file into a generation request.
func requestFor(path string, data []byte) (generator.Request, error) {
	name := filepath.Base(path)

	if strings.EqualFold(filepath.Ext(name), ".json") {
		var req generator.Request
		if err := json.Unmarshal(data, &req); err != nil {
			return req, fmt.Errorf("invalid request file: %w", err)
		}
		return req, nil
	}

	topic := strings.TrimSuffix(name, filepath.Ext(name))
	topic = strings.NewReplacer("_", " ", "-", " ").Replace(topic)
	return generator.Request{
		Topic:     strings.Join(strings.Fields(topic), " "),
		Documents: []generator.Upload{{Name: name, Data: data}},
	}, nil
}

func (o *Observer) processFile(ctx context.Context, path string) {
	o.incrementTask()
	defer o.decrementTask()

	o.procMu.Lock()
	defer o.procMu.Unlock()

	filename := filepath.Base(path)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			o.log("Failed to read %s: %v", filename, err)
		}
		// already handled by an earlier event
		return
	}
	o.log("Processing file: %s", filename)

	req, err := requestFor(path, data)
	if err != nil {
		o.log("Failed to read request %s: %v", filename, err)
		o.finalizeFile(path, failedDir)
		return
	}
	req.Origin = "observer"

	res, err := o.gen.Generate(ctx, req)
	if err != nil {
		o.log("Failed to generate deck for %s: %v", filename, err)
		o.finalizeFile(path, failedDir)
		return
	}

	out := filepath.Join(o.outputDir(), res.Filename)
	if err := os.WriteFile(out, res.Deck, 0644); err != nil {
		o.log("Failed to write %s: %v", out, err)
		o.finalizeFile(path, failedDir)
		return
	}
	for _, w := range res.Warnings {
		o.log("Warning for %s: %s", filename, w)
	}

	o.log("Successfully processed: %s -> %s (%d slides, %s content)", filename, out, len(res.Presentation.Slides), res.Source)
	o.finalizeFile(path, processedDir)
}

// finalizeFile moves a handled file into a subfolder of the stage so it is not
// picked up again.
func (o *Observer) finalizeFile(path, sub string) {
	dir := filepath.Join(o.cfg.Stage, sub)
	if err := os.MkdirAll(dir, 0755); err != nil {
		o.log("Failed to create %s: %v", dir, err)
		return
	}

	filename := filepath.Base(path)
	newPath := filepath.Join(dir, filename)
	if err := os.Rename(path, newPath); err != nil {
		o.log("Failed to move %s to %s folder: %v", filename, sub, err)
		return
	}
	o.log("Moved %s to %s", filename, newPath)
}

// RetryFailed moves every failed file back to the stage and scans it again.
func (o *Observer) RetryFailed(ctx context.Context) {
	o.incrementTask()
	defer o.decrementTask()

	stageDir := o.cfg.Stage
	failed := filepath.Join(stageDir, failedDir)

	files, err := os.ReadDir(failed)
	if err != nil {
		if !os.IsNotExist(err) {
			o.log("Failed to read %s: %v", failed, err)
		}
		return
	}
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		if err := os.Rename(filepath.Join(failed, file.Name()), filepath.Join(stageDir, file.Name())); err != nil {
			o.log("Failed to move %s back to stage: %v", file.Name(), err)
		} else {
			o.log("Moved %s back to stage for reprocessing", file.Name())
		}
	}

	o.log("Retriggering full scan of %s", stageDir)
	o.scanDirectory(ctx, stageDir)
}

func (o *Observer) IsProcessing() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.activeTasks > 0
}
