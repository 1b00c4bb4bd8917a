package generator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gnemet/DeckForge/internal/catalog"
	"github.com/gnemet/DeckForge/internal/content"
)

const DefaultSlideCount = 5

var ErrInvalidRequest = errors.New("invalid request")

// Upload is a file sent along with a request.
type Upload struct {
	Name string `json:"name"`
	Data []byte `json:"-"`
}

// Request is everything a user can ask for. The JSON form is what the hot
// folder accepts.
type Request struct {
	Topic             string   `json:"topic"`
	SlideCount        int      `json:"slides"`
	Theme             string   `json:"theme"`
	FocusAreas        []string `json:"focus_areas,omitempty"`
	CustomContent     string   `json:"custom_content,omitempty"`
	UseAI             bool     `json:"use_ai"`
	GenerateImages    bool     `json:"generate_images"`
	ChartPlaceholders bool     `json:"chart_placeholders"`
	WebResearch       bool     `json:"web_research"`
	Footer            string   `json:"footer,omitempty"`
	Lang              string   `json:"lang,omitempty"`

	Documents []Upload `json:"-"`
	Images    []Upload `json:"-"`
	// Origin tags the usage log entry: web, cli or observer.
	Origin string `json:"-"`
}

func (r Request) params() content.Params {
	return content.Params{
		Topic:         r.Topic,
		SlideCount:    r.SlideCount,
		FocusAreas:    r.FocusAreas,
		CustomContent: r.CustomContent,
	}
}

// normalize fills defaults and rejects what cannot be generated.
func (r *Request) normalize(cat *catalog.CatalogProvider) error {
	r.Topic = strings.TrimSpace(r.Topic)
	if r.SlideCount == 0 {
		r.SlideCount = DefaultSlideCount
	}
	if r.Theme == "" {
		r.Theme = cat.DefaultTheme().Key
	}
	if r.Lang == "" {
		r.Lang = "en"
	}

	var focus []string
	for _, f := range r.FocusAreas {
		if f = strings.TrimSpace(f); f != "" {
			focus = append(focus, f)
		}
	}
	r.FocusAreas = focus

	if err := r.params().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if _, ok := cat.Theme(r.Theme); !ok {
		return fmt.Errorf("%w: unknown theme %q", ErrInvalidRequest, r.Theme)
	}
	return nil
}

// Result of one generation.
type Result struct {
	ID           uuid.UUID             `json:"id"`
	Presentation *content.Presentation `json:"presentation"`
	Deck         []byte                `json:"-"`
	Filename     string                `json:"filename,omitempty"`
	Source       content.Source        `json:"source"`
	Warnings     []string              `json:"warnings,omitempty"`
}

func (r *Result) warn(format string, v ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, v...))
}

var (
	unsafeChars = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)
	separators  = regexp.MustCompile(`[-\s]+`)
)

// Filename names a deck after its topic and creation time:
// AI_Presentation_<topic>_<YYYYmmdd_HHMMSS>.pptx
func Filename(topic string, t time.Time) string {
	clean := unsafeChars.ReplaceAllString(strings.TrimSpace(topic), "")
	clean = separators.ReplaceAllString(clean, "_")
	if r := []rune(clean); len(r) > 60 {
		clean = string(r[:60])
	}
	if clean == "" {
		clean = "Untitled"
	}
	return fmt.Sprintf("AI_Presentation_%s_%s.pptx", clean, t.Format("20060102_150405"))
}
