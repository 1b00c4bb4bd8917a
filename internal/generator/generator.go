package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gnemet/DeckForge/internal/catalog"
	"github.com/gnemet/DeckForge/internal/content"
	"github.com/gnemet/DeckForge/internal/database"
	"github.com/gnemet/DeckForge/internal/document"
	"github.com/gnemet/DeckForge/internal/i18n"
	"github.com/gnemet/DeckForge/internal/images"
	"github.com/gnemet/DeckForge/internal/pptx"
	"github.com/gnemet/DeckForge/internal/search"
)

type Captioner interface {
	Caption(ctx context.Context, data []byte, mime string) (string, error)
}

type Searcher interface {
	Search(ctx context.Context, query string) ([]search.Result, error)
}

// Recorder keeps generation metadata.
type Recorder interface {
	RecordGeneration(g *database.Generation) error
}

type Service struct {
	catalog   *catalog.CatalogProvider
	content   *content.Requester
	captioner Captioner

	// images and searcher can be swapped on config reload
	mu       sync.RWMutex
	images   *images.Requester
	searcher Searcher

	recorder  Recorder
	builder   *pptx.Builder
	now       func() time.Time

	completer content.Completer
}

type Option func(*Service)

// WithCompleter sets the chat model used when a request asks for AI content.
func WithCompleter(c content.Completer) Option {
	return func(s *Service) { s.completer = c }
}

func WithImages(r *images.Requester) Option {
	return func(s *Service) { s.images = r }
}

func WithCaptioner(c Captioner) Option {
	return func(s *Service) { s.captioner = c }
}

func WithSearcher(sr Searcher) Option {
	return func(s *Service) { s.searcher = sr }
}

func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

func WithCreator(name string) Option {
	return func(s *Service) { s.builder = pptx.NewBuilder(name) }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(cat *catalog.CatalogProvider, opts ...Option) *Service {
	s := &Service{
		catalog: cat,
		builder: pptx.NewBuilder("DeckForge"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.images == nil {
		s.images = images.NewRequesterWithGenerator(nil, 0)
	}
	s.content = content.NewRequester(s.completer, content.NewAssembler(cat))
	return s
}

// Close releases the AI client when it holds connections.
func (s *Service) Close() error {
	if c, ok := s.completer.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (s *Service) currentImages() *images.Requester {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.images
}

func (s *Service) currentSearcher() Searcher {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.searcher
}

// SetImages replaces the image requester; requests already running keep the old one.
func (s *Service) SetImages(r *images.Requester) {
	if r == nil {
		r = images.NewRequesterWithGenerator(nil, 0)
	}
	s.mu.Lock()
	s.images = r
	s.mu.Unlock()
}

// SetSearcher replaces the web searcher; nil disables web research.
func (s *Service) SetSearcher(sr Searcher) {
	s.mu.Lock()
	s.searcher = sr
	s.mu.Unlock()
}

// Themes lists the available presets.
func (s *Service) Themes() []catalog.Theme {
	return s.catalog.Themes()
}

func (s *Service) Catalog() *catalog.CatalogProvider {
	return s.catalog
}

// Preview runs the content steps only; the result carries no deck.
func (s *Service) Preview(ctx context.Context, req Request) (*Result, error) {
	if err := req.normalize(s.catalog); err != nil {
		return nil, err
	}
	res := &Result{ID: uuid.New()}
	s.prepareContent(ctx, &req, res)
	return res, nil
}

// Generate runs the whole pipeline for one request. Failures of external
// services end up in Result.Warnings; only invalid input, cancellation and
// deck serialization return an error.
func (s *Service) Generate(ctx context.Context, req Request) (*Result, error) {
	start := s.now()
	if err := req.normalize(s.catalog); err != nil {
		return nil, err
	}
	theme, _ := s.catalog.Theme(req.Theme)

	res := &Result{ID: uuid.New()}
	uploaded := s.prepareContent(ctx, &req, res)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	includeImages := len(uploaded) > 0 || req.GenerateImages
	s.attachImages(ctx, &req, res, uploaded, images.ThemePalette(theme))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	deck, warnings, err := s.builder.Build(res.Presentation, theme, pptx.Options{
		IncludeImages:     includeImages,
		ChartPlaceholders: req.ChartPlaceholders,
		Footer:            req.Footer,
		Labels:            labels(req.Lang),
		Topic:             req.Topic,
		Date:              start,
	})
	res.Warnings = append(res.Warnings, warnings...)
	if err != nil {
		return nil, fmt.Errorf("deck assembly failed: %w", err)
	}

	res.Deck = deck
	res.Filename = Filename(req.Topic, start)
	log.Printf("Generated %s (%d slides, %s content, %d warnings)", res.Filename, len(res.Presentation.Slides), res.Source, len(res.Warnings))

	s.record(&req, res, s.now().Sub(start))
	return res, nil
}

type uploadedImage struct {
	name    string
	data    []byte
	mime    string
	caption string
}

// prepareContent reads uploads, gathers research and produces the
// presentation structure.
func (s *Service) prepareContent(ctx context.Context, req *Request, res *Result) []uploadedImage {
	for _, f := range req.FocusAreas {
		if !s.catalog.Known(f) {
			res.warn("unknown focus area %q, using the generic template", f)
		}
	}

	var extra []string
	for _, d := range req.Documents {
		text, err := document.ReadText(d.Name, d.Data)
		if err != nil {
			res.warn("document %s ignored: %v", d.Name, err)
			continue
		}
		if text != "" {
			extra = append(extra, text)
		}
	}
	if len(extra) > 0 {
		req.CustomContent = strings.TrimSpace(strings.Join(append([]string{req.CustomContent}, extra...), "\n\n"))
	}

	var research []string
	uploaded := s.readImages(ctx, req, res)
	for _, img := range uploaded {
		research = append(research, fmt.Sprintf("Image %s: %s", img.name, img.caption))
	}

	if req.WebResearch {
		if searcher := s.currentSearcher(); searcher == nil {
			res.warn("web research is not configured")
		} else if results, err := searcher.Search(ctx, req.Topic); err != nil {
			res.warn("web research failed: %v", err)
		} else {
			research = append(research, search.Context(results)...)
		}
	}

	params := req.params()
	params.Research = research

	var out content.Outcome
	if req.UseAI {
		out = s.content.Request(ctx, params)
		if errors.Is(out.Fallback, content.ErrNoCompleter) {
			res.warn("%s", i18n.T(req.Lang, "warning.no_ai"))
		} else if w := out.Warning(); w != "" {
			res.warn("%s", w)
		}
		for _, n := range out.Notices {
			res.warn("%s", n)
		}
	} else {
		out = s.content.Template(params)
	}

	res.Presentation = out.Presentation
	res.Source = out.Source
	return uploaded
}

func (s *Service) readImages(ctx context.Context, req *Request, res *Result) []uploadedImage {
	var out []uploadedImage
	for _, u := range req.Images {
		data, mime, err := images.Normalize(u.Data)
		if err != nil {
			res.warn("image %s ignored: %v", u.Name, err)
			continue
		}

		caption := strings.TrimSuffix(filepath.Base(u.Name), filepath.Ext(u.Name))
		if s.captioner != nil {
			c, err := s.captioner.Caption(ctx, data, mime)
			if err != nil {
				res.warn("caption for %s unavailable: %v", u.Name, err)
			} else {
				caption = c
			}
		}
		out = append(out, uploadedImage{name: u.Name, data: data, mime: mime, caption: caption})
	}
	return out
}

// attachImages gives uploaded images to the first slides in order, then asks
// the image endpoint for the rest, one slide at a time.
func (s *Service) attachImages(ctx context.Context, req *Request, res *Result, uploaded []uploadedImage, pal images.Palette) {
	slides := res.Presentation.Slides
	for i := range slides {
		if i < len(uploaded) {
			slides[i].ImageBytes = uploaded[i].data
			slides[i].ImageCaption = uploaded[i].caption
		}
	}
	if len(uploaded) > len(slides) {
		res.warn("%d uploaded images did not fit on a slide", len(uploaded)-len(slides))
	}

	if !req.GenerateImages {
		return
	}
	imgs := s.currentImages()
	if !imgs.Available() {
		res.warn("image generation is not configured, placeholders were used")
	}

	for i := range slides {
		if slides[i].ImageBytes != nil {
			continue
		}
		if ctx.Err() != nil {
			return
		}

		prompt := slides[i].ImagePrompt
		if prompt == "" {
			prompt = content.DefaultImagePrompt(slides[i].Title)
		}
		img := imgs.GenerateImage(ctx, prompt, pal)
		if img.Err != nil && imgs.Available() {
			res.warn("slide %d: image generation failed, placeholder used: %v", i+1, img.Err)
		}
		slides[i].ImageBytes = img.Data
	}
}

func (s *Service) record(req *Request, res *Result, took time.Duration) {
	if s.recorder == nil {
		return
	}
	origin := req.Origin
	if origin == "" {
		origin = "web"
	}
	err := s.recorder.RecordGeneration(&database.Generation{
		ID:         res.ID.String(),
		Topic:      req.Topic,
		Theme:      req.Theme,
		SlideCount: len(res.Presentation.Slides),
		Source:     string(res.Source),
		Origin:     origin,
		Filename:   res.Filename,
		Warnings:   len(res.Warnings),
		DurationMS: took.Milliseconds(),
	})
	if err != nil {
		log.Printf("Failed to record generation %s: %v", res.ID, err)
	}
}

func labels(lang string) pptx.Labels {
	return pptx.Labels{
		GeneratedOn:    i18n.T(lang, "deck.generated_on"),
		ThankYou:       i18n.T(lang, "deck.thank_you"),
		Questions:      i18n.T(lang, "deck.questions"),
		PresentationOn: i18n.T(lang, "deck.presentation_on"),
		Chart:          i18n.T(lang, "deck.chart"),
	}
}
