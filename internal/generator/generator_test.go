package generator_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gnemet/DeckForge/internal/catalog"
	"github.com/gnemet/DeckForge/internal/config"
	"github.com/gnemet/DeckForge/internal/content"
	"github.com/gnemet/DeckForge/internal/database"
	"github.com/gnemet/DeckForge/internal/generator"
	"github.com/gnemet/DeckForge/internal/images"
	"github.com/gnemet/DeckForge/internal/pptx"
	"github.com/gnemet/DeckForge/internal/search"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, time.March, 5, 14, 15, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

type fakeCompleter struct {
	answer string
	err    error
	prompt string
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.answer, f.err
}

type fakeRecorder struct {
	got []*database.Generation
}

func (f *fakeRecorder) RecordGeneration(g *database.Generation) error {
	f.got = append(f.got, g)
	return nil
}

type fakeSearcher struct{}

func (fakeSearcher) Search(context.Context, string) ([]search.Result, error) {
	return []search.Result{{Title: "Survey 2024", Snippet: "Hybrid work is the norm."}}, nil
}

type fakeCaptioner struct{}

func (fakeCaptioner) Caption(context.Context, []byte, string) (string, error) {
	return "Team on a video call", nil
}

type failingGenerator struct{}

func (failingGenerator) Generate(context.Context, string) ([]byte, error) {
	return nil, errors.New("503 service unavailable")
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 60, 40))))
	return buf.Bytes()
}

func newService(opts ...generator.Option) *generator.Service {
	return generator.New(catalog.Default(), append([]generator.Option{generator.WithClock(clock)}, opts...)...)
}

func TestGenerateRemoteWorkWithoutCredentials(t *testing.T) {
	rec := &fakeRecorder{}
	res, err := newService(generator.WithRecorder(rec)).Generate(context.Background(), generator.Request{
		Topic:      "Remote Work",
		SlideCount: 3,
		Origin:     "cli",
	})
	require.NoError(t, err)
	require.Empty(t, res.Warnings)
	require.Equal(t, content.SourceTemplate, res.Source)
	require.Equal(t, "AI_Presentation_Remote_Work_20240305_141500.pptx", res.Filename)

	slides, err := pptx.ReadSlides(res.Deck)
	require.NoError(t, err)
	require.Len(t, slides, 5)
	require.Equal(t, "Remote Work", slides[0].Title)
	require.Equal(t, "Introduction to Remote Work", slides[1].Title)
	require.Equal(t, "Remote Work - Overview", slides[2].Title)
	require.Equal(t, "Deep Dive into Remote Work", slides[3].Title)
	require.Equal(t, "Thank You!", slides[4].Title)

	require.Len(t, rec.got, 1)
	require.Equal(t, "cli", rec.got[0].Origin)
	require.Equal(t, res.ID.String(), rec.got[0].ID)
	require.Equal(t, "professional", rec.got[0].Theme)
}

func TestGenerateAIRequestedButUnavailable(t *testing.T) {
	res, err := newService().Generate(context.Background(), generator.Request{Topic: "Remote Work", SlideCount: 3, UseAI: true})
	require.NoError(t, err)
	require.Equal(t, content.SourceTemplate, res.Source)
	require.Len(t, res.Warnings, 1)
	require.Contains(t, res.Warnings[0], "No AI provider")
}

func TestGenerateMalformedAnswerFallsBack(t *testing.T) {
	fc := &fakeCompleter{answer: "I'm sorry, here are some thoughts about remote work."}
	req := generator.Request{Topic: "Remote Work", SlideCount: 4, UseAI: true, FocusAreas: []string{"benefits", "challenges"}}

	res, err := newService(generator.WithCompleter(fc)).Generate(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, content.SourceTemplate, res.Source)
	require.Len(t, res.Warnings, 1)

	want := content.NewAssembler(catalog.Default()).Assemble("Remote Work", 4, []string{"benefits", "challenges"}, "")
	require.Equal(t, want, res.Presentation)
}

func TestGenerateWithAIContentAndResearch(t *testing.T) {
	fc := &fakeCompleter{answer: "```json\n" + `{"title": "Remote Work Today", "slides": [
		{"title": "Where we are", "bullet_points": ["a"]},
		{"title": "What works"},
		{"title": "What next"}
	]}` + "\n```"}

	res, err := newService(generator.WithCompleter(fc), generator.WithSearcher(fakeSearcher{})).Generate(context.Background(), generator.Request{
		Topic:       "Remote Work",
		SlideCount:  3,
		UseAI:       true,
		WebResearch: true,
		Theme:       "dark",
	})
	require.NoError(t, err)
	require.Empty(t, res.Warnings)
	require.Equal(t, content.SourceAI, res.Source)
	require.Equal(t, "Remote Work Today", res.Presentation.Title)
	require.Contains(t, fc.prompt, "Survey 2024: Hybrid work is the norm.")

	slides, err := pptx.ReadSlides(res.Deck)
	require.NoError(t, err)
	require.Len(t, slides, 5)
	require.Equal(t, "What works", slides[2].Title)
}

func TestClosingSlideNamesRequestedTopic(t *testing.T) {
	fc := &fakeCompleter{answer: `{"title": "The Distributed Office", "slides": [
		{"title": "Where we are"}, {"title": "What works"}, {"title": "What next"}
	]}`}

	res, err := newService(generator.WithCompleter(fc)).Generate(context.Background(), generator.Request{
		Topic: "Remote Work", SlideCount: 3, UseAI: true,
	})
	require.NoError(t, err)
	require.Equal(t, content.SourceAI, res.Source)

	slides, err := pptx.ReadSlides(res.Deck)
	require.NoError(t, err)
	require.Equal(t, "The Distributed Office", slides[0].Title)
	closing := slides[len(slides)-1].Text
	require.Contains(t, closing, "Presentation on: Remote Work")
	require.NotContains(t, closing, "The Distributed Office")
}

func TestGenerateWarnsAboutShortAIAnswer(t *testing.T) {
	fc := &fakeCompleter{answer: `{"title": "Remote Work", "slides": [{"title": "Only one"}]}`}

	res, err := newService(generator.WithCompleter(fc)).Generate(context.Background(), generator.Request{
		Topic: "Remote Work", SlideCount: 5, UseAI: true,
	})
	require.NoError(t, err)
	require.Equal(t, content.SourceAI, res.Source)
	require.Len(t, res.Presentation.Slides, 1)
	require.Equal(t, []string{"model returned 1 of 5 slides"}, res.Warnings)
}

func TestGenerateImagesFailureUsesPlaceholders(t *testing.T) {
	svc := newService(generator.WithImages(images.NewRequesterWithGenerator(failingGenerator{}, time.Second)))

	res, err := svc.Generate(context.Background(), generator.Request{Topic: "Remote Work", SlideCount: 3, GenerateImages: true})
	require.NoError(t, err)
	require.Len(t, res.Warnings, 3)
	for _, s := range res.Presentation.Slides {
		require.NotEmpty(t, s.ImageBytes)
	}

	slides, err := pptx.ReadSlides(res.Deck)
	require.NoError(t, err)
	require.Len(t, slides, 5)
}

func TestReconfigureSwapsImagesAndSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	svc := newService(generator.WithImages(images.NewRequesterWithGenerator(failingGenerator{}, time.Second)))
	req := generator.Request{Topic: "Remote Work", SlideCount: 3, GenerateImages: true, WebResearch: true}

	res, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res.Warnings, 4)
	require.Equal(t, "web research is not configured", res.Warnings[0])
	require.Contains(t, res.Warnings[1], "slide 1: image generation failed")

	svc.Reconfigure(&config.Config{Search: config.SearchConfig{Enabled: true, Endpoint: srv.URL, Timeout: time.Second}})

	res, err = svc.Generate(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res.Warnings, 2)
	require.Contains(t, res.Warnings[0], "web research failed")
	require.Equal(t, "image generation is not configured, placeholders were used", res.Warnings[1])
}

func TestGenerateImagesNotConfigured(t *testing.T) {
	res, err := newService().Generate(context.Background(), generator.Request{Topic: "Remote Work", SlideCount: 3, GenerateImages: true})
	require.NoError(t, err)
	require.Equal(t, []string{"image generation is not configured, placeholders were used"}, res.Warnings)
}

func TestGenerateWithUploads(t *testing.T) {
	res, err := newService(generator.WithCaptioner(fakeCaptioner{})).Generate(context.Background(), generator.Request{
		Topic:      "Remote Work",
		SlideCount: 4,
		Documents: []generator.Upload{
			{Name: "notes.txt", Data: []byte("We moved to remote-first in 2021.\n- Hiring widened\n- Office costs fell")},
			{Name: "scan.pdf", Data: []byte("%PDF")},
		},
		Images: []generator.Upload{
			{Name: "team.png", Data: pngBytes(t)},
			{Name: "broken.png", Data: []byte("nope")},
		},
	})
	require.NoError(t, err)
	require.Len(t, res.Warnings, 2)
	require.Contains(t, res.Warnings[0], "scan.pdf")
	require.Contains(t, res.Warnings[1], "broken.png")

	p := res.Presentation
	require.Len(t, p.Slides, 4)
	require.Equal(t, content.CustomType, p.Slides[3].Type)
	require.Equal(t, []string{"Hiring widened", "Office costs fell"}, p.Slides[3].BulletPoints)
	require.Equal(t, "Team on a video call", p.Slides[0].ImageCaption)

	text, err := pptx.ExtractText(res.Deck)
	require.NoError(t, err)
	require.Contains(t, text, "Team on a video call")
}

func TestGenerateInvalidRequests(t *testing.T) {
	svc := newService()

	_, err := svc.Generate(context.Background(), generator.Request{Topic: "  "})
	require.ErrorIs(t, err, generator.ErrInvalidRequest)
	require.ErrorIs(t, err, content.ErrEmptyTopic)

	_, err = svc.Generate(context.Background(), generator.Request{Topic: "x", SlideCount: 20})
	require.ErrorIs(t, err, content.ErrSlideCount)

	_, err = svc.Generate(context.Background(), generator.Request{Topic: "x", Theme: "neon"})
	require.ErrorIs(t, err, generator.ErrInvalidRequest)
}

func TestGenerateDefaults(t *testing.T) {
	res, err := newService().Generate(context.Background(), generator.Request{Topic: "Solar", FocusAreas: []string{"benefits", " ", "space_mining"}})
	require.NoError(t, err)
	require.Len(t, res.Presentation.Slides, generator.DefaultSlideCount)
	require.Equal(t, "Space Mining - Solar", res.Presentation.Slides[1].Title)
	require.Len(t, res.Warnings, 1)
	require.Contains(t, res.Warnings[0], "space_mining")
}

func TestGenerateHungarianLabels(t *testing.T) {
	res, err := newService().Generate(context.Background(), generator.Request{Topic: "Távmunka", SlideCount: 3, Lang: "hu"})
	require.NoError(t, err)

	slides, err := pptx.ReadSlides(res.Deck)
	require.NoError(t, err)
	require.Equal(t, "Köszönöm a figyelmet!", slides[len(slides)-1].Title)
	require.True(t, strings.HasPrefix(res.Filename, "AI_Presentation_Távmunka_"))
}

func TestPreview(t *testing.T) {
	res, err := newService().Preview(context.Background(), generator.Request{Topic: "Remote Work", SlideCount: 3})
	require.NoError(t, err)
	require.Nil(t, res.Deck)
	require.Len(t, res.Presentation.Slides, 3)
}

func TestFilename(t *testing.T) {
	require.Equal(t, "AI_Presentation_Remote_Work_20240305_141500.pptx", generator.Filename("Remote Work!", fixedNow))
	require.Equal(t, "AI_Presentation_a_b_20240305_141500.pptx", generator.Filename("  a -- b ", fixedNow))
	require.Equal(t, "AI_Presentation_Café_Crème_20240305_141500.pptx", generator.Filename("Café & Crème", fixedNow))
	require.Equal(t, "AI_Presentation_Untitled_20240305_141500.pptx", generator.Filename("???", fixedNow))
}
