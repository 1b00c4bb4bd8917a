package content_test

import (
	"strings"
	"testing"

	"github.com/gnemet/DeckForge/internal/content"
	"github.com/stretchr/testify/require"
)

const fencedAnswer = "Sure! Here is your deck:\n```json\n" + `{
  "title": "Remote Work",
  "subtitle": "Working from anywhere",
  "slides": [
    {"slide_number": 1, "type": "introduction", "title": "Why remote", "content": "Context.", "bullet_points": ["a", "b"], "image_prompt": "home office"},
    {"title": "Tools"}
  ]
}` + "\n```\nLet me know if you need changes."

func TestParseFenced(t *testing.T) {
	p, err := content.ParsePresentation(fencedAnswer, 5)
	require.NoError(t, err)

	require.Equal(t, "Remote Work", p.Title)
	require.Equal(t, "Working from anywhere", p.Subtitle)
	require.Len(t, p.Slides, 2)
	require.Equal(t, "home office", p.Slides[0].ImagePrompt)

	tools := p.Slides[1]
	require.Equal(t, 2, tools.SlideNumber)
	require.Equal(t, "content", tools.Type)
	require.NotEmpty(t, tools.Content)
	require.NotEmpty(t, tools.BulletPoints)
	require.Equal(t, content.DefaultImagePrompt("Tools"), tools.ImagePrompt)
}

func TestParseBraceSlice(t *testing.T) {
	answer := `Here you go {"title": "T", "slides": [{"title": "A"}, {"title": "B"}, {"title": "C"}]} hope it helps`

	p, err := content.ParsePresentation(answer, 2)
	require.NoError(t, err)
	require.Equal(t, content.DefaultSubtitle, p.Subtitle)
	require.Len(t, p.Slides, 2)
}

func TestParseClampsBullets(t *testing.T) {
	answer := `{"title": "T", "slides": [{"title": "A", "bullet_points": ["1","2","3"," ","4","5","6","7","8"]}]}`

	p, err := content.ParsePresentation(answer, 3)
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2", "3", "4", "5", "6"}, p.Slides[0].BulletPoints)
}

func TestParseRejects(t *testing.T) {
	cases := map[string]struct {
		answer string
		err    error
	}{
		"prose":          {"I cannot help with that.", content.ErrMalformedResponse},
		"broken json":    {`{"title": "T", "slides": [}`, content.ErrMalformedResponse},
		"wrong type":     {`{"title": 42, "slides": [{"title": "A"}]}`, content.ErrMalformedResponse},
		"bullets string": {`{"title": "T", "slides": [{"title": "A", "bullet_points": "x"}]}`, content.ErrMalformedResponse},
		"no title":       {`{"slides": [{"title": "A"}]}`, content.ErrMissingKey},
		"no slides":      {`{"title": "T", "slides": []}`, content.ErrMissingKey},
		"slide no title": {`{"title": "T", "slides": [{"content": "x"}]}`, content.ErrMissingKey},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := content.ParsePresentation(tc.answer, 5)
			require.ErrorIs(t, err, tc.err)
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := content.BuildPrompt(content.Params{
		Topic:         "Remote Work",
		SlideCount:    4,
		FocusAreas:    []string{"benefits", "challenges"},
		CustomContent: "Our company data",
		Research:      []string{"Gallup: 29% hybrid"},
	})

	require.Contains(t, prompt, `"Remote Work"`)
	require.Contains(t, prompt, "exactly 4 content slides")
	require.Contains(t, prompt, "benefits, challenges")
	require.Contains(t, prompt, "Our company data")
	require.Contains(t, prompt, "- Gallup: 29% hybrid")
	require.True(t, strings.Contains(prompt, `"bullet_points"`))
}
