package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var fencedJSON = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(\\{.*?\\})\\s*```")

// wire types use pointers so absent keys can be told apart from empty ones.
type wirePresentation struct {
	Title    *string     `json:"title"`
	Subtitle *string     `json:"subtitle"`
	Slides   []wireSlide `json:"slides"`
}

type wireSlide struct {
	SlideNumber  *int     `json:"slide_number"`
	Type         *string  `json:"type"`
	Title        *string  `json:"title"`
	Content      *string  `json:"content"`
	BulletPoints []string `json:"bullet_points"`
	ImagePrompt  *string  `json:"image_prompt"`
}

// ExtractJSON finds the JSON object in a chat answer: a fenced block first,
// otherwise everything between the first '{' and the last '}'.
func ExtractJSON(text string) (string, error) {
	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		return m[1], nil
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return "", fmt.Errorf("%w: no JSON object found", ErrMalformedResponse)
	}
	return text[start : end+1], nil
}

// ParsePresentation decodes an LLM answer into a Presentation. Required keys
// are title, a non-empty slides array and a title on every slide; everything
// else is backfilled. At most want slides are kept when want > 0.
func ParsePresentation(text string, want int) (*Presentation, error) {
	raw, err := ExtractJSON(text)
	if err != nil {
		return nil, err
	}

	var w wirePresentation
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	if err := dec.Decode(&w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if w.Title == nil || strings.TrimSpace(*w.Title) == "" {
		return nil, fmt.Errorf("%w: title", ErrMissingKey)
	}
	if len(w.Slides) == 0 {
		return nil, fmt.Errorf("%w: slides", ErrMissingKey)
	}

	slides := w.Slides
	if want > 0 && len(slides) > want {
		slides = slides[:want]
	}

	p := &Presentation{
		Title:    strings.TrimSpace(*w.Title),
		Subtitle: DefaultSubtitle,
		Slides:   make([]SlideSpec, 0, len(slides)),
	}
	if w.Subtitle != nil && strings.TrimSpace(*w.Subtitle) != "" {
		p.Subtitle = strings.TrimSpace(*w.Subtitle)
	}

	for i, ws := range slides {
		if ws.Title == nil || strings.TrimSpace(*ws.Title) == "" {
			return nil, fmt.Errorf("%w: slides[%d].title", ErrMissingKey, i)
		}
		p.Slides = append(p.Slides, backfill(ws, i))
	}
	return p, nil
}

func backfill(ws wireSlide, i int) SlideSpec {
	s := SlideSpec{
		SlideNumber: i + 1,
		Type:        "content",
		Title:       strings.TrimSpace(*ws.Title),
	}
	if ws.SlideNumber != nil && *ws.SlideNumber > 0 {
		s.SlideNumber = *ws.SlideNumber
	}
	if ws.Type != nil && strings.TrimSpace(*ws.Type) != "" {
		s.Type = strings.TrimSpace(*ws.Type)
	}
	if ws.Content != nil {
		s.Content = strings.TrimSpace(*ws.Content)
	}
	if s.Content == "" {
		s.Content = "Key insights on " + s.Title + "."
	}

	for _, b := range ws.BulletPoints {
		if b = strings.TrimSpace(b); b != "" && len(s.BulletPoints) < MaxBulletPoints {
			s.BulletPoints = append(s.BulletPoints, b)
		}
	}
	if ws.BulletPoints == nil {
		s.BulletPoints = []string{"Key aspects of " + s.Title}
	}

	if ws.ImagePrompt != nil && strings.TrimSpace(*ws.ImagePrompt) != "" {
		s.ImagePrompt = strings.TrimSpace(*ws.ImagePrompt)
	} else {
		s.ImagePrompt = DefaultImagePrompt(s.Title)
	}
	return s
}
