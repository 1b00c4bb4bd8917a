package content

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gnemet/DeckForge/internal/catalog"
)

const (
	MinSlides       = 3
	MaxSlides       = 15
	MaxBulletPoints = 6

	DefaultSubtitle = "AI-Generated Presentation"
	CustomType      = "custom"
)

var (
	ErrEmptyTopic        = errors.New("topic is required")
	ErrSlideCount        = fmt.Errorf("slide count must be between %d and %d", MinSlides, MaxSlides)
	ErrMalformedResponse = errors.New("malformed AI response")
	ErrMissingKey        = errors.New("required key missing in AI response")
	ErrNoCompleter       = errors.New("no AI provider configured")
)

// Presentation is the structure a deck is built from.
type Presentation struct {
	Title    string      `json:"title"`
	Subtitle string      `json:"subtitle"`
	Slides   []SlideSpec `json:"slides"`
}

type SlideSpec struct {
	SlideNumber  int      `json:"slide_number"`
	Type         string   `json:"type"`
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	BulletPoints []string `json:"bullet_points"`
	ImagePrompt  string   `json:"image_prompt,omitempty"`

	// Set by the pipeline, never by the model.
	ImageBytes   []byte `json:"-"`
	ImageCaption string `json:"image_caption,omitempty"`
}

// Params describe what the user asked for.
type Params struct {
	Topic         string   `json:"topic"`
	SlideCount    int      `json:"slides"`
	FocusAreas    []string `json:"focus_areas,omitempty"`
	CustomContent string   `json:"custom_content,omitempty"`
	// Research holds context lines (search snippets, image captions) for the prompt.
	Research []string `json:"-"`
}

func (p Params) Validate() error {
	if strings.TrimSpace(p.Topic) == "" {
		return ErrEmptyTopic
	}
	if p.SlideCount < MinSlides || p.SlideCount > MaxSlides {
		return ErrSlideCount
	}
	return nil
}

// DefaultImagePrompt is used for slides that do not carry their own prompt.
func DefaultImagePrompt(title string) string {
	return "Professional illustration representing " + title
}

// Assembler builds presentations from the content template table.
type Assembler struct {
	catalog *catalog.CatalogProvider
}

func NewAssembler(cat *catalog.CatalogProvider) *Assembler {
	return &Assembler{catalog: cat}
}

// Assemble produces exactly count slides, or count-1 template slides plus one
// custom slide when custom is non-empty. Tags come from focus (in order) or the
// default sequence; slides past the end of the tag list use the padding tag.
func (a *Assembler) Assemble(topic string, count int, focus []string, custom string) *Presentation {
	topic = strings.TrimSpace(topic)
	count = clamp(count, MinSlides, MaxSlides)

	tags := focus
	if len(tags) == 0 {
		tags = a.catalog.DefaultSequence()
	}

	custom = strings.TrimSpace(custom)
	templated := count
	if custom != "" {
		templated--
	}

	p := &Presentation{
		Title:    topic,
		Subtitle: DefaultSubtitle,
		Slides:   make([]SlideSpec, 0, count),
	}

	for i := 0; i < templated; i++ {
		tag := a.catalog.PaddingTag()
		if i < len(tags) {
			tag = tags[i]
		}
		t := a.catalog.Template(tag, topic)
		p.Slides = append(p.Slides, SlideSpec{
			SlideNumber:  i + 1,
			Type:         tag,
			Title:        t.Title,
			Content:      t.Content,
			BulletPoints: t.BulletPoints,
			ImagePrompt:  DefaultImagePrompt(t.Title),
		})
	}

	if custom != "" {
		p.Slides = append(p.Slides, customSlide(topic, custom, len(p.Slides)+1))
	}
	return p
}

// customSlide turns free text into a slide: the first paragraph is the body,
// following lines become bullets.
func customSlide(topic, custom string, number int) SlideSpec {
	var body string
	var bullets []string

	for _, line := range strings.Split(custom, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(strings.TrimLeft(line, "-*•"))
		if line == "" {
			continue
		}
		if body == "" {
			body = line
			continue
		}
		if len(bullets) < MaxBulletPoints {
			bullets = append(bullets, line)
		}
	}

	title := "Additional Insights - " + topic
	return SlideSpec{
		SlideNumber:  number,
		Type:         CustomType,
		Title:        title,
		Content:      truncate(body, 600),
		BulletPoints: bullets,
		ImagePrompt:  DefaultImagePrompt(title),
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return strings.TrimSpace(string(r[:max])) + "..."
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// Markdown renders the structure for previews.
func (p *Presentation) Markdown() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", p.Title)
	if p.Subtitle != "" {
		fmt.Fprintf(&sb, "*%s*\n\n", p.Subtitle)
	}
	for _, s := range p.Slides {
		fmt.Fprintf(&sb, "## %d. %s\n\n", s.SlideNumber, s.Title)
		if s.Content != "" {
			fmt.Fprintf(&sb, "%s\n\n", s.Content)
		}
		for _, b := range s.BulletPoints {
			fmt.Fprintf(&sb, "- %s\n", b)
		}
		if len(s.BulletPoints) > 0 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
