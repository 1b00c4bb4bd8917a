package content

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// Completer sends one prompt to a chat model and returns its text answer.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type Source string

const (
	SourceAI       Source = "ai"
	SourceTemplate Source = "template"
)

// Outcome is the result of a content request. Fallback is set when the
// template content was used instead of the model's answer.
type Outcome struct {
	Presentation *Presentation
	Source       Source
	Fallback     error
	// Notices are non-fatal remarks about an accepted model answer.
	Notices []string
}

// Warning renders Fallback for the user, or "" when there was none.
func (o Outcome) Warning() string {
	if o.Fallback == nil {
		return ""
	}
	return fmt.Sprintf("AI content unavailable, using template content: %v", o.Fallback)
}

type Requester struct {
	completer Completer
	assembler *Assembler
}

// NewRequester returns a requester; c may be nil, in which case every request
// is served from templates.
func NewRequester(c Completer, a *Assembler) *Requester {
	return &Requester{completer: c, assembler: a}
}

func (r *Requester) fallback(p Params, cause error) Outcome {
	return Outcome{
		Presentation: r.assembler.Assemble(p.Topic, p.SlideCount, p.FocusAreas, p.CustomContent),
		Source:       SourceTemplate,
		Fallback:     cause,
	}
}

// Template skips the model entirely.
func (r *Requester) Template(p Params) Outcome {
	return r.fallback(p, nil)
}

// Request asks the model once. Any failure yields the template presentation
// for the same params.
func (r *Requester) Request(ctx context.Context, p Params) Outcome {
	if r.completer == nil {
		return r.fallback(p, ErrNoCompleter)
	}

	answer, err := r.completer.Complete(ctx, BuildPrompt(p))
	if err != nil {
		log.Printf("AI content request failed: %v", err)
		return r.fallback(p, err)
	}
	if strings.TrimSpace(answer) == "" {
		return r.fallback(p, fmt.Errorf("%w: empty answer", ErrMalformedResponse))
	}

	pres, err := ParsePresentation(answer, p.SlideCount)
	if err != nil {
		log.Printf("AI answer rejected: %v", err)
		return r.fallback(p, err)
	}

	out := Outcome{Presentation: pres, Source: SourceAI}
	if n := len(pres.Slides); n < p.SlideCount {
		log.Printf("AI answer is short: %d of %d slides", n, p.SlideCount)
		out.Notices = append(out.Notices, fmt.Sprintf("model returned %d of %d slides", n, p.SlideCount))
	}
	return out
}
