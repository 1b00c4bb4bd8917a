package content_test

import (
	"fmt"
	"testing"

	"github.com/gnemet/DeckForge/internal/catalog"
	"github.com/gnemet/DeckForge/internal/content"
	"github.com/stretchr/testify/require"
)

func newAssembler() *content.Assembler {
	return content.NewAssembler(catalog.Default())
}

func TestAssembleProducesExactlyN(t *testing.T) {
	a := newAssembler()
	for n := content.MinSlides; n <= content.MaxSlides; n++ {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			p := a.Assemble("Remote Work", n, nil, "")
			require.Len(t, p.Slides, n)

			pc := a.Assemble("Remote Work", n, nil, "Our team went fully remote in 2021.\n- Hiring widened\n- Office costs fell")
			require.Len(t, pc.Slides, n)
			last := pc.Slides[n-1]
			require.Equal(t, content.CustomType, last.Type)
			require.Equal(t, "Our team went fully remote in 2021.", last.Content)
			require.Equal(t, []string{"Hiring widened", "Office costs fell"}, last.BulletPoints)
		})
	}
}

func TestAssembleDefaultSequence(t *testing.T) {
	p := newAssembler().Assemble("Remote Work", 8, nil, "")

	require.Equal(t, "Remote Work", p.Title)
	require.Equal(t, content.DefaultSubtitle, p.Subtitle)

	var types []string
	for i, s := range p.Slides {
		require.Equal(t, i+1, s.SlideNumber)
		require.NotEmpty(t, s.ImagePrompt)
		types = append(types, s.Type)
	}
	require.Equal(t, []string{"introduction", "overview", "detailed", "benefits", "challenges", "conclusion", "detailed", "detailed"}, types)
	require.Equal(t, "Introduction to Remote Work", p.Slides[0].Title)
}

func TestAssembleFocusAreasAndUnknownTag(t *testing.T) {
	p := newAssembler().Assemble("EV Batteries", 3, []string{"market_analysis", "supply_chain", "benefits"}, "")

	require.Equal(t, "Market Analysis - EV Batteries", p.Slides[0].Title)
	require.Equal(t, "Supply Chain - EV Batteries", p.Slides[1].Title)
	require.NotEmpty(t, p.Slides[1].BulletPoints)
	require.Equal(t, "Benefits of EV Batteries", p.Slides[2].Title)
}

func TestAssembleIsDeterministic(t *testing.T) {
	a := newAssembler()
	require.Equal(t, a.Assemble("Quantum", 5, nil, "x"), a.Assemble("Quantum", 5, nil, "x"))
}

func TestParamsValidate(t *testing.T) {
	require.ErrorIs(t, content.Params{Topic: "  ", SlideCount: 5}.Validate(), content.ErrEmptyTopic)
	require.ErrorIs(t, content.Params{Topic: "x", SlideCount: 2}.Validate(), content.ErrSlideCount)
	require.ErrorIs(t, content.Params{Topic: "x", SlideCount: 16}.Validate(), content.ErrSlideCount)
	require.NoError(t, content.Params{Topic: "x", SlideCount: 15}.Validate())
}

func TestMarkdown(t *testing.T) {
	md := newAssembler().Assemble("Remote Work", 3, nil, "").Markdown()

	require.Contains(t, md, "# Remote Work\n")
	require.Contains(t, md, "## 1. Introduction to Remote Work\n")
	require.Contains(t, md, "- Understanding Remote Work\n")
}
