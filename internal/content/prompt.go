package content

import (
	"fmt"
	"strings"
)

// BuildPrompt formats the single request sent to the chat model.
func BuildPrompt(p Params) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Create a professional presentation about %q with exactly %d content slides.\n", p.Topic, p.SlideCount)
	if len(p.FocusAreas) > 0 {
		fmt.Fprintf(&sb, "Cover these focus areas in this order: %s.\n", strings.Join(p.FocusAreas, ", "))
	}
	if c := strings.TrimSpace(p.CustomContent); c != "" {
		fmt.Fprintf(&sb, "\nIncorporate the following material provided by the user:\n%s\n", c)
	}
	if len(p.Research) > 0 {
		sb.WriteString("\nBackground research:\n")
		for _, r := range p.Research {
			fmt.Fprintf(&sb, "- %s\n", r)
		}
	}

	fmt.Fprintf(&sb, `
Respond with JSON only, using this structure:
{
  "title": "presentation title",
  "subtitle": "short subtitle",
  "slides": [
    {
      "slide_number": 1,
      "type": "introduction",
      "title": "slide title",
      "content": "one short paragraph",
      "bullet_points": ["at most %d concise points"],
      "image_prompt": "description of an illustration for this slide"
    }
  ]
}
`, MaxBulletPoints)
	return sb.String()
}
