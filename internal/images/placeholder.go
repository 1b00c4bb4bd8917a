package images

import (
	"bytes"
	"image"
	"image/png"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// The placeholder is drawn at half size and scaled up so the 7x13 bitmap
// font stays legible on a slide.
const (
	placeholderWidth  = 480
	placeholderHeight = 320
	placeholderScale  = 2
	margin            = 20
	lineHeight        = 16
	maxLines          = 12
)

// Placeholder renders prompt and caption onto a PNG in the palette's colours.
func Placeholder(prompt, caption string, pal Palette) ([]byte, error) {
	face := basicfont.Face7x13
	small := image.NewRGBA(image.Rect(0, 0, placeholderWidth, placeholderHeight))

	draw.Draw(small, small.Bounds(), image.NewUniform(pal.Background), image.Point{}, draw.Src)

	// accent frame and caption bar
	accent := image.NewUniform(pal.Accent)
	frame := small.Bounds().Inset(6)
	for _, r := range []image.Rectangle{
		{Min: frame.Min, Max: image.Pt(frame.Max.X, frame.Min.Y+3)},
		{Min: image.Pt(frame.Min.X, frame.Max.Y-3), Max: frame.Max},
		{Min: frame.Min, Max: image.Pt(frame.Min.X+3, frame.Max.Y)},
		{Min: image.Pt(frame.Max.X-3, frame.Min.Y), Max: frame.Max},
	} {
		draw.Draw(small, r, accent, image.Point{}, draw.Src)
	}
	bar := image.Rect(frame.Min.X, frame.Max.Y-lineHeight-14, frame.Max.X, frame.Max.Y)
	draw.Draw(small, bar, accent, image.Point{}, draw.Src)

	d := &font.Drawer{Dst: small, Src: image.NewUniform(pal.Text), Face: face}

	maxChars := (placeholderWidth - 2*margin) / face.Advance
	lines := wrap(prompt, maxChars)
	if len(lines) > maxLines {
		lines = append(lines[:maxLines-1], "...")
	}

	y := margin + face.Ascent + 4
	for _, line := range lines {
		d.Dot = fixed.P(margin, y)
		d.DrawString(line)
		y += lineHeight
	}

	d.Src = image.NewUniform(pal.Background)
	w := d.MeasureString(caption).Ceil()
	d.Dot = fixed.P((placeholderWidth-w)/2, bar.Max.Y-9)
	d.DrawString(caption)

	large := image.NewRGBA(image.Rect(0, 0, placeholderWidth*placeholderScale, placeholderHeight*placeholderScale))
	draw.NearestNeighbor.Scale(large, large.Bounds(), small, small.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, large); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// wrap breaks s into lines of at most width characters on word boundaries.
// Words longer than width are split between runes.
func wrap(s string, width int) []string {
	var lines []string
	var line []rune

	for _, field := range strings.Fields(s) {
		word := []rune(field)
		for len(word) > width {
			if len(line) > 0 {
				lines = append(lines, string(line))
				line = line[:0]
			}
			lines = append(lines, string(word[:width]))
			word = word[width:]
		}
		if len(line) > 0 && len(line)+1+len(word) > width {
			lines = append(lines, string(line))
			line = line[:0]
		}
		if len(line) > 0 {
			line = append(line, ' ')
		}
		line = append(line, word...)
	}
	if len(line) > 0 {
		lines = append(lines, string(line))
	}
	return lines
}
