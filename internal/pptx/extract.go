package pptx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"sort"
	"strconv"
	"strings"
)

// SlideText holds the text found on one slide of a .pptx file.
type SlideText struct {
	Number int      `json:"number"`
	Title  string   `json:"title,omitempty"`
	Text   string   `json:"text"`
	Notes  []string `json:"notes,omitempty"`
	Shapes []Shape  `json:"shapes,omitempty"`
}

type Shape struct {
	Type       string      `json:"type"` // title | body | other
	Paragraphs []Paragraph `json:"paragraphs"`
}

type Paragraph struct {
	Runs []TextRun `json:"runs"`
}

func (p Paragraph) Text() string {
	var sb strings.Builder
	for _, r := range p.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

type TextRun struct {
	Text  string `json:"text"`
	Bold  bool   `json:"bold,omitempty"`
	Size  int    `json:"size,omitempty"` // pt
	Font  string `json:"font,omitempty"`
	Color string `json:"color,omitempty"`
}

// ReadSlides extracts text and run formatting from every slide, in slide order.
func ReadSlides(data []byte) ([]SlideText, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("not a pptx archive: %w", err)
	}

	files := make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		files[f.Name] = f
	}

	var slides []SlideText
	for _, f := range r.File {
		if !strings.HasPrefix(f.Name, "ppt/slides/slide") || !strings.HasSuffix(f.Name, ".xml") {
			continue
		}
		// ppt/slides/slide1.xml -> 1
		numStr := strings.TrimSuffix(strings.TrimPrefix(path.Base(f.Name), "slide"), ".xml")
		slideNum, err := strconv.Atoi(numStr)
		if err != nil {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		st, err := parseSlideXML(rc, slideNum)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("slide %d: %w", slideNum, err)
		}

		if nf, ok := files[fmt.Sprintf("ppt/notesSlides/notesSlide%d.xml", slideNum)]; ok {
			st.Notes, _ = readNotes(nf)
		}
		slides = append(slides, *st)
	}

	sort.Slice(slides, func(i, j int) bool { return slides[i].Number < slides[j].Number })
	return slides, nil
}

// ExtractText flattens a deck into plain text, one block per slide.
func ExtractText(data []byte) (string, error) {
	slides, err := ReadSlides(data)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, s := range slides {
		if s.Text == "" && len(s.Notes) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "Slide %d:\n%s\n", s.Number, s.Text)
		if len(s.Notes) > 0 {
			fmt.Fprintf(&sb, "Notes: %s\n", strings.Join(s.Notes, " "))
		}
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String()), nil
}

func readNotes(f *zip.File) ([]string, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var notes []string
	dec := xml.NewDecoder(rc)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return notes, err
		}
		if el, ok := tok.(xml.StartElement); ok && el.Name.Local == "t" {
			var t string
			if err := dec.DecodeElement(&t, &el); err == nil {
				if t = strings.TrimSpace(t); t != "" {
					notes = append(notes, t)
				}
			}
		}
	}
	return notes, nil
}

func parseSlideXML(r io.Reader, index int) (*SlideText, error) {
	dec := xml.NewDecoder(r)

	slide := &SlideText{Number: index}
	var lines []string

	var currentShape *Shape
	var currentPara *Paragraph
	var currentRun *TextRun

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch el := tok.(type) {

		case xml.StartElement:
			switch el.Name.Local {

			case "sp": // shape
				currentShape = &Shape{Type: "other"}

			case "ph": // placeholder (title/body), inside the shape's properties
				if currentShape != nil {
					for _, a := range el.Attr {
						if a.Name.Local == "type" {
							currentShape.Type = normalizePlaceholder(a.Value)
						}
					}
				}

			case "p":
				if currentShape != nil {
					currentPara = &Paragraph{}
				}

			case "r": // text run
				currentRun = &TextRun{}

			case "rPr": // run formatting
				if currentRun != nil {
					for _, a := range el.Attr {
						switch a.Name.Local {
						case "b":
							currentRun.Bold = a.Value == "1" || a.Value == "true"
						case "sz":
							if sz, err := strconv.Atoi(a.Value); err == nil {
								currentRun.Size = sz / 100 // 1/100 pt
							}
						}
					}
				}

			case "latin": // font family
				if currentRun != nil {
					for _, a := range el.Attr {
						if a.Name.Local == "typeface" {
							currentRun.Font = a.Value
						}
					}
				}

			case "srgbClr": // color
				if currentRun != nil {
					for _, a := range el.Attr {
						if a.Name.Local == "val" {
							currentRun.Color = "#" + strings.ToUpper(a.Value)
						}
					}
				}

			case "t": // actual text
				if currentRun != nil {
					var text string
					if err := dec.DecodeElement(&text, &el); err == nil {
						currentRun.Text = text
					}
				}
			}

		case xml.EndElement:
			switch el.Name.Local {

			case "r":
				if currentPara != nil && currentRun != nil && currentRun.Text != "" {
					currentPara.Runs = append(currentPara.Runs, *currentRun)
				}
				currentRun = nil

			case "p":
				if currentShape != nil && currentPara != nil && len(currentPara.Runs) > 0 {
					currentShape.Paragraphs = append(currentShape.Paragraphs, *currentPara)
					if text := strings.TrimSpace(currentPara.Text()); text != "" {
						lines = append(lines, text)
						if slide.Title == "" && currentShape.Type == "title" {
							slide.Title = text
						}
					}
				}
				currentPara = nil

			case "sp":
				if currentShape != nil && len(currentShape.Paragraphs) > 0 {
					slide.Shapes = append(slide.Shapes, *currentShape)
				}
				currentShape = nil
			}
		}
	}

	if slide.Title == "" && len(lines) > 0 {
		slide.Title = lines[0]
	}
	slide.Text = strings.Join(lines, "\n")
	return slide, nil
}

func normalizePlaceholder(ph string) string {
	switch ph {
	case "title", "ctrTitle":
		return "title"
	case "body", "subTitle":
		return "body"
	default:
		return "other"
	}
}
