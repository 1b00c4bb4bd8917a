package document

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gnemet/DeckForge/internal/pptx"
)

var ErrUnsupportedType = errors.New("unsupported document type")

// MaxTextLength bounds what an upload may contribute to a prompt.
const MaxTextLength = 8000

// Supported reports whether name has an extension ReadText understands.
func Supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".md", ".csv", ".docx", ".pptx":
		return true
	}
	return false
}

// ReadText returns the raw text of an uploaded document.
func ReadText(name string, data []byte) (string, error) {
	var text string
	var err error

	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".txt", ".md", ".csv":
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%s: not valid UTF-8 text", name)
		}
		text = string(data)
	case ".docx":
		text, err = readDocx(data)
	case ".pptx":
		text, err = pptx.ExtractText(data)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}

	text = strings.TrimSpace(text)
	if r := []rune(text); len(r) > MaxTextLength {
		text = string(r[:MaxTextLength])
	}
	return text, nil
}

// readDocx collects the paragraphs of word/document.xml.
func readDocx(data []byte) (string, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("not a docx archive: %w", err)
	}

	var doc *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", errors.New("word/document.xml missing")
	}

	rc, err := doc.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	var paragraphs []string
	var current strings.Builder

	dec := xml.NewDecoder(rc)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "t":
				var t string
				if err := dec.DecodeElement(&t, &el); err == nil {
					current.WriteString(t)
				}
			case "tab":
				current.WriteString("\t")
			case "br":
				current.WriteString("\n")
			}
		case xml.EndElement:
			if el.Name.Local == "p" {
				if p := strings.TrimSpace(current.String()); p != "" {
					paragraphs = append(paragraphs, p)
				}
				current.Reset()
			}
		}
	}
	return strings.Join(paragraphs, "\n"), nil
}
