package catalog

import (
	"embed"
	"encoding/json"
	"fmt"
	"image/color"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CatalogFS contains the slide template and theme catalogs.
//
//go:embed catalog/*.json
var CatalogFS embed.FS

// SlideTemplate is one row of the content template table after topic interpolation.
type SlideTemplate struct {
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	BulletPoints []string `json:"bullet_points"`
}

// RGB is a colour triple as stored in themes.json.
type RGB [3]uint8

// Hex returns the colour as an opaque ARGB string ("FF003366").
func (c RGB) Hex() string {
	return fmt.Sprintf("FF%02X%02X%02X", c[0], c[1], c[2])
}

func (c RGB) RGBA() color.RGBA {
	return color.RGBA{R: c[0], G: c[1], B: c[2], A: 0xff}
}

type Theme struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Background  RGB    `json:"background"`
	Title       RGB    `json:"title"`
	Content     RGB    `json:"content"`
	Accent      RGB    `json:"accent"`
}

type templateFile struct {
	DefaultSequence []string                 `json:"default_sequence"`
	FocusAreas      []string                 `json:"focus_areas"`
	PaddingTag      string                   `json:"padding_tag"`
	Templates       map[string]SlideTemplate `json:"templates"`
	Generic         SlideTemplate            `json:"generic"`
}

type themeFile struct {
	Default string  `json:"default"`
	Themes  []Theme `json:"themes"`
}

// CatalogProvider serves the embedded catalogs. It is immutable once loaded.
type CatalogProvider struct {
	templates templateFile
	themes    themeFile
}

func NewCatalogProvider() (*CatalogProvider, error) {
	p := &CatalogProvider{}

	if err := readCatalog("templates", &p.templates); err != nil {
		return nil, err
	}
	if err := readCatalog("themes", &p.themes); err != nil {
		return nil, err
	}
	if len(p.themes.Themes) == 0 {
		return nil, fmt.Errorf("themes catalog is empty")
	}
	if p.templates.PaddingTag == "" {
		p.templates.PaddingTag = "detailed"
	}
	return p, nil
}

var (
	defaultOnce     sync.Once
	defaultProvider *CatalogProvider
)

// Default returns the shared provider. The embedded catalogs are part of the
// binary, so a failure here is a build defect.
func Default() *CatalogProvider {
	defaultOnce.Do(func() {
		p, err := NewCatalogProvider()
		if err != nil {
			panic(err)
		}
		defaultProvider = p
	})
	return defaultProvider
}

func readCatalog(code string, v any) error {
	fileName := fmt.Sprintf("catalog/%s.json", code)
	content, err := CatalogFS.ReadFile(fileName)
	if err != nil {
		return fmt.Errorf("could not read embedded catalog file %s: %w", fileName, err)
	}
	if err := json.Unmarshal(content, v); err != nil {
		return fmt.Errorf("could not parse catalog %s: %w", fileName, err)
	}
	return nil
}

// Template returns the template for tag with {topic} replaced. Unknown tags
// get the generic template titled after the tag itself.
func (p *CatalogProvider) Template(tag, topic string) SlideTemplate {
	t, ok := p.templates.Templates[tag]
	if !ok {
		t = p.templates.Generic
	}

	r := strings.NewReplacer("{topic}", topic, "{label}", p.Label(tag))
	out := SlideTemplate{
		Title:        r.Replace(t.Title),
		Content:      r.Replace(t.Content),
		BulletPoints: make([]string, len(t.BulletPoints)),
	}
	for i, b := range t.BulletPoints {
		out.BulletPoints[i] = r.Replace(b)
	}
	return out
}

// Known reports whether tag has a dedicated template.
func (p *CatalogProvider) Known(tag string) bool {
	_, ok := p.templates.Templates[tag]
	return ok
}

// Label turns a tag into display text: "market_analysis" -> "Market Analysis".
func (p *CatalogProvider) Label(tag string) string {
	// Casers keep state, so one is made per call.
	return cases.Title(language.English).String(strings.ReplaceAll(tag, "_", " "))
}

func (p *CatalogProvider) DefaultSequence() []string {
	return append([]string(nil), p.templates.DefaultSequence...)
}

// FocusAreas lists every tag a user may pick.
func (p *CatalogProvider) FocusAreas() []string {
	return append([]string(nil), p.templates.FocusAreas...)
}

// PaddingTag is used for slides beyond the end of the tag sequence.
func (p *CatalogProvider) PaddingTag() string {
	return p.templates.PaddingTag
}

func (p *CatalogProvider) Theme(key string) (Theme, bool) {
	for _, t := range p.themes.Themes {
		if t.Key == key {
			return t, true
		}
	}
	return Theme{}, false
}

func (p *CatalogProvider) DefaultTheme() Theme {
	if t, ok := p.Theme(p.themes.Default); ok {
		return t
	}
	return p.themes.Themes[0]
}

// Themes returns the presets in catalog order.
func (p *CatalogProvider) Themes() []Theme {
	return append([]Theme(nil), p.themes.Themes...)
}

// GetCatalogMetadata reads a JSON catalog from the embedded filesystem
func (p *CatalogProvider) GetCatalogMetadata(resourceCode string) (string, error) {
	fileName := fmt.Sprintf("catalog/%s.json", resourceCode)
	content, err := CatalogFS.ReadFile(fileName)
	if err != nil {
		return "", fmt.Errorf("could not read embedded catalog file %s: %w", fileName, err)
	}

	return string(content), nil
}

// GetAllCatalogs returns a list of available resources
func (p *CatalogProvider) GetAllCatalogs() ([]string, error) {
	entries, err := CatalogFS.ReadDir("catalog")
	if err != nil {
		return nil, err
	}
	var codes []string
	for _, e := range entries {
		if !e.IsDir() {
			codes = append(codes, strings.TrimSuffix(e.Name(), ".json"))
		}
	}
	return codes, nil
}
