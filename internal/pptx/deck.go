package pptx

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"time"

	ppt "github.com/VantageDataChat/GoPPT"

	"github.com/gnemet/DeckForge/internal/catalog"
	"github.com/gnemet/DeckForge/internal/content"
)

// MIMEType is the content type of a written deck.
const MIMEType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

// 16:9 layout
const (
	emuPerInch = 914400

	slideWidth   = int64(10.0 * emuPerInch)
	slideHeight  = int64(5.625 * emuPerInch)
	marginLeft   = int64(0.4 * emuPerInch)
	contentWidth = int64(9.2 * emuPerInch)

	textColumnWidth = int64(5.4 * emuPerInch)
	sideColumnX     = int64(6.0 * emuPerInch)
	sideColumnWidth = int64(3.6 * emuPerInch)

	fontTitleSlide   = 44
	fontSubtitle     = 24
	fontDate         = 16
	fontSlideTitle   = 36
	fontContent      = 18
	fontBullet       = 20
	fontClosingTitle = 48
	fontClosingText  = 24
	fontFooter       = 10
	fontChart        = 14
)

// Labels are the fixed texts of the title and closing slides.
type Labels struct {
	GeneratedOn    string
	ThankYou       string
	Questions      string
	PresentationOn string
	Chart          string
}

var DefaultLabels = Labels{
	GeneratedOn:    "Generated on",
	ThankYou:       "Thank You!",
	Questions:      "Questions & Discussion",
	PresentationOn: "Presentation on:",
	Chart:          "Chart placeholder",
}

type Options struct {
	IncludeImages     bool
	ChartPlaceholders bool
	Footer            string
	Labels            Labels
	// Topic is named on the closing slide; empty means the presentation title.
	Topic string
	// Date printed on the title slide; zero means now.
	Date time.Time
}

// Builder writes presentations with GoPPT.
type Builder struct {
	Creator string
}

func NewBuilder(creator string) *Builder {
	return &Builder{Creator: creator}
}

func solidFill(argb string) *ppt.Fill {
	return ppt.NewFill().SetSolid(ppt.NewColor(argb))
}

func alignCenter(p *ppt.Paragraph) {
	p.SetAlignment(ppt.NewAlignment().SetHorizontal(ppt.HorizontalCenter))
}

func alignRight(p *ppt.Paragraph) {
	p.SetAlignment(ppt.NewAlignment().SetHorizontal(ppt.HorizontalRight))
}

func inches(f float64) int64 {
	return int64(f * emuPerInch)
}

// Build renders the title slide, one slide per SlideSpec and the closing slide.
// A failing content slide is reported in the returned warnings; only a
// serialization failure is an error.
func (b *Builder) Build(p *content.Presentation, theme catalog.Theme, opts Options) ([]byte, []string, error) {
	if opts.Labels == (Labels{}) {
		opts.Labels = DefaultLabels
	}
	if opts.Date.IsZero() {
		opts.Date = time.Now()
	}

	deck := ppt.New()
	deck.GetDocumentProperties().Title = p.Title
	deck.GetDocumentProperties().Creator = b.Creator

	b.addTitleSlide(deck.GetActiveSlide(), p, theme, opts)

	var warnings []string
	total := len(p.Slides)
	for i := range p.Slides {
		warnings = append(warnings, b.addContentSlide(deck, &p.Slides[i], i+1, total, theme, opts)...)
	}

	topic := opts.Topic
	if topic == "" {
		topic = p.Title
	}
	b.addClosingSlide(deck.CreateSlide(), topic, theme, opts)

	w, err := ppt.NewWriter(deck, ppt.WriterPowerPoint2007)
	if err != nil {
		return nil, warnings, fmt.Errorf("failed to create PPT writer: %w", err)
	}

	var buf bytes.Buffer
	if err := w.(*ppt.PPTXWriter).WriteTo(&buf); err != nil {
		return nil, warnings, fmt.Errorf("failed to save PPT: %w", err)
	}
	return buf.Bytes(), warnings, nil
}

func addBackground(slide *ppt.Slide, theme catalog.Theme) {
	bg := slide.CreateRichTextShape()
	bg.SetOffsetX(0).SetOffsetY(0)
	bg.SetWidth(slideWidth).SetHeight(slideHeight)
	bg.SetFill(solidFill(theme.Background.Hex()))
}

func addBar(slide *ppt.Slide, theme catalog.Theme, y, height int64) {
	bar := slide.CreateRichTextShape()
	bar.SetOffsetX(0).SetOffsetY(y)
	bar.SetWidth(slideWidth).SetHeight(height)
	bar.SetFill(solidFill(theme.Accent.Hex()))
}

func (b *Builder) addTitleSlide(slide *ppt.Slide, p *content.Presentation, theme catalog.Theme, opts Options) {
	addBackground(slide, theme)
	addBar(slide, theme, 0, inches(0.15))

	titleShape := slide.CreateRichTextShape()
	titleShape.SetOffsetX(marginLeft).SetOffsetY(inches(1.3))
	titleShape.SetWidth(contentWidth).SetHeight(inches(1.3))
	tr := titleShape.CreateTextRun(p.Title)
	tr.GetFont().SetSize(fontTitleSlide).SetBold(true).SetColor(ppt.NewColor(theme.Title.Hex()))
	alignCenter(titleShape.GetActiveParagraph())

	subShape := slide.CreateRichTextShape()
	subShape.SetOffsetX(marginLeft).SetOffsetY(inches(2.8))
	subShape.SetWidth(contentWidth).SetHeight(inches(1.2))
	if p.Subtitle != "" {
		sub := subShape.CreateTextRun(p.Subtitle)
		sub.GetFont().SetSize(fontSubtitle).SetColor(ppt.NewColor(theme.Content.Hex()))
		alignCenter(subShape.GetActiveParagraph())
		subShape.CreateParagraph()
	}
	date := subShape.CreateTextRun(opts.Labels.GeneratedOn + " " + opts.Date.Format("January 02, 2006"))
	date.GetFont().SetSize(fontDate).SetColor(ppt.NewColor(theme.Content.Hex()))
	alignCenter(subShape.GetActiveParagraph())

	addBar(slide, theme, inches(5.5), inches(0.125))
}

// addContentSlide never panics; anything that goes wrong becomes a warning.
func (b *Builder) addContentSlide(deck *ppt.Presentation, s *content.SlideSpec, n, total int, theme catalog.Theme, opts Options) (warnings []string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Slide %d (%s) failed: %v", n, s.Title, r)
			warnings = append(warnings, fmt.Sprintf("slide %d (%s) is incomplete: %v", n, s.Title, r))
		}
	}()

	slide := deck.CreateSlide()
	addBackground(slide, theme)
	addBar(slide, theme, 0, inches(0.08))

	titleShape := slide.CreateRichTextShape()
	titleShape.SetOffsetX(marginLeft).SetOffsetY(inches(0.25))
	titleShape.SetWidth(contentWidth).SetHeight(inches(0.8))
	tr := titleShape.CreateTextRun(s.Title)
	tr.GetFont().SetSize(fontSlideTitle).SetBold(true).SetColor(ppt.NewColor(theme.Title.Hex()))

	var imageData []byte
	var imageMIME string
	if opts.IncludeImages && len(s.ImageBytes) > 0 {
		cfg, format, err := image.DecodeConfig(bytes.NewReader(s.ImageBytes))
		switch {
		case err != nil:
			log.Printf("Slide %d: skipping invalid image: %v", n, err)
			warnings = append(warnings, fmt.Sprintf("slide %d (%s): image skipped: %v", n, s.Title, err))
		case cfg.Width == 0 || cfg.Height == 0:
			warnings = append(warnings, fmt.Sprintf("slide %d (%s): image skipped: empty image", n, s.Title))
		default:
			imageData = s.ImageBytes
			imageMIME = "image/" + format
			addImage(slide, imageData, imageMIME, cfg.Width, cfg.Height, s.ImageCaption, theme)
		}
	}

	sideUsed := imageData != nil || opts.ChartPlaceholders
	textWidth := contentWidth
	if sideUsed {
		textWidth = textColumnWidth
	}

	body := slide.CreateRichTextShape()
	body.SetOffsetX(marginLeft).SetOffsetY(inches(1.15))
	body.SetWidth(textWidth).SetHeight(inches(3.9))

	if s.Content != "" {
		ct := body.CreateTextRun(s.Content)
		ct.GetFont().SetSize(fontContent).SetColor(ppt.NewColor(theme.Content.Hex()))
	}
	for i, bullet := range s.BulletPoints {
		if i > 0 || s.Content != "" {
			body.CreateParagraph()
		}
		bt := body.CreateTextRun("• " + bullet)
		bt.GetFont().SetSize(fontBullet).SetColor(ppt.NewColor(theme.Content.Hex()))
	}

	if opts.ChartPlaceholders {
		y, h := inches(1.15), inches(2.4)
		if imageData != nil {
			y, h = inches(3.75), inches(1.2)
		}
		chart := slide.CreateRichTextShape()
		chart.SetOffsetX(sideColumnX).SetOffsetY(y)
		chart.SetWidth(sideColumnWidth).SetHeight(h)
		chart.SetFill(solidFill(theme.Accent.Hex()))
		ct := chart.CreateTextRun("[" + opts.Labels.Chart + "]")
		ct.GetFont().SetSize(fontChart).SetBold(true).SetColor(ppt.ColorWhite)
		alignCenter(chart.GetActiveParagraph())
	}

	addFooter(slide, opts.Footer, n, total, theme)
	return warnings
}

// addImage fits the picture into the right column keeping its aspect ratio.
func addImage(slide *ppt.Slide, data []byte, mime string, w, h int, caption string, theme catalog.Theme) {
	boxW, boxH := sideColumnWidth, inches(2.4)
	if caption == "" {
		boxH = inches(3.0)
	}

	width := boxW
	height := width * int64(h) / int64(w)
	if height > boxH {
		height = boxH
		width = height * int64(w) / int64(h)
	}

	img := slide.CreateDrawingShape()
	img.SetImageData(data, mime)
	img.SetOffsetX(sideColumnX + (boxW-width)/2).SetOffsetY(inches(1.15))
	img.SetWidth(width).SetHeight(height)

	if caption != "" {
		cs := slide.CreateRichTextShape()
		cs.SetOffsetX(sideColumnX).SetOffsetY(inches(1.15) + height + inches(0.05))
		cs.SetWidth(sideColumnWidth).SetHeight(inches(0.4))
		ct := cs.CreateTextRun(caption)
		ct.GetFont().SetSize(fontFooter).SetColor(ppt.NewColor(theme.Content.Hex()))
		alignCenter(cs.GetActiveParagraph())
	}
}

func addFooter(slide *ppt.Slide, footer string, n, total int, theme catalog.Theme) {
	if footer != "" {
		fs := slide.CreateRichTextShape()
		fs.SetOffsetX(marginLeft).SetOffsetY(inches(5.2))
		fs.SetWidth(inches(7.0)).SetHeight(inches(0.3))
		ft := fs.CreateTextRun(footer)
		ft.GetFont().SetSize(fontFooter).SetColor(ppt.NewColor(theme.Content.Hex()))
	}

	ns := slide.CreateRichTextShape()
	ns.SetOffsetX(inches(7.6)).SetOffsetY(inches(5.2))
	ns.SetWidth(inches(2.0)).SetHeight(inches(0.3))
	nt := ns.CreateTextRun(fmt.Sprintf("%d / %d", n, total))
	nt.GetFont().SetSize(fontFooter).SetColor(ppt.NewColor(theme.Content.Hex()))
	alignRight(ns.GetActiveParagraph())
}

func (b *Builder) addClosingSlide(slide *ppt.Slide, topic string, theme catalog.Theme, opts Options) {
	addBackground(slide, theme)
	addBar(slide, theme, 0, inches(0.15))

	ts := slide.CreateRichTextShape()
	ts.SetOffsetX(marginLeft).SetOffsetY(inches(1.4))
	ts.SetWidth(contentWidth).SetHeight(inches(1.1))
	tr := ts.CreateTextRun(opts.Labels.ThankYou)
	tr.GetFont().SetSize(fontClosingTitle).SetBold(true).SetColor(ppt.NewColor(theme.Title.Hex()))
	alignCenter(ts.GetActiveParagraph())

	qs := slide.CreateRichTextShape()
	qs.SetOffsetX(marginLeft).SetOffsetY(inches(2.7))
	qs.SetWidth(contentWidth).SetHeight(inches(1.8))
	q := qs.CreateTextRun(opts.Labels.Questions)
	q.GetFont().SetSize(fontClosingText).SetColor(ppt.NewColor(theme.Content.Hex()))
	alignCenter(qs.GetActiveParagraph())

	qs.CreateParagraph()
	on := qs.CreateTextRun(opts.Labels.PresentationOn + " " + topic)
	on.GetFont().SetSize(fontClosingText).SetColor(ppt.NewColor(theme.Accent.Hex()))
	alignCenter(qs.GetActiveParagraph())

	addBar(slide, theme, inches(5.5), inches(0.125))
}
