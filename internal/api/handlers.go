package api

import (
	"context"
	"database/sql"
	"errors"
	"html"
	"html/template"
	"io"
	"log"
	"mime"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/russross/blackfriday/v2"

	"github.com/gnemet/DeckForge/internal/config"
	"github.com/gnemet/DeckForge/internal/content"
	"github.com/gnemet/DeckForge/internal/database"
	"github.com/gnemet/DeckForge/internal/generator"
	"github.com/gnemet/DeckForge/internal/i18n"
	"github.com/gnemet/DeckForge/internal/pptx"
	"github.com/gnemet/DeckForge/ui"
)

const recentGenerations = 20

// HotFolder is the part of the observer the API controls.
type HotFolder interface {
	RetryFailed(ctx context.Context)
	IsProcessing() bool
}

// Handler holds dependencies for the HTTP endpoints.
type Handler struct {
	svc    *generator.Service
	db     *sql.DB
	tmpl   *template.Template
	events *hub
	folder HotFolder

	mu          sync.RWMutex
	defaultLang string
	maxUpload   int64
}

// NewHandler builds the handler. db, folder and logChan may be nil: usage
// stats, hot folder control and the event stream are then unavailable.
func NewHandler(cfg *config.Config, svc *generator.Service, db *sql.DB, folder HotFolder, logChan <-chan string) (*Handler, error) {
	tmpl, err := ui.Templates(template.FuncMap{"T": i18n.T})
	if err != nil {
		return nil, err
	}

	h := &Handler{
		svc:    svc,
		db:     db,
		tmpl:   tmpl,
		events: newHub(logChan),
		folder: folder,
	}
	h.ApplyConfig(cfg)
	return h, nil
}

// ApplyConfig updates the default language and the upload limit.
func (h *Handler) ApplyConfig(cfg *config.Config) {
	maxUpload := cfg.Application.MaxUploadMB << 20
	if maxUpload <= 0 {
		maxUpload = 20 << 20
	}

	h.mu.Lock()
	h.defaultLang = cfg.Application.Language
	h.maxUpload = maxUpload
	h.mu.Unlock()
}

func (h *Handler) lang(c *gin.Context) string {
	h.mu.RLock()
	def := h.defaultLang
	h.mu.RUnlock()
	return i18n.GetLang(c.Request, def)
}

type focusArea struct {
	Tag   string
	Label string
}

// GET /
func (h *Handler) Index(c *gin.Context) {
	cat := h.svc.Catalog()
	var areas []focusArea
	for _, tag := range cat.FocusAreas() {
		areas = append(areas, focusArea{Tag: tag, Label: cat.Label(tag)})
	}

	c.HTML(http.StatusOK, "index.html", gin.H{
		"Lang":          h.lang(c),
		"Langs":         i18n.GetAvailableLangs(),
		"Themes":        h.svc.Themes(),
		"FocusAreas":    areas,
		"MinSlides":     content.MinSlides,
		"MaxSlides":     content.MaxSlides,
		"DefaultSlides": generator.DefaultSlideCount,
	})
}

// GET /lang/:code
func (h *Handler) SetLanguage(c *gin.Context) {
	code := c.Param("code")
	if !i18n.Supported(code) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unsupported language"})
		return
	}
	c.SetCookie("lang", code, 365*24*3600, "/", "", false, true)
	c.Redirect(http.StatusFound, "/")
}

// GET /themes
func (h *Handler) Themes(c *gin.Context) {
	cat := h.svc.Catalog()
	c.JSON(http.StatusOK, gin.H{
		"themes":      h.svc.Themes(),
		"default":     cat.DefaultTheme().Key,
		"focus_areas": cat.FocusAreas(),
	})
}

// GET /catalog
func (h *Handler) Catalogs(c *gin.Context) {
	codes, err := h.svc.Catalog().GetAllCatalogs()
	if err != nil {
		log.Printf("Error listing catalogs: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list catalogs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"catalogs": codes})
}

// GET /catalog/:code
func (h *Handler) Catalog(c *gin.Context) {
	meta, err := h.svc.Catalog().GetCatalogMetadata(c.Param("code"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "catalog not found"})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(meta))
}

func (h *Handler) limitBody(c *gin.Context) {
	h.mu.RLock()
	limit := h.maxUpload
	h.mu.RUnlock()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
}

// fail maps pipeline errors to status codes.
func fail(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload too large"})
	case errors.Is(err, generator.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("Generation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate presentation"})
	}
}

// POST /preview
func (h *Handler) Preview(c *gin.Context) {
	h.limitBody(c)
	req, err := h.bindRequest(c)
	if err != nil {
		fail(c, err)
		return
	}

	res, err := h.svc.Preview(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}

	md := res.Presentation.Markdown()
	if c.Query("format") == "html" {
		// Model output is escaped before rendering; markdown syntax survives.
		body := blackfriday.Run([]byte(html.EscapeString(md)))
		c.HTML(http.StatusOK, "preview.html", gin.H{
			"Lang":     req.Lang,
			"Source":   string(res.Source),
			"Warnings": res.Warnings,
			"Body":     template.HTML(string(body)),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":           res.ID,
		"presentation": res.Presentation,
		"source":       res.Source,
		"warnings":     res.Warnings,
		"markdown":     md,
	})
}

// POST /generate
func (h *Handler) Generate(c *gin.Context) {
	h.limitBody(c)
	req, err := h.bindRequest(c)
	if err != nil {
		fail(c, err)
		return
	}

	res, err := h.svc.Generate(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}

	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": res.Filename}))
	c.Header("X-Generation-Id", res.ID.String())
	c.Header("X-Deck-Source", string(res.Source))
	if len(res.Warnings) > 0 {
		c.Header("X-Deck-Warnings", headerValue(strings.Join(res.Warnings, "; ")))
	}
	c.Data(http.StatusOK, pptx.MIMEType, res.Deck)
}

// headerValue keeps a warning list on one line.
func headerValue(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// GET /stats
func (h *Handler) Stats(c *gin.Context) {
	if h.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "usage log is not configured"})
		return
	}

	stats, err := database.GetStats(h.db)
	if err != nil {
		log.Printf("Error reading stats: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read stats"})
		return
	}
	recent, err := database.ListRecentGenerations(h.db, recentGenerations)
	if err != nil {
		log.Printf("Error listing generations: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read stats"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats, "recent": recent})
}

// GET /health
func (h *Handler) Health(c *gin.Context) {
	body := gin.H{"status": "ok"}
	if h.folder != nil {
		body["processing"] = h.folder.IsProcessing()
	}
	c.JSON(http.StatusOK, body)
}

// POST /observer/retry moves failed hot folder files back and processes them
// in the background.
func (h *Handler) RetryFailed(c *gin.Context) {
	if h.folder == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "hot folder is not configured"})
		return
	}
	go h.folder.RetryFailed(context.WithoutCancel(c.Request.Context()))
	c.JSON(http.StatusAccepted, gin.H{"status": "retrying"})
}

// GET /events streams hot folder activity as server-sent events.
func (h *Handler) Events(c *gin.Context) {
	ch := h.events.subscribe()
	defer h.events.unsubscribe(ch)

	c.Stream(func(w io.Writer) bool {
		select {
		case msg := <-ch:
			c.SSEvent("log", msg)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

