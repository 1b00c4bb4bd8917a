package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gnemet/DeckForge/internal/generator"
)

// bindRequest reads a generation request from a JSON body or from the form.
func (h *Handler) bindRequest(c *gin.Context) (generator.Request, error) {
	var req generator.Request

	if c.ContentType() == gin.MIMEJSON {
		if err := c.ShouldBindJSON(&req); err != nil {
			return req, fmt.Errorf("%w: invalid request body: %w", generator.ErrInvalidRequest, err)
		}
	} else {
		form, err := c.MultipartForm()
		if err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return req, fmt.Errorf("%w: invalid form: %w", generator.ErrInvalidRequest, err)
		}

		req = generator.Request{
			Topic:             c.PostForm("topic"),
			Theme:             c.PostForm("theme"),
			FocusAreas:        c.PostFormArray("focus_areas"),
			CustomContent:     c.PostForm("custom_content"),
			Footer:            c.PostForm("footer"),
			Lang:              c.PostForm("lang"),
			UseAI:             checked(c.PostForm("use_ai")),
			GenerateImages:    checked(c.PostForm("generate_images")),
			ChartPlaceholders: checked(c.PostForm("chart_placeholders")),
			WebResearch:       checked(c.PostForm("web_research")),
		}
		if s := strings.TrimSpace(c.PostForm("slides")); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil {
				return req, fmt.Errorf("%w: slides must be a number", generator.ErrInvalidRequest)
			}
			req.SlideCount = n
		}

		if form != nil {
			if req.Documents, err = readUploads(form.File["documents"]); err != nil {
				return req, err
			}
			if req.Images, err = readUploads(form.File["images"]); err != nil {
				return req, err
			}
		}
	}

	if req.Lang == "" {
		req.Lang = h.lang(c)
	}
	req.Origin = "web"
	return req, nil
}

func checked(v string) bool {
	switch strings.ToLower(v) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

func readUploads(headers []*multipart.FileHeader) ([]generator.Upload, error) {
	var out []generator.Upload
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open upload %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read upload %s: %w", fh.Filename, err)
		}
		out = append(out, generator.Upload{Name: fh.Filename, Data: data})
	}
	return out, nil
}
