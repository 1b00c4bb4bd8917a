package api

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes sets up the page and API endpoints.
func RegisterRoutes(router *gin.Engine, h *Handler) {
	router.SetHTMLTemplate(h.tmpl)

	router.GET("/", h.Index)
	router.GET("/lang/:code", h.SetLanguage)

	router.GET("/themes", h.Themes)
	catalogGroup := router.Group("/catalog")
	{
		catalogGroup.GET("", h.Catalogs)
		catalogGroup.GET("/:code", h.Catalog)
	}

	router.POST("/preview", h.Preview)
	router.POST("/generate", h.Generate)

	router.GET("/stats", h.Stats)
	router.GET("/events", h.Events)
	router.POST("/observer/retry", h.RetryFailed)

	router.GET("/health", h.Health)
}
