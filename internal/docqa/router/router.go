// Package router provides docqa service routing.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/docqa/internal/docqa/handler"
)

// Register registers the docqa routes on the gin engine.
func Register(engine *gin.Engine, h *handler.DocQAHandler) {
	logger.Info("Registering docqa routes...")

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := engine.Group("/v1")
	{
		docqa := v1.Group("/docqa")
		{
			docqa.POST("/ingest", h.Ingest)
			docqa.POST("/query", h.Query)
			docqa.GET("/stats", h.Stats)
			docqa.DELETE("/collection", h.DropCollection)
		}
	}

	logger.Info("HTTP routes registered")
}
