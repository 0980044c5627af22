// Package router provides extractor service routing.
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/forge-io/agentforge/internal/extractor/handler"
)

// Register registers the extractor service routes.
func Register(engine *gin.Engine, h *handler.ExtractorHandler) {
	logger.Info("Registering extractor routes...")

	engine.GET("/healthz", h.Healthz)
	engine.GET("/metrics", h.Metrics)

	v1 := engine.Group("/v1")
	{
		// Extraction endpoints
		v1.POST("/extract", h.Extract)
		v1.POST("/extract/batch", h.ExtractBatch)
		v1.POST("/resolve", h.Resolve)
		v1.GET("/extractions/:id", h.GetExtraction)

		// Event endpoints
		v1.GET("/events", h.ListEvents)
		v1.GET("/events/:id", h.GetEvent)

		// Stats endpoint
		v1.GET("/stats", h.Stats)
	}

	logger.Info("HTTP routes registered")
}
