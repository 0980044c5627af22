// Package router provides gateway service routing.
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/forge-io/agentforge/internal/gateway/handler"
)

// Register registers the gateway service routes.
func Register(engine *gin.Engine, h *handler.GatewayHandler) {
	logger.Info("Registering gateway routes...")

	engine.GET("/healthz", h.Healthz)
	engine.GET("/metrics", h.Metrics)

	v1 := engine.Group("/v1")
	{
		// Event endpoints
		v1.GET("/events", h.ListEvents)
		v1.GET("/events/:id", h.GetEvent)

		// Ask endpoint
		v1.POST("/ask", h.Ask)

		// Stats endpoint
		v1.GET("/stats", h.Stats)
	}

	logger.Info("HTTP routes registered")
}
