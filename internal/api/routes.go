package api

import (
	"github.com/gin-gonic/gin"

	"github.com/quicklinkhq/scan-tracker/internal/handler"
	"github.com/quicklinkhq/scan-tracker/internal/metrics"
)

// SetupRoutes configures all API routes.
// Health routes are registered by the server shell.
func SetupRoutes(
	router *gin.Engine,
	redirectHandler *handler.RedirectHandler,
	linkHandler *handler.LinkHandler,
) {
	router.GET("/metrics", metrics.Handler())

	// Redirect-and-capture path. This is what the QR codes encode.
	router.GET("/r/:id", redirectHandler.HandleRedirect)

	api := router.Group("/api")
	api.POST("/links", linkHandler.HandleCreate)
}
