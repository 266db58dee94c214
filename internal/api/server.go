package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quicklinkhq/scan-tracker/internal/config"
	"github.com/quicklinkhq/scan-tracker/internal/handler"
	"github.com/quicklinkhq/scan-tracker/pkg/ginserver"
	"github.com/quicklinkhq/scan-tracker/pkg/logger"
)

const (
	defaultReadTimeout  = 10 * time.Second
	defaultWriteTimeout = 10 * time.Second
	defaultIdleTimeout  = 60 * time.Second
)

// NewServer creates the HTTP server with health checks and all routes.
func NewServer(
	redirectHandler *handler.RedirectHandler,
	linkHandler *handler.LinkHandler,
	cfg *config.Config,
	log logger.Logger,
	dbPing func() error,
) *ginserver.Server {
	opts := ginserver.Options{
		ServiceName:    cfg.Service.Name,
		ServiceVersion: cfg.Service.Version,
		Port:           cfg.Service.Port,
		Debug:          cfg.Service.Debug,
		ReadTimeout:    defaultReadTimeout,
		WriteTimeout:   defaultWriteTimeout,
		IdleTimeout:    defaultIdleTimeout,
		HealthChecks: map[string]ginserver.HealthChecker{
			"database": ginserver.DatabaseCheck(dbPing),
		},
	}

	return ginserver.New(opts, log, func(router *gin.Engine) {
		SetupRoutes(router, redirectHandler, linkHandler)
	})
}
