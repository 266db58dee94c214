package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quicklinkhq/scan-tracker/internal/resolver"
)

// Resolver decides the outcome of one resolution attempt.
type Resolver interface {
	Resolve(ctx context.Context, id string, req resolver.RequestContext) resolver.Outcome
}

// RedirectHandler serves the redirect-and-capture endpoint.
type RedirectHandler struct {
	resolver Resolver
}

// NewRedirectHandler creates a RedirectHandler.
func NewRedirectHandler(res Resolver) *RedirectHandler {
	return &RedirectHandler{resolver: res}
}

// HandleRedirect resolves the identifier and issues a temporary redirect,
// or a 404 when the link is unknown. The response must not be cached:
// every scan of the QR code has to reach this endpoint.
func (h *RedirectHandler) HandleRedirect(c *gin.Context) {
	outcome := h.resolver.Resolve(c.Request.Context(), c.Param("id"), resolver.RequestContext{
		SourceAddress:      c.ClientIP(),
		RawClientSignature: c.Request.UserAgent(),
		Referrer:           c.Request.Referer(),
	})

	if !outcome.Found {
		c.JSON(http.StatusNotFound, gin.H{"error": "link not found"})
		return
	}

	c.Header("Cache-Control", "no-store, max-age=0")
	c.Redirect(http.StatusFound, outcome.DestinationURL)
}
