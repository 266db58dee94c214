package handler

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quicklinkhq/scan-tracker/internal/domain"
	"github.com/quicklinkhq/scan-tracker/internal/objstore"
	"github.com/quicklinkhq/scan-tracker/internal/qr"
	"github.com/quicklinkhq/scan-tracker/internal/shortid"
	"github.com/quicklinkhq/scan-tracker/pkg/logger"
)

// LinkWriter persists new link records.
type LinkWriter interface {
	Create(ctx context.Context, link *domain.LinkRecord) error
}

// LinkHandler serves link creation: identifier generation, QR rendering,
// image upload, and the link row insert.
type LinkHandler struct {
	links    LinkWriter
	uploader objstore.Uploader
	baseURL  string
	log      logger.Logger
}

// NewLinkHandler creates a LinkHandler. baseURL is the public origin the
// generated QR codes point at.
func NewLinkHandler(links LinkWriter, uploader objstore.Uploader, baseURL string, log logger.Logger) *LinkHandler {
	return &LinkHandler{
		links:    links,
		uploader: uploader,
		baseURL:  baseURL,
		log:      log,
	}
}

type createLinkRequest struct {
	URL string `binding:"required" json:"url"`
}

// HandleCreate creates a short link bound to a QR image.
func (h *LinkHandler) HandleCreate(c *gin.Context) {
	var req createLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	if !isValidDestination(req.URL) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid url format"})
		return
	}

	id, err := shortid.New()
	if err != nil {
		h.log.Error("Failed to generate identifier", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	redirectURL := h.baseURL + "/r/" + id

	png, err := qr.EncodePNG(redirectURL)
	if err != nil {
		h.log.Error("Failed to render QR image", logger.Error(err), logger.String("link_id", id))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	imageURL, err := h.uploader.Upload(c.Request.Context(), "qrcodes/"+id+".png", png, "image/png")
	if err != nil {
		h.log.Error("Failed to upload QR image", logger.Error(err), logger.String("link_id", id))
		c.JSON(http.StatusBadGateway, gin.H{"error": "qr image upload failed"})
		return
	}

	link := &domain.LinkRecord{
		ID:             id,
		DestinationURL: req.URL,
		QRImageURL:     imageURL,
		CreatedAt:      time.Now().UTC(),
	}

	if err := h.links.Create(c.Request.Context(), link); err != nil {
		h.log.Error("Failed to store link", logger.Error(err), logger.String("link_id", id))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":              id,
		"destination_url": link.DestinationURL,
		"redirect_url":    redirectURL,
		"qr_image_url":    imageURL,
	})
}

// isValidDestination accepts absolute http(s) URLs only.
func isValidDestination(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
