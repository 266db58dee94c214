package domain

import "time"

// LinkRecord is the durable mapping from a short identifier to a destination
// URL. Records are created once at link-creation time and never mutated by
// the redirect path.
type LinkRecord struct {
	ID             string    `json:"id"`
	DestinationURL string    `json:"destination_url"`
	QRImageURL     string    `json:"qr_image_url"`
	CreatedAt      time.Time `json:"created_at"`
}
