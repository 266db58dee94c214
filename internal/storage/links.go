package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/quicklinkhq/scan-tracker/internal/domain"
)

// ErrNotFound is returned when no link exists for an identifier.
var ErrNotFound = errors.New("link not found")

// LinkStore reads and writes link records in PostgreSQL.
type LinkStore struct {
	db *sql.DB
}

// NewLinkStore creates a LinkStore backed by db.
func NewLinkStore(db *sql.DB) *LinkStore {
	return &LinkStore{db: db}
}

// FindByID looks up a link by its exact identifier.
// Returns ErrNotFound when no row matches.
func (s *LinkStore) FindByID(ctx context.Context, id string) (*domain.LinkRecord, error) {
	const query = `SELECT id, destination_url, qr_image_url, created_at
		FROM qr_links WHERE id = $1`

	var link domain.LinkRecord
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&link.ID, &link.DestinationURL, &link.QRImageURL, &link.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query link %q: %w", id, err)
	}

	return &link, nil
}

// Create inserts a new link record.
func (s *LinkStore) Create(ctx context.Context, link *domain.LinkRecord) error {
	const query = `INSERT INTO qr_links (id, destination_url, qr_image_url, created_at)
		VALUES ($1, $2, $3, $4)`

	if _, err := s.db.ExecContext(ctx, query,
		link.ID, link.DestinationURL, link.QRImageURL, link.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert link %q: %w", link.ID, err)
	}

	return nil
}
