package storage_test

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/quicklinkhq/scan-tracker/internal/storage"
	"github.com/quicklinkhq/scan-tracker/pkg/logger"
)

func newCachedStore(t *testing.T) (*storage.CachedLinkStore, sqlmock.Sqlmock, *miniredis.Miniredis) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := storage.NewCachedLinkStore(storage.NewLinkStore(db), client, logger.NewNop(), time.Minute)
	return store, mock, mr
}

func TestCachedLinkStore_MissThenHit(t *testing.T) {
	store, mock, _ := newCachedStore(t)

	created := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "destination_url", "qr_image_url", "created_at"}).
		AddRow("abc12345", "https://example.org/page", "", created)

	// One database read only: the second lookup must be served from cache.
	mock.ExpectQuery(`SELECT id, destination_url, qr_image_url, created_at`).
		WithArgs("abc12345").
		WillReturnRows(rows)

	for i := 0; i < 2; i++ {
		link, err := store.FindByID(context.Background(), "abc12345")
		if err != nil {
			t.Fatalf("lookup %d: unexpected error: %v", i, err)
		}
		if link.DestinationURL != "https://example.org/page" {
			t.Errorf("lookup %d: destination: got %q", i, link.DestinationURL)
		}
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCachedLinkStore_NotFoundIsNotCached(t *testing.T) {
	store, mock, mr := newCachedStore(t)

	mock.ExpectQuery(`SELECT id, destination_url, qr_image_url, created_at`).
		WithArgs("missing1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "destination_url", "qr_image_url", "created_at"}))

	if _, err := store.FindByID(context.Background(), "missing1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if mr.Exists("link:missing1") {
		t.Error("not-found results must not populate the cache")
	}
}

func TestCachedLinkStore_CorruptEntryFallsThrough(t *testing.T) {
	store, mock, mr := newCachedStore(t)

	if err := mr.Set("link:abc12345", "not json"); err != nil {
		t.Fatalf("failed to seed cache: %v", err)
	}

	created := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "destination_url", "qr_image_url", "created_at"}).
		AddRow("abc12345", "https://example.org/page", "", created)
	mock.ExpectQuery(`SELECT id, destination_url, qr_image_url, created_at`).
		WithArgs("abc12345").
		WillReturnRows(rows)

	link, err := store.FindByID(context.Background(), "abc12345")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if link.DestinationURL != "https://example.org/page" {
		t.Errorf("destination: got %q", link.DestinationURL)
	}
}
