package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quicklinkhq/scan-tracker/internal/domain"
	"github.com/quicklinkhq/scan-tracker/pkg/logger"
)

// CachedLinkStore is a cache-aside wrapper around LinkStore for the hot
// redirect path. Cache failures fall through to PostgreSQL; only not-found
// and store errors propagate to the caller.
type CachedLinkStore struct {
	store  *LinkStore
	client *redis.Client
	log    logger.Logger
	ttl    time.Duration
}

// NewCachedLinkStore wraps store with a Redis cache.
func NewCachedLinkStore(store *LinkStore, client *redis.Client, log logger.Logger, ttl time.Duration) *CachedLinkStore {
	return &CachedLinkStore{
		store:  store,
		client: client,
		log:    log,
		ttl:    ttl,
	}
}

func cacheKey(id string) string {
	return "link:" + id
}

// FindByID returns the cached link when present, otherwise reads from
// PostgreSQL and populates the cache best-effort.
func (c *CachedLinkStore) FindByID(ctx context.Context, id string) (*domain.LinkRecord, error) {
	if link, ok := c.cacheGet(ctx, id); ok {
		return link, nil
	}

	link, err := c.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	c.cacheSet(ctx, link)
	return link, nil
}

// Create inserts the link and primes the cache.
func (c *CachedLinkStore) Create(ctx context.Context, link *domain.LinkRecord) error {
	if err := c.store.Create(ctx, link); err != nil {
		return err
	}

	c.cacheSet(ctx, link)
	return nil
}

func (c *CachedLinkStore) cacheGet(ctx context.Context, id string) (*domain.LinkRecord, bool) {
	data, err := c.client.Get(ctx, cacheKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("Link cache read failed", logger.Error(err), logger.String("link_id", id))
		}
		return nil, false
	}

	var link domain.LinkRecord
	if err := json.Unmarshal(data, &link); err != nil {
		c.log.Warn("Link cache entry corrupt", logger.Error(err), logger.String("link_id", id))
		return nil, false
	}

	return &link, true
}

func (c *CachedLinkStore) cacheSet(ctx context.Context, link *domain.LinkRecord) {
	data, err := json.Marshal(link)
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, cacheKey(link.ID), data, c.ttl).Err(); err != nil {
		c.log.Warn("Link cache write failed", logger.Error(err), logger.String("link_id", link.ID))
	}
}
