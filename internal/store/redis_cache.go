package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/snowlink/internal/shortener"
)

// RedisCacheRepository wraps a Repository with Redis caching for reads.
// Mappings are immutable once saved, so cached entries never go stale.
type RedisCacheRepository struct {
	store  shortener.Repository
	client *redis.Client
	prefix    string
	urlPrefix string
	ttl       time.Duration
}

// NewRedisCacheRepository creates a new Redis-cached repository decorator.
func NewRedisCacheRepository(
	store shortener.Repository, client *redis.Client, ttl time.Duration,
) *RedisCacheRepository {
	return &RedisCacheRepository{
		store:     store,
		client:    client,
		prefix:    "cache:mapping:",
		urlPrefix: "cache:mapping_url:",
		ttl:       ttl,
	}
}

// Save stores a mapping in the underlying store and updates the cache.
func (r *RedisCacheRepository) Save(ctx context.Context, mapping *shortener.Mapping) error {
	if err := r.store.Save(ctx, mapping); err != nil {
		return err
	}

	// Write-through: update cache after successful save
	r.cacheMapping(ctx, mapping)

	return nil
}

// ExistsByCode answers from the cache when it can. Misses always fall
// through, since absence is never cached.
func (r *RedisCacheRepository) ExistsByCode(ctx context.Context, code shortener.Code) (bool, error) {
	if n, err := r.client.Exists(ctx, r.prefix+string(code)).Result(); err == nil && n > 0 {
		return true, nil
	}

	return r.store.ExistsByCode(ctx, code)
}

// GetByCode retrieves a mapping by its code, checking cache first.
func (r *RedisCacheRepository) GetByCode(ctx context.Context, code shortener.Code) (*shortener.Mapping, error) {
	if m, err := readMapping(ctx, r.client, r.prefix+string(code)); err == nil {
		return m, nil
	}

	// Cache miss - fetch from store
	m, err := r.store.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	r.cacheMapping(ctx, m)

	return m, nil
}

// FindByLongURL resolves the long URL index in the cache before asking the
// underlying store.
func (r *RedisCacheRepository) FindByLongURL(ctx context.Context, longURL string) (*shortener.Mapping, error) {
	code, err := r.client.Get(ctx, r.urlPrefix+longURL).Result()
	if err == nil {
		if m, err := readMapping(ctx, r.client, r.prefix+code); err == nil {
			return m, nil
		}
	}

	m, err := r.store.FindByLongURL(ctx, longURL)
	if err != nil {
		return nil, err
	}

	r.cacheMapping(ctx, m)

	return m, nil
}

// CountByOwner is not cached.
func (r *RedisCacheRepository) CountByOwner(ctx context.Context) ([]shortener.OwnerCount, error) {
	return r.store.CountByOwner(ctx)
}

func (r *RedisCacheRepository) cacheMapping(ctx context.Context, m *shortener.Mapping) {
	pipe := r.client.Pipeline()
	key := r.prefix + string(m.Code)

	pipe.HSet(ctx, key, mappingHash(m))

	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}

	// One key per URL with the mapping's TTL, so the index expires with it.
	// First code seen for a URL wins, matching the store's oldest-first answer.
	pipe.SetNX(ctx, r.urlPrefix+m.LongURL, string(m.Code), r.ttl)

	_, _ = pipe.Exec(ctx)
}

// Compile-time check.
var _ shortener.Repository = (*RedisCacheRepository)(nil)
