package store

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/snowlink/internal/shortener"
)

// saveScript claims a code and writes the mapping, the long URL index and
// the owner tally in one step. It returns 0 when the code is already taken.
//
// KEYS: mapping hash, url index hash, owner counts hash.
// ARGV: code, long url, created_at nanos, custom flag, owner id ("" if none).
var saveScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
  return 0
end
redis.call('HSET', KEYS[1], 'code', ARGV[1], 'long_url', ARGV[2], 'created_at', ARGV[3], 'custom', ARGV[4])
if ARGV[5] ~= '' then
  redis.call('HSET', KEYS[1], 'owner_id', ARGV[5])
  redis.call('HINCRBY', KEYS[3], ARGV[5], 1)
end
redis.call('HSETNX', KEYS[2], ARGV[2], ARGV[1])
return 1
`)

// RedisStore is a Redis implementation of shortener.Repository.
type RedisStore struct {
	client   *redis.Client
	prefix   string // "mapping:" for code->mapping (hash keys)
	urlKey   string // "mapping_urls" for longURL->first code
	ownerKey string // "mapping_owners" for owner->count
}

// NewRedisStore creates a new Redis-backed mapping store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client:   client,
		prefix:   "mapping:",
		urlKey:   "mapping_urls",
		ownerKey: "mapping_owners",
	}
}

func (r *RedisStore) ExistsByCode(ctx context.Context, code shortener.Code) (bool, error) {
	n, err := r.client.Exists(ctx, r.prefix+string(code)).Result()

	return n > 0, err
}

func (r *RedisStore) GetByCode(ctx context.Context, code shortener.Code) (*shortener.Mapping, error) {
	return readMapping(ctx, r.client, r.prefix+string(code))
}

func (r *RedisStore) FindByLongURL(ctx context.Context, longURL string) (*shortener.Mapping, error) {
	code, err := r.client.HGet(ctx, r.urlKey, longURL).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	return r.GetByCode(ctx, shortener.Code(code))
}

func (r *RedisStore) Save(ctx context.Context, mapping *shortener.Mapping) error {
	keys := []string{r.prefix + string(mapping.Code), r.urlKey, r.ownerKey}

	saved, err := saveScript.Run(ctx, r.client, keys,
		string(mapping.Code),
		mapping.LongURL,
		mapping.CreatedAt.UnixNano(),
		formatBool(mapping.Custom),
		mapping.Owner(),
	).Int()
	if err != nil {
		return err
	}

	if saved == 0 {
		return shortener.ErrCodeTaken
	}

	return nil
}

func (r *RedisStore) CountByOwner(ctx context.Context) ([]shortener.OwnerCount, error) {
	result, err := r.client.HGetAll(ctx, r.ownerKey).Result()
	if err != nil {
		return nil, err
	}

	counts := make([]shortener.OwnerCount, 0, len(result))

	for owner, raw := range result {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, err
		}

		counts = append(counts, shortener.OwnerCount{OwnerID: owner, Count: n})
	}

	return counts, nil
}

func readMapping(ctx context.Context, client *redis.Client, key string) (*shortener.Mapping, error) {
	result, err := client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}

	if len(result) == 0 {
		return nil, shortener.ErrNotFound
	}

	return mappingFromHash(result), nil
}

func mappingFromHash(result map[string]string) *shortener.Mapping {
	var createdAt time.Time

	if ts, ok := result["created_at"]; ok {
		if nanos, err := strconv.ParseInt(ts, 10, 64); err == nil {
			createdAt = time.Unix(0, nanos).UTC()
		}
	}

	m := &shortener.Mapping{
		Code:      shortener.Code(result["code"]),
		LongURL:   result["long_url"],
		CreatedAt: createdAt,
		Custom:    result["custom"] == "1",
	}

	if owner, ok := result["owner_id"]; ok && owner != "" {
		m.OwnerID = &owner
	}

	return m
}

func mappingHash(m *shortener.Mapping) map[string]interface{} {
	fields := map[string]interface{}{
		"code":       string(m.Code),
		"long_url":   m.LongURL,
		"created_at": m.CreatedAt.UnixNano(),
		"custom":     formatBool(m.Custom),
	}

	if m.OwnerID != nil {
		fields["owner_id"] = *m.OwnerID
	}

	return fields
}

func formatBool(b bool) string {
	if b {
		return "1"
	}

	return "0"
}

// Compile-time check.
var _ shortener.Repository = (*RedisStore)(nil)
