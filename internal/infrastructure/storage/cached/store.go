package cached

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/DouglasAltwig/AWSomeBuilder3/internal/core/domain"
	"github.com/DouglasAltwig/AWSomeBuilder3/internal/core/ports"
)

const defaultTTL = 2 * time.Hour

// Store layers a redis read-through cache over an object store. Stored
// classification results are re-read by resumed jobs shortly after being
// written; the cache keeps those reads off the bucket. Cache failures are
// tolerated, the bucket is always authoritative.
type Store struct {
	inner ports.ObjectStore
	rdb   *redis.Client
	ttl   time.Duration
	log   *slog.Logger
}

func New(inner ports.ObjectStore, rdb *redis.Client, ttl time.Duration, log *slog.Logger) *Store {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Store{inner: inner, rdb: rdb, ttl: ttl, log: log}
}

func (s *Store) Get(ctx context.Context, loc domain.ObjectLocation) ([]byte, error) {
	key := s.cacheKey(loc)
	cachedBody, err := s.rdb.Get(ctx, key).Bytes()
	if err == nil {
		return cachedBody, nil
	}
	if !errors.Is(err, redis.Nil) {
		s.log.Warn("cache read failed", "key", key, "error", err)
	}

	body, err := s.inner.Get(ctx, loc)
	if err != nil {
		return nil, err
	}
	if err := s.rdb.Set(ctx, key, body, s.ttl).Err(); err != nil {
		s.log.Warn("cache fill failed", "key", key, "error", err)
	}
	return body, nil
}

func (s *Store) Put(ctx context.Context, loc domain.ObjectLocation, body []byte) (string, error) {
	etag, err := s.inner.Put(ctx, loc, body)
	if err != nil {
		return "", err
	}
	if err := s.rdb.Set(ctx, s.cacheKey(loc), body, s.ttl).Err(); err != nil {
		s.log.Warn("cache write-through failed", "key", s.cacheKey(loc), "error", err)
	}
	return etag, nil
}

func (s *Store) Delete(ctx context.Context, loc domain.ObjectLocation) error {
	if err := s.inner.Delete(ctx, loc); err != nil {
		return err
	}
	if err := s.rdb.Del(ctx, s.cacheKey(loc)).Err(); err != nil {
		s.log.Warn("cache invalidation failed", "key", s.cacheKey(loc), "error", err)
	}
	return nil
}

func (s *Store) cacheKey(loc domain.ObjectLocation) string {
	return fmt.Sprintf("object:%s/%s", loc.Bucket, loc.Key)
}
