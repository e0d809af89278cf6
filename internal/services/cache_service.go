// internal/services/cache_service.go
package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/auctionsys/storefront-backend/internal/config"
)

// CacheService fronts catalog reads with Redis. A nil client disables
// caching and every method becomes a cheap no-op, so callers never need to
// know whether Redis is configured.
type CacheService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheService(cfg config.RedisConfig) *CacheService {
	if !cfg.Enabled {
		return &CacheService{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logrus.WithError(err).Warn("Redis unavailable, catalog cache disabled")
		return &CacheService{}
	}

	return &CacheService{
		client: client,
		ttl:    time.Duration(cfg.CacheTTL) * time.Second,
	}
}

func (s *CacheService) Enabled() bool {
	return s.client != nil
}

func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) bool {
	if s.client == nil {
		return false
	}

	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Failed to decode cached value")
		return false
	}
	return true
}

func (s *CacheService) Set(ctx context.Context, key string, value interface{}) {
	if s.client == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		return
	}

	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Failed to cache value")
	}
}

func (s *CacheService) Invalidate(ctx context.Context, keys ...string) {
	if s.client == nil || len(keys) == 0 {
		return
	}

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		logrus.WithError(err).Warn("Failed to invalidate cache keys")
	}
}

// InvalidatePrefix removes every key under the prefix. Popular-product
// entries are keyed per limit, so invalidation sweeps the whole family.
func (s *CacheService) InvalidatePrefix(ctx context.Context, prefix string) {
	if s.client == nil {
		return
	}

	iter := s.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logrus.WithError(err).Warn("Failed to scan cache keys")
		return
	}

	s.Invalidate(ctx, keys...)
}

// Cache keys for catalog reads.
const (
	CacheKeyPopularProducts = "catalog:products:popular"
	CacheKeyCategories      = "catalog:categories"
)
