package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Cheertaboi/pharmacy-pricing-service/internal/models"
)

// RedisCache shares shipping methods between instances. Entries expire after
// the base TTL plus up to a minute of jitter.
type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: ttl,
	}
}

func (r *RedisCache) Get(ctx context.Context, mode models.DeliveryMode) (*models.ShippingMethod, error) {
	data, err := r.client.Get(ctx, cacheKey(mode)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var m models.ShippingMethod
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal shipping method failed: %w", err)
	}
	return &m, nil
}

func (r *RedisCache) Set(ctx context.Context, method *models.ShippingMethod) error {
	data, err := json.Marshal(method)
	if err != nil {
		return fmt.Errorf("marshal shipping method failed: %w", err)
	}

	jitter := time.Duration(rand.Int63n(int64(time.Minute)))
	if err := r.client.Set(ctx, cacheKey(method.Mode), data, r.baseTTL+jitter).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, mode models.DeliveryMode) error {
	if err := r.client.Del(ctx, cacheKey(mode)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}
