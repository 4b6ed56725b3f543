package cache

import (
	"context"
	"sync"
	"time"

	"github.com/Cheertaboi/pharmacy-pricing-service/internal/models"
)

type memoryEntry struct {
	method   models.ShippingMethod
	cachedAt time.Time
}

// MemoryCache is the in-process ShippingCache used when no Redis is configured.
type MemoryCache struct {
	mu    sync.RWMutex
	store map[string]memoryEntry
	ttl   time.Duration
	now   func() time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		store: make(map[string]memoryEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, mode models.DeliveryMode) (*models.ShippingMethod, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.store[cacheKey(mode)]
	if !ok || c.now().Sub(e.cachedAt) > c.ttl {
		return nil, ErrCacheMiss
	}
	m := e.method
	return &m, nil
}

func (c *MemoryCache) Set(_ context.Context, method *models.ShippingMethod) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[cacheKey(method.Mode)] = memoryEntry{method: *method, cachedAt: c.now()}
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, mode models.DeliveryMode) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, cacheKey(mode))
	return nil
}
