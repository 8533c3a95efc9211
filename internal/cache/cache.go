package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Cache хранит значения в памяти процесса с TTL и сбросом по префиксу ключа.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*entry
	now     func() time.Time

	// generation растёт при каждом сбросе. GetOrSet не сохраняет значение,
	// если сброс произошёл, пока оно вычислялось.
	generation uint64
}

type entry struct {
	data      any
	expiresAt time.Time
}

func New() *Cache {
	return &Cache{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// RunCleanup периодически удаляет просроченные записи, пока жив ctx.
func (c *Cache) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.removeExpired()
		}
	}
}

func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || c.now().After(e.expiresAt) {
		return nil, false
	}
	return e.data, true
}

func (c *Cache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &entry{
		data:      value,
		expiresAt: c.now().Add(ttl),
	}
}

func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	c.generation++
}

func (c *Cache) InvalidateByPrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	c.generation++
}

// GetOrSet возвращает значение из кэша или вычисляет и сохраняет его.
// Ошибка fn не кэшируется. Значение, вычисленное до сброса, возвращается
// вызывающему, но в кэш не попадает.
func (c *Cache) GetOrSet(key string, ttl time.Duration, fn func() (any, error)) (any, error) {
	if value, ok := c.Get(key); ok {
		return value, nil
	}

	c.mu.RLock()
	gen := c.generation
	c.mu.RUnlock()

	value, err := fn()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation == gen {
		c.entries[key] = &entry{
			data:      value,
			expiresAt: c.now().Add(ttl),
		}
	}
	return value, nil
}

func (c *Cache) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}
