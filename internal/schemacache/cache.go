// Package schemacache holds discovered schema descriptors between CRUD
// operations until they are explicitly refreshed or expire.
package schemacache

import (
	"context"
	"sync"
	"time"

	"github.com/leapstack-labs/cricdash/pkg/core"
	"golang.org/x/sync/singleflight"
)

// Loader discovers a fresh descriptor.
type Loader func(ctx context.Context) (core.SchemaDescriptor, error)

type entry struct {
	schema   core.SchemaDescriptor
	loadedAt time.Time
}

// Cache maps a connection key (type://user@host:port) to its descriptor.
// Concurrent loads of the same key share one discovery.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	group   singleflight.Group
	ttl     time.Duration
	now     func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL expires entries after d. Zero keeps entries until invalidated.
func WithTTL(d time.Duration) Option {
	return func(c *Cache) { c.ttl = d }
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached descriptor for key, calling load on a miss.
// Failed loads are not cached.
func (c *Cache) Get(ctx context.Context, key string, load Loader) (core.SchemaDescriptor, error) {
	if sd, ok := c.lookup(key); ok {
		return sd, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		if sd, ok := c.lookup(key); ok {
			return sd, nil
		}
		sd, err := load(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[key] = entry{schema: sd, loadedAt: c.now()}
		c.mu.Unlock()
		return sd, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(core.SchemaDescriptor), nil
}

// Refresh drops key and loads it again.
func (c *Cache) Refresh(ctx context.Context, key string, load Loader) (core.SchemaDescriptor, error) {
	c.Invalidate(key)
	return c.Get(ctx, key, load)
}

// Invalidate drops key.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// InvalidateAll drops every entry.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, e := range c.entries {
		if !c.expired(e) {
			n++
		}
	}
	return n
}

func (c *Cache) lookup(key string) (core.SchemaDescriptor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok || c.expired(e) {
		return nil, false
	}
	return e.schema, true
}

func (c *Cache) expired(e entry) bool {
	return c.ttl > 0 && c.now().Sub(e.loadedAt) > c.ttl
}
