package cache

import (
	"context"
	"sync"
	"time"
)

// Store caches serialized listing responses. Invalidate drops everything,
// since any write can move records between pages.
//
// Callers take a Version before reading the source and hand it to Set. A
// Set whose version was overtaken by an Invalidate is discarded, so a page
// read before a write never outlives that write. ok is false when the
// version cannot be determined; nothing should be cached then.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Version(ctx context.Context) (ver uint64, ok bool)
	Set(ctx context.Context, key string, val []byte, ver uint64)
	Invalidate(ctx context.Context)
}

type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	version uint64
	m       map[string]entry
}
type entry struct {
	val []byte
	exp time.Time
}

func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return &Cache{
		ttl: ttl,
		m:   make(map[string]entry),
	}
}

func (c *Cache) Get(_ context.Context, key string) ([]byte, bool) {
	now := time.Now()
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if now.After(e.exp) {
		c.mu.Lock()
		delete(c.m, key)
		c.mu.Unlock()
		return nil, false
	}

	return e.val, true
}

func (c *Cache) Version(_ context.Context) (uint64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version, true
}

func (c *Cache) Set(_ context.Context, key string, val []byte, ver uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ver != c.version {
		return
	}
	c.m[key] = entry{val: val, exp: time.Now().Add(c.ttl)}
}

func (c *Cache) Invalidate(_ context.Context) {
	c.mu.Lock()
	c.version++
	c.m = make(map[string]entry)
	c.mu.Unlock()
}

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, bool)  { return nil, false }
func (Noop) Version(context.Context) (uint64, bool)      { return 0, false }
func (Noop) Set(context.Context, string, []byte, uint64) {}
func (Noop) Invalidate(context.Context)                  {}
