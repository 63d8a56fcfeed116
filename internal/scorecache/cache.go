// Package scorecache memoizes scorer results. The scorer is the only
// per-turn operation that may block on external I/O; repeated prompts
// within the TTL replay the cached candidates instead.
package scorecache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/flexigpt/skillrouter-go/spec"
)

const (
	defaultMaxSize = 256
	defaultTTL     = 5 * time.Minute
)

// Config configures cache behaviour.
type Config struct {
	// MaxSize is the maximum number of entries in the LRU cache.
	MaxSize int
	// TTL is how long a cached result remains valid.
	TTL time.Duration
}

// DefaultConfig returns sensible defaults for score caching.
func DefaultConfig() Config {
	return Config{MaxSize: defaultMaxSize, TTL: defaultTTL}
}

type entry struct {
	cands    []spec.ScoredCandidate
	storedAt time.Time
}

// Cache is a TTL-bounded LRU of scorer results. Safe for concurrent use.
type Cache struct {
	ttl   time.Duration
	inner *lru.Cache[string, entry]

	now func() time.Time
}

func New(cfg Config) (*Cache, error) {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = defaultMaxSize
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}
	inner, err := lru.New[string, entry](cfg.MaxSize)
	if err != nil {
		return nil, err
	}
	return &Cache{ttl: cfg.TTL, inner: inner, now: time.Now}, nil
}

// Key derives the cache key for one request against one catalog state.
func Key(request, catalogDigest string) string {
	sum := sha256.Sum256([]byte(request + "\x00" + catalogDigest))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached candidates for key, expiring lazily.
func (c *Cache) Get(key string) ([]spec.ScoredCandidate, bool) {
	e, ok := c.inner.Get(key)
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.storedAt) > c.ttl {
		c.inner.Remove(key)
		return nil, false
	}
	return append([]spec.ScoredCandidate(nil), e.cands...), true
}

// Put stores candidates for key. Storing is idempotent: a later Put for
// the same key replaces the entry and refreshes its TTL.
func (c *Cache) Put(key string, cands []spec.ScoredCandidate) {
	c.inner.Add(key, entry{
		cands:    append([]spec.ScoredCandidate(nil), cands...),
		storedAt: c.now(),
	})
}

// Sweep removes expired entries and reports how many were evicted.
func (c *Cache) Sweep() int {
	evicted := 0
	now := c.now()
	for _, key := range c.inner.Keys() {
		e, ok := c.inner.Peek(key)
		if !ok {
			continue
		}
		if now.Sub(e.storedAt) > c.ttl {
			c.inner.Remove(key)
			evicted++
		}
	}
	return evicted
}

// StartSweep runs Sweep every interval until ctx is done. Long-lived
// hosts use this; one-shot hook invocations rely on lazy expiry.
func (c *Cache) StartSweep(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = c.ttl
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				c.Sweep()
			}
		}
	}()
}

func (c *Cache) Len() int { return c.inner.Len() }
