// Package cache memoizes translations by (text, source, target) for the
// lifetime of a run, optionally backed by a persistent Store.
package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Key identifies a translation. Use NewKey to build normalized keys.
type Key struct {
	Text   string
	Source string
	Target string
}

// NewKey normalizes the text by trimming it and the language tokens by
// trimming and lower-casing them.
func NewKey(text, source, target string) Key {
	return Key{
		Text:   strings.TrimSpace(text),
		Source: strings.ToLower(strings.TrimSpace(source)),
		Target: strings.ToLower(strings.TrimSpace(target)),
	}
}

func (k Key) String() string {
	return fmt.Sprintf("%s\x00%s\x00%s", k.Text, k.Source, k.Target)
}

// Store persists translations across runs.
type Store interface {
	Get(ctx context.Context, key Key) (string, bool, error)
	Put(ctx context.Context, key Key, value string) error
}

// Stats counts cache lookups
type Stats struct {
	Hits        int64
	Misses      int64
	StoreErrors int64
}

// Cache is safe for concurrent use. Concurrent lookups of the same missing
// key share one computation.
type Cache struct {
	mu      sync.RWMutex
	entries map[Key]string
	group   singleflight.Group
	store   Store

	hits        atomic.Int64
	misses      atomic.Int64
	storeErrors atomic.Int64
}

// New creates an empty cache. store may be nil.
func New(store Store) *Cache {
	return &Cache{
		entries: make(map[Key]string),
		store:   store,
	}
}

// Get returns the memoized value for key, if any
func (c *Cache) Get(key Key) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

// Put stores a value in memory only
func (c *Cache) Put(key Key, value string) {
	c.mu.Lock()
	c.entries[key] = value
	c.mu.Unlock()
}

// Len returns the number of memoized entries
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns hit and miss counters
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		StoreErrors: c.storeErrors.Load(),
	}
}

// GetOrCompute returns the value for key, calling compute on a miss. The
// boolean reports whether the value came from the cache or store. Errors
// from compute are returned and never memoized. Store failures are counted
// in Stats and otherwise ignored.
func (c *Cache) GetOrCompute(ctx context.Context, key Key, compute func(context.Context) (string, error)) (string, bool, error) {
	if v, ok := c.Get(key); ok {
		c.hits.Add(1)
		return v, true, nil
	}

	type result struct {
		value  string
		cached bool
	}

	// only the caller whose function runs computed the value; the others
	// joined an in-flight lookup
	ran := false
	v, err, _ := c.group.Do(key.String(), func() (interface{}, error) {
		ran = true
		if v, ok := c.Get(key); ok {
			return result{value: v, cached: true}, nil
		}

		if c.store != nil {
			v, ok, err := c.store.Get(ctx, key)
			if err != nil {
				c.storeErrors.Add(1)
			} else if ok {
				c.Put(key, v)
				return result{value: v, cached: true}, nil
			}
		}

		v, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		c.Put(key, v)

		if c.store != nil {
			if err := c.store.Put(ctx, key, v); err != nil {
				c.storeErrors.Add(1)
			}
		}
		return result{value: v}, nil
	})
	if err != nil {
		c.misses.Add(1)
		return "", false, err
	}

	res := v.(result)
	cached := res.cached || !ran
	if cached {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return res.value, cached, nil
}
