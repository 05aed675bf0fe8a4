// AngelaMos | 2026
// cache.go

package apiclient

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Key identifies a read by endpoint path and its sorted query parameters.
type Key string

func NewKey(path string, query url.Values) Key {
	if len(query) == 0 {
		return Key(path)
	}
	return Key(path + "?" + query.Encode())
}

type cacheEntry struct {
	value     any
	fetchedAt time.Time
	stale     bool
}

// QueryCache holds read results until they are invalidated or, when a stale
// time is set, until they age out. Entries are never evicted.
type QueryCache struct {
	mu        sync.RWMutex
	entries   map[Key]*cacheEntry
	group     singleflight.Group
	staleTime time.Duration
	now       func() time.Time
}

// NewQueryCache with staleTime 0 keeps entries fresh until invalidated.
func NewQueryCache(staleTime time.Duration) *QueryCache {
	return &QueryCache{
		entries:   make(map[Key]*cacheEntry),
		staleTime: staleTime,
		now:       time.Now,
	}
}

// Invalidate marks every entry whose key starts with prefix as stale.
func (c *QueryCache) Invalidate(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, e := range c.entries {
		if strings.HasPrefix(string(key), prefix) {
			e.stale = true
		}
	}
}

func (c *QueryCache) lookup(key Key) (*cacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	fresh := !e.stale && (c.staleTime == 0 || c.now().Sub(e.fetchedAt) < c.staleTime)
	return e, fresh
}

func (c *QueryCache) store(key Key, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &cacheEntry{value: value, fetchedAt: c.now()}
}

// Query returns the cached value for key or fetches it. Concurrent misses on
// one key share a single fetch. When a fetch fails the previous value, if
// any, is returned alongside the error.
func Query[T any](
	ctx context.Context,
	c *QueryCache,
	key Key,
	fetch func(ctx context.Context) (T, error),
) (T, error) {
	e, fresh := c.lookup(key)
	if fresh {
		if v, ok := e.value.(T); ok {
			return v, nil
		}
	}

	// The shared fetch outlives any single caller; each caller stops waiting
	// when its own context ends.
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(string(key), func() (any, error) {
		fetched, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		c.store(key, fetched)
		return fetched, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		res = singleflight.Result{Err: ctx.Err()}
	}

	if res.Err != nil {
		var zero T
		if e != nil {
			if stale, ok := e.value.(T); ok {
				return stale, res.Err
			}
		}
		return zero, res.Err
	}

	out, _ := res.Val.(T)
	return out, nil
}
