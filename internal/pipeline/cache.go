package pipeline

import (
	"container/list"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/couchcryptid/fire-risk-dashboard/internal/domain"
	"github.com/couchcryptid/fire-risk-dashboard/internal/observability"
)

// CachedLoader wraps a Loader with an in-memory LRU cache keyed by resource
// identity: absolute path, size and modification time. A file that changes
// on disk gets a new key; stale entries age out of the LRU.
type CachedLoader struct {
	inner   Loader
	cache   *lruCache[cacheEntry]
	metrics *observability.Metrics
}

// cacheEntry is immutable once stored. err is only ever a recoverable
// ErrNoTargetColumn; fatal results are not cached.
type cacheEntry struct {
	dataset  *domain.Dataset
	err      error
	loadedAt time.Time
}

// NewCachedLoader creates a cache decorator around a loader.
func NewCachedLoader(inner Loader, maxEntries int, metrics *observability.Metrics) *CachedLoader {
	return &CachedLoader{
		inner:   inner,
		cache:   newLRUCache[cacheEntry](maxEntries),
		metrics: metrics,
	}
}

func (c *CachedLoader) Load(ctx context.Context, path string) (*domain.Dataset, error) {
	key, ok := resourceKey(path)
	if !ok {
		// Unreadable metadata: let the inner loader produce the real error.
		return c.inner.Load(ctx, path)
	}

	if e, ok := c.cache.get(key); ok {
		c.metrics.DatasetCache.WithLabelValues("hit").Inc()
		return e.dataset, e.err
	}
	c.metrics.DatasetCache.WithLabelValues("miss").Inc()

	ds, err := c.inner.Load(ctx, path)
	if domain.IsFatal(err) {
		return ds, err
	}
	c.cache.put(key, cacheEntry{dataset: ds, err: err, loadedAt: domain.Now()})
	return ds, err
}

// LoadedAt reports when the cached copy of path was loaded, if there is one
// for the file's current identity.
func (c *CachedLoader) LoadedAt(path string) (time.Time, bool) {
	key, ok := resourceKey(path)
	if !ok {
		return time.Time{}, false
	}
	e, ok := c.cache.get(key)
	if !ok {
		return time.Time{}, false
	}
	return e.loadedAt, true
}

func resourceKey(path string) (string, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		return "", false
	}
	return fmt.Sprintf("%s|%d|%d", abs, info.Size(), info.ModTime().UnixNano()), true
}

// lruCache is a mutex-guarded LRU of at most maxEntries values. The list
// front is the most recently used entry.
type lruCache[V any] struct {
	maxEntries int
	mu         sync.Mutex
	order      *list.List
	index      map[string]*list.Element
}

type lruItem[V any] struct {
	key   string
	value V
}

func newLRUCache[V any](maxEntries int) *lruCache[V] {
	return &lruCache[V]{
		maxEntries: maxEntries,
		order:      list.New(),
		index:      make(map[string]*list.Element),
	}
}

func (c *lruCache[V]) get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.index[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*lruItem[V]).value, true
}

func (c *lruCache[V]) put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.index[key]; ok {
		el.Value.(*lruItem[V]).value = value
		c.order.MoveToFront(el)
		return
	}
	c.index[key] = c.order.PushFront(&lruItem[V]{key: key, value: value})

	for c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.index, oldest.Value.(*lruItem[V]).key)
	}
}

func (c *lruCache[V]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
