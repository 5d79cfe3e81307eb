package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/fire-risk-dashboard/internal/domain"
	"github.com/couchcryptid/fire-risk-dashboard/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingLoader struct {
	calls int
	err   error
}

func (c *countingLoader) Load(_ context.Context, path string) (*domain.Dataset, error) {
	c.calls++
	if domain.IsFatal(c.err) {
		return nil, c.err
	}
	return &domain.Dataset{Source: path}, c.err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLRUCache_GetPut(t *testing.T) {
	c := newLRUCache[int](2)

	c.put("a", 1)
	c.put("b", 2)

	v, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = c.get("b")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestLRUCache_EvictsLRU(t *testing.T) {
	c := newLRUCache[int](2)

	c.put("a", 1)
	c.put("b", 2)
	c.put("c", 3) // should evict "a"

	_, ok := c.get("a")
	assert.False(t, ok, "a should have been evicted")

	_, ok = c.get("b")
	assert.True(t, ok)
	_, ok = c.get("c")
	assert.True(t, ok)
}

func TestLRUCache_AccessRefreshesEntry(t *testing.T) {
	c := newLRUCache[int](2)

	c.put("a", 1)
	c.put("b", 2)
	c.get("a")    // refresh "a", making "b" the LRU
	c.put("c", 3) // should evict "b"

	_, ok := c.get("a")
	assert.True(t, ok, "a should survive because it was refreshed")
	_, ok = c.get("b")
	assert.False(t, ok, "b should have been evicted")
}

func TestLRUCache_UpdateExisting(t *testing.T) {
	c := newLRUCache[int](2)

	c.put("a", 1)
	c.put("a", 10)

	v, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, 10, v)
	assert.Equal(t, 1, c.len())
}

func TestLRUCache_ConcurrentAccess(t *testing.T) {
	c := newLRUCache[int](100)
	done := make(chan struct{})

	for i := 0; i < 10; i++ {
		go func(n int) {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("k%d-%d", n, j)
				c.put(key, j)
				c.get(key)
			}
		}(i)
	}
	for i := 0; i < 10; i++ {
		<-done
	}
	assert.LessOrEqual(t, c.len(), 100)
}

func TestCachedLoader_HitOnUnchangedFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "fires.csv", "temperature,classes\n29,fire\n")
	inner := &countingLoader{}
	metrics := observability.NewMetricsForTesting()
	c := NewCachedLoader(inner, 4, metrics)

	first, err := c.Load(context.Background(), path)
	require.NoError(t, err)
	second, err := c.Load(context.Background(), path)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, inner.calls)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.DatasetCache.WithLabelValues("miss")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.DatasetCache.WithLabelValues("hit")), 0)
}

func TestCachedLoader_ChangedFileReloads(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "fires.csv", "temperature,classes\n29,fire\n")
	inner := &countingLoader{}
	c := NewCachedLoader(inner, 4, observability.NewMetricsForTesting())

	_, err := c.Load(context.Background(), path)
	require.NoError(t, err)

	writeFile(t, dir, "fires.csv", "temperature,classes\n29,fire\n31,not fire\n")
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	_, err = c.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedLoader_NoTargetResultIsCached(t *testing.T) {
	path := writeFile(t, t.TempDir(), "fires.csv", "temperature\n29\n")
	inner := &countingLoader{err: fmt.Errorf("%w among [temperature]", domain.ErrNoTargetColumn)}
	c := NewCachedLoader(inner, 4, observability.NewMetricsForTesting())

	for i := 0; i < 2; i++ {
		ds, err := c.Load(context.Background(), path)
		require.ErrorIs(t, err, domain.ErrNoTargetColumn)
		require.NotNil(t, ds)
	}
	assert.Equal(t, 1, inner.calls)
}

func TestCachedLoader_FatalErrorsNotCached(t *testing.T) {
	path := writeFile(t, t.TempDir(), "fires.csv", "temperature,classes\n29\n")
	inner := &countingLoader{err: &domain.ParseError{Source: "fires.csv", Line: 2, Err: errors.New("expected 2 fields, got 1")}}
	c := NewCachedLoader(inner, 4, observability.NewMetricsForTesting())

	for i := 0; i < 2; i++ {
		_, err := c.Load(context.Background(), path)
		require.ErrorIs(t, err, domain.ErrParse)
	}
	assert.Equal(t, 2, inner.calls)
}

func TestCachedLoader_MissingFilePassesThrough(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.csv")
	inner := &countingLoader{err: fmt.Errorf("open %s: %w", path, domain.ErrResourceNotFound)}
	metrics := observability.NewMetricsForTesting()
	c := NewCachedLoader(inner, 4, metrics)

	_, err := c.Load(context.Background(), path)
	require.ErrorIs(t, err, domain.ErrResourceNotFound)
	assert.Equal(t, 1, inner.calls)
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.DatasetCache.WithLabelValues("miss")), 0)
}

func TestCachedLoader_LoadedAt(t *testing.T) {
	fixed := time.Date(2012, time.June, 7, 14, 0, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(fixed))
	t.Cleanup(func() { domain.SetClock(nil) })

	path := writeFile(t, t.TempDir(), "fires.csv", "temperature,classes\n29,fire\n")
	c := NewCachedLoader(&countingLoader{}, 4, observability.NewMetricsForTesting())

	_, ok := c.LoadedAt(path)
	assert.False(t, ok)

	_, err := c.Load(context.Background(), path)
	require.NoError(t, err)

	at, ok := c.LoadedAt(path)
	require.True(t, ok)
	assert.Equal(t, fixed, at)
}

func TestSession_LoadedAt(t *testing.T) {
	fixed := time.Date(2012, time.June, 7, 14, 0, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(fixed))
	t.Cleanup(func() { domain.SetClock(nil) })

	path := writeFile(t, t.TempDir(), "fires.csv", "temperature,classes\n29,fire\n")

	uncached := NewSession(&countingLoader{}, path)
	_, err := uncached.Dataset(context.Background())
	require.NoError(t, err)
	_, ok := uncached.LoadedAt()
	assert.False(t, ok)

	s := NewSession(NewCachedLoader(&countingLoader{}, 4, observability.NewMetricsForTesting()), path)
	_, ok = s.LoadedAt()
	assert.False(t, ok)

	_, err = s.Dataset(context.Background())
	require.NoError(t, err)
	at, ok := s.LoadedAt()
	require.True(t, ok)
	assert.Equal(t, fixed, at)
}
