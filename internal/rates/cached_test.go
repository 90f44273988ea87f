// Copyright (c) 2026 fxview Team
// fxview - terminal currency converter
// This source code is licensed under the MIT license found in the LICENSE file.

package rates

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toeirei/fxview/internal/model"
)

type memCache struct {
	mu      sync.Mutex
	tables  map[string]*model.RateTable
	saveErr error
}

func newMemCache() *memCache { return &memCache{tables: map[string]*model.RateTable{}} }

func (c *memCache) SaveRateTable(_ context.Context, t *model.RateTable) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.saveErr != nil {
		return c.saveErr
	}
	c.tables[t.Base] = t
	return nil
}

func (c *memCache) GetRateTable(_ context.Context, base string) (*model.RateTable, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.tables[base]
	if !ok {
		return nil, errors.New("not found")
	}
	return t, nil
}

func TestCachedLoader_SavesOnSuccess(t *testing.T) {
	cache := newMemCache()
	next := NewStaticLoader(DemoTable())
	l := NewCachedLoader(next, cache, CachedOptions{})

	tbl, err := l.Fetch(context.Background(), "EUR")
	require.NoError(t, err)
	got, err := cache.GetRateTable(context.Background(), "EUR")
	require.NoError(t, err)
	assert.Same(t, tbl, got)
}

func TestCachedLoader_FreshHitSkipsFeed(t *testing.T) {
	cache := newMemCache()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	cached := model.NewRateTable("USD", "d", map[string]float64{"EUR": 0.9}, now.Add(-time.Minute))
	require.NoError(t, cache.SaveRateTable(context.Background(), cached))

	next := NewStaticLoader(DemoTable())
	reg := prometheus.NewRegistry()
	l := NewCachedLoader(next, cache, CachedOptions{TTL: time.Hour, Metrics: NewMetrics(reg)})
	l.now = func() time.Time { return now }

	tbl, err := l.Fetch(context.Background(), "usd")
	require.NoError(t, err)
	assert.Same(t, cached, tbl)
	assert.Empty(t, next.Calls())
	assert.InDelta(t, 1, testutil.ToFloat64(l.opts.Metrics.CacheHits.WithLabelValues("fresh")), 0)

	// Expired entries go back to the feed.
	l.now = func() time.Time { return now.Add(2 * time.Hour) }
	_, err = l.Fetch(context.Background(), "USD")
	require.NoError(t, err)
	assert.Equal(t, []string{"USD"}, next.Calls())
}

func TestCachedLoader_OfflineFallback(t *testing.T) {
	cache := newMemCache()
	cached := model.NewRateTable("USD", "d", map[string]float64{"EUR": 0.9}, time.Now().Add(-48*time.Hour))
	require.NoError(t, cache.SaveRateTable(context.Background(), cached))

	next := NewStaticLoader(DemoTable())
	next.SetError(fmt.Errorf("%w: status 503", ErrUpstream))

	l := NewCachedLoader(next, cache, CachedOptions{OfflineFallback: true})
	tbl, err := l.Fetch(context.Background(), "USD")
	require.NoError(t, err)
	assert.True(t, tbl.Stale)
	assert.False(t, cached.Stale, "cached table must not be mutated")
	assert.InDelta(t, 0.9, tbl.Rates["EUR"], 1e-12)

	off := NewCachedLoader(next, cache, CachedOptions{OfflineFallback: false})
	_, err = off.Fetch(context.Background(), "USD")
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestCachedLoader_NoFallbackForUnknownCurrency(t *testing.T) {
	cache := newMemCache()
	require.NoError(t, cache.SaveRateTable(context.Background(), model.NewRateTable("XYZ", "d", nil, time.Now().Add(-48*time.Hour))))

	next := NewStaticLoader(DemoTable())
	l := NewCachedLoader(next, cache, CachedOptions{OfflineFallback: true})
	_, err := l.Fetch(context.Background(), "XYZ")
	assert.ErrorIs(t, err, ErrUnknownCurrency)
}

func TestCachedLoader_SaveFailureIsNotFatal(t *testing.T) {
	cache := newMemCache()
	cache.saveErr = errors.New("disk full")
	l := NewCachedLoader(NewStaticLoader(DemoTable()), cache, CachedOptions{})
	tbl, err := l.Fetch(context.Background(), "GBP")
	require.NoError(t, err)
	assert.Equal(t, "GBP", tbl.Base)
}
