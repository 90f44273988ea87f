// Copyright (c) 2026 fxview Team
// fxview - terminal currency converter
// This source code is licensed under the MIT license found in the LICENSE file.

package rates

import (
	"context"
	"errors"
	"time"

	"github.com/toeirei/fxview/internal/logging"
	"github.com/toeirei/fxview/internal/model"
)

// CachedOptions configures a CachedLoader.
type CachedOptions struct {
	// TTL serves cached tables younger than this without asking the feed.
	// Zero always asks the feed.
	TTL time.Duration
	// OfflineFallback serves the last cached table (flagged Stale) when the
	// feed fails.
	OfflineFallback bool
	Metrics         *Metrics
}

// CachedLoader wraps a Loader with a persistent cache.
type CachedLoader struct {
	next  Loader
	cache Cache
	opts  CachedOptions
	now   func() time.Time
}

var _ Loader = (*CachedLoader)(nil)

// NewCachedLoader returns a loader that consults cache around next.
func NewCachedLoader(next Loader, cache Cache, opts CachedOptions) *CachedLoader {
	return &CachedLoader{next: next, cache: cache, opts: opts, now: time.Now}
}

// Fetch serves a fresh cached table when one exists, otherwise asks the
// wrapped loader and caches the result. Feed failures fall back to the
// cached table when configured; unknown currencies and cancellations never do.
func (c *CachedLoader) Fetch(ctx context.Context, base string) (*model.RateTable, error) {
	base = model.NormalizeCode(base)

	var cached *model.RateTable
	if c.cache != nil {
		t, err := c.cache.GetRateTable(ctx, base)
		if err == nil {
			cached = t
		}
	}

	if cached != nil && c.opts.TTL > 0 && c.now().Sub(cached.FetchedAt) < c.opts.TTL {
		c.opts.Metrics.cacheHit("fresh")
		logging.Debugf("rates: serving cached %s table from %s", base, cached.FetchedAt.Format(time.RFC3339))
		return cached, nil
	}

	t, err := c.next.Fetch(ctx, base)
	if err == nil {
		if c.cache != nil {
			if serr := c.cache.SaveRateTable(ctx, t); serr != nil {
				logging.Warnf("rates: could not cache %s table: %v", base, serr)
			}
		}
		return t, nil
	}

	if cached != nil && c.opts.OfflineFallback && ctx.Err() == nil && !errors.Is(err, ErrUnknownCurrency) {
		c.opts.Metrics.cacheHit("fallback")
		logging.Warnf("rates: feed failed for %s, using cached table from %s: %v", base, cached.FetchedAt.Format(time.RFC3339), err)
		return cached.WithStale(), nil
	}
	return nil, err
}
