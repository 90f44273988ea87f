// Copyright (c) 2026 fxview Team
// fxview - terminal currency converter
// This source code is licensed under the MIT license found in the LICENSE file.

// Package rates loads exchange-rate tables. A Loader turns a base currency
// code into a model.RateTable; implementations talk to a remote feed, wrap
// another loader with a local cache, or serve fixed data.
package rates

import (
	"context"
	"errors"

	"github.com/toeirei/fxview/internal/model"
)

var (
	// ErrUnknownCurrency is returned when the feed does not support the base.
	ErrUnknownCurrency = errors.New("unknown currency")
	// ErrUpstream is returned when the feed answered with an error or garbage.
	ErrUpstream = errors.New("rate feed error")
)

// Loader fetches the rate table for a base currency.
type Loader interface {
	Fetch(ctx context.Context, base string) (*model.RateTable, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, base string) (*model.RateTable, error)

// Fetch calls f.
func (f LoaderFunc) Fetch(ctx context.Context, base string) (*model.RateTable, error) {
	return f(ctx, base)
}

// Cache is the subset of the store a CachedLoader needs.
type Cache interface {
	SaveRateTable(ctx context.Context, t *model.RateTable) error
	GetRateTable(ctx context.Context, base string) (*model.RateTable, error)
}
