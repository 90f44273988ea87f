// Copyright (c) 2026 fxview Team
// fxview - terminal currency converter
// This source code is licensed under the MIT license found in the LICENSE file.

package rates

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toeirei/fxview/internal/model"
)

func TestCross(t *testing.T) {
	anchor := model.NewRateTable("USD", "d", map[string]float64{"EUR": 0.5, "GBP": 0.25}, time.Now())

	eur, err := Cross(anchor, "eur")
	require.NoError(t, err)
	assert.Equal(t, "EUR", eur.Base)
	assert.InDelta(t, 1, eur.Rates["EUR"], 1e-12)
	assert.InDelta(t, 2, eur.Rates["USD"], 1e-12)
	assert.InDelta(t, 0.5, eur.Rates["GBP"], 1e-12)
	assert.Equal(t, anchor.CurrencyList, eur.CurrencyList)

	_, err = Cross(anchor, "JPY")
	assert.ErrorIs(t, err, ErrUnknownCurrency)
}

func TestStaticLoader_ErrorsDelayAndCalls(t *testing.T) {
	l := NewStaticLoader(DemoTable())
	_, err := l.Fetch(context.Background(), "eur")
	require.NoError(t, err)

	boom := errors.New("boom")
	l.SetError(boom)
	_, err = l.Fetch(context.Background(), "USD")
	assert.ErrorIs(t, err, boom)
	l.SetError(nil)

	l.SetDelay(time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = l.Fetch(ctx, "USD")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	assert.Equal(t, []string{"EUR", "USD", "USD"}, l.Calls())
}

func TestDemoTable(t *testing.T) {
	d := DemoTable()
	assert.Equal(t, "USD", d.Base)
	assert.True(t, d.Has("EUR"))
	assert.True(t, d.Has("USD"))
}
