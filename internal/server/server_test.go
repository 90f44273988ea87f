// Copyright (c) 2026 fxview Team
// fxview - terminal currency converter
// This source code is licensed under the MIT license found in the LICENSE file.

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toeirei/fxview/internal/model"
	"github.com/toeirei/fxview/internal/rates"
)

func anchor() *model.RateTable {
	return model.NewRateTable("USD", "2024-05-03", map[string]float64{"EUR": 0.9, "GBP": 0.8}, time.Now())
}

func doJSON(t *testing.T, opts Options, target string) (int, map[string]any) {
	t.Helper()
	app := New(opts)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(body, &out), "body: %s", body)
	return resp.StatusCode, out
}

func TestHealthz(t *testing.T) {
	status, body := doJSON(t, Options{Loader: rates.NewStaticLoader(anchor())}, "/healthz")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["message"])
}

func TestRates(t *testing.T) {
	status, body := doJSON(t, Options{Loader: rates.NewStaticLoader(anchor())}, "/api/rates/eur")
	require.Equal(t, http.StatusOK, status)

	data := body["data"].(map[string]any)
	assert.Equal(t, "EUR", data["base"])
	rs := data["rates"].(map[string]any)
	assert.InDelta(t, 1.0, rs["EUR"], 1e-9)
	assert.InDelta(t, 1/0.9, rs["USD"], 1e-9)
}

func TestRates_UnknownCurrencyIs404(t *testing.T) {
	status, body := doJSON(t, Options{Loader: rates.NewStaticLoader(anchor())}, "/api/rates/XXX")
	assert.Equal(t, http.StatusNotFound, status)
	assert.EqualValues(t, http.StatusNotFound, body["status"])
	assert.Contains(t, body["message"], "unknown currency")
}

func TestConvert(t *testing.T) {
	status, body := doJSON(t, Options{Loader: rates.NewStaticLoader(anchor())}, "/api/convert?base=USD&amount=10&to=EUR,gbp,EUR,XAU")
	require.Equal(t, http.StatusOK, status)

	data := body["data"].(map[string]any)
	assert.Equal(t, "USD", data["base"])
	assert.InDelta(t, 10, data["amount"], 1e-9)

	rows := data["rows"].([]any)
	require.Len(t, rows, 3, "duplicates are dropped")
	eur := rows[0].(map[string]any)
	assert.Equal(t, "EUR", eur["currency"])
	assert.InDelta(t, 9, eur["amount"], 1e-9)
	assert.Contains(t, eur["formatted"], "9.00")
	gbp := rows[1].(map[string]any)
	assert.Equal(t, "GBP", gbp["currency"])
	assert.InDelta(t, 8, gbp["amount"], 1e-9)
	xau := rows[2].(map[string]any)
	assert.Equal(t, false, xau["known"])
}

func TestConvert_DefaultsToAllCurrencies(t *testing.T) {
	status, body := doJSON(t, Options{Loader: rates.NewStaticLoader(anchor())}, "/api/convert")
	require.Equal(t, http.StatusOK, status)
	rows := body["data"].(map[string]any)["rows"].([]any)
	assert.Len(t, rows, 3)
}

func TestConvert_Errors(t *testing.T) {
	failing := rates.NewStaticLoader(anchor())
	failing.SetError(fmt.Errorf("%w: status 503", rates.ErrUpstream))

	cases := []struct {
		name   string
		loader rates.Loader
		target string
		want   int
	}{
		{"bad amount", rates.NewStaticLoader(anchor()), "/api/convert?amount=abc", http.StatusBadRequest},
		{"unknown base", rates.NewStaticLoader(anchor()), "/api/convert?base=ZZZ", http.StatusNotFound},
		{"upstream", failing, "/api/convert?base=USD", http.StatusBadGateway},
		{"timeout", rates.LoaderFunc(func(context.Context, string) (*model.RateTable, error) {
			return nil, context.DeadlineExceeded
		}), "/api/convert", http.StatusGatewayTimeout},
		{"other", rates.LoaderFunc(func(context.Context, string) (*model.RateTable, error) {
			return nil, errors.New("boom")
		}), "/api/convert", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := doJSON(t, Options{Loader: tc.loader}, tc.target)
			assert.Equal(t, tc.want, status)
			assert.EqualValues(t, tc.want, body["status"])
		})
	}
}

func TestUnknownRouteIs404(t *testing.T) {
	status, _ := doJSON(t, Options{Loader: rates.NewStaticLoader(anchor())}, "/nope")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := rates.NewMetrics(reg)
	m.CacheHits.WithLabelValues("fresh").Inc()

	app := New(Options{Loader: rates.NewStaticLoader(anchor()), Gatherer: reg})
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `fxview_rate_cache_hits_total{kind="fresh"} 1`)
}

func TestRequestIDHeader(t *testing.T) {
	app := New(Options{Loader: rates.NewStaticLoader(anchor())})
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestListenAndServe_StopsOnCancel(t *testing.T) {
	app := New(Options{Loader: rates.NewStaticLoader(anchor())})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ListenAndServe(ctx, app, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
