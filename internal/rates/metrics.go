// Copyright (c) 2026 fxview Team
// fxview - terminal currency converter
// This source code is licensed under the MIT license found in the LICENSE file.

package rates

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the prometheus collectors for rate loading.
type Metrics struct {
	Fetches   *prometheus.CounterVec
	Duration  *prometheus.HistogramVec
	CacheHits *prometheus.CounterVec
}

// NewMetrics registers the rate collectors on reg. Pass a fresh
// prometheus.NewRegistry() in tests to avoid duplicate registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Fetches: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxview_rate_fetch_total",
				Help: "Rate table fetches against the remote feed by base and result.",
			},
			[]string{"base", "result"},
		),
		Duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fxview_rate_fetch_duration_seconds",
				Help:    "Latency of rate table fetches against the remote feed.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"base"},
		),
		CacheHits: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxview_rate_cache_hits_total",
				Help: "Rate tables served from the local cache, by kind (fresh, fallback).",
			},
			[]string{"kind"},
		),
	}
}

func (m *Metrics) observeFetch(base, result string, seconds float64) {
	if m == nil {
		return
	}
	m.Fetches.WithLabelValues(base, result).Inc()
	m.Duration.WithLabelValues(base).Observe(seconds)
}

func (m *Metrics) cacheHit(kind string) {
	if m == nil {
		return
	}
	m.CacheHits.WithLabelValues(kind).Inc()
}
