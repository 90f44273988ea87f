// Copyright (c) 2026 fxview Team
// fxview - terminal currency converter
// This source code is licensed under the MIT license found in the LICENSE file.

package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/toeirei/fxview/internal/logging"
	"github.com/toeirei/fxview/internal/model"
	"golang.org/x/sync/singleflight"
)

// DefaultURL is the feed queried when no api.url is configured.
const DefaultURL = "https://api.frankfurter.app"

// HTTPOptions configures an HTTPLoader.
type HTTPOptions struct {
	// URL is the feed root; the loader requests {URL}/latest?base=XXX.
	URL string
	// Key is sent as the access_key query parameter when set.
	Key     string
	Timeout time.Duration
	// Client overrides the HTTP client; Timeout is ignored when set.
	Client  *http.Client
	Metrics *Metrics
}

// HTTPLoader fetches rate tables from an exchangeratesapi-style JSON feed.
// Concurrent fetches for the same base share a single request.
type HTTPLoader struct {
	baseURL string
	apiKey  string
	client  *http.Client
	metrics *Metrics
	group   singleflight.Group
	now     func() time.Time
}

var _ Loader = (*HTTPLoader)(nil)

// NewHTTPLoader returns a loader for opts.URL (DefaultURL when empty).
func NewHTTPLoader(opts HTTPOptions) *HTTPLoader {
	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	base := strings.TrimRight(opts.URL, "/")
	if base == "" {
		base = DefaultURL
	}
	return &HTTPLoader{
		baseURL: base,
		apiKey:  opts.Key,
		client:  client,
		metrics: opts.Metrics,
		now:     time.Now,
	}
}

// feedResponse covers the two response shapes seen in the wild:
// exchangeratesapi/frankfurter ({base, date, rates}) and exchangerate-api v6
// ({result, base_code, conversion_rates}).
type feedResponse struct {
	Base    string             `json:"base"`
	Date    string             `json:"date"`
	Rates   map[string]float64 `json:"rates"`
	Success *bool              `json:"success"`
	Error   json.RawMessage    `json:"error"`

	Result          string             `json:"result"`
	BaseCode        string             `json:"base_code"`
	ConversionRates map[string]float64 `json:"conversion_rates"`
	ErrorType       string             `json:"error-type"`
	LastUpdateUTC   string             `json:"time_last_update_utc"`
}

// Fetch requests the table for base. Callers waiting on a shared request
// can still give up through ctx.
func (l *HTTPLoader) Fetch(ctx context.Context, base string) (*model.RateTable, error) {
	base = model.NormalizeCode(base)
	if base == "" {
		return nil, fmt.Errorf("%w: empty base", ErrUnknownCurrency)
	}
	ch := l.group.DoChan(base, func() (any, error) {
		return l.fetch(context.WithoutCancel(ctx), base)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*model.RateTable), nil
	}
}

func (l *HTTPLoader) fetch(ctx context.Context, base string) (*model.RateTable, error) {
	start := l.now()
	t, err := l.do(ctx, base)
	result := "ok"
	if err != nil {
		result = "error"
	}
	l.metrics.observeFetch(base, result, l.now().Sub(start).Seconds())
	return t, err
}

func (l *HTTPLoader) do(ctx context.Context, base string) (*model.RateTable, error) {
	q := url.Values{}
	q.Set("base", base)
	if l.apiKey != "" {
		q.Set("access_key", l.apiKey)
	}
	endpoint := l.baseURL + "/latest?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	logging.Debugf("rates: GET %s/latest base=%s request_id=%s", l.baseURL, base, reqID)

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rates for %s: %w", base, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read rates for %s: %w", base, err)
	}

	var fr feedResponse
	decodeErr := json.Unmarshal(body, &fr)

	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(body))
		if decodeErr == nil {
			if m := fr.errorMessage(); m != "" {
				msg = m
			}
		}
		if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusUnprocessableEntity || looksUnsupported(msg) {
			return nil, fmt.Errorf("%w: %s (%s)", ErrUnknownCurrency, base, msg)
		}
		return nil, fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, msg)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrUpstream, decodeErr)
	}
	if m := fr.errorMessage(); m != "" {
		if looksUnsupported(m) {
			return nil, fmt.Errorf("%w: %s (%s)", ErrUnknownCurrency, base, m)
		}
		return nil, fmt.Errorf("%w: %s", ErrUpstream, m)
	}

	rates, respBase, date := fr.Rates, fr.Base, fr.Date
	if len(rates) == 0 && len(fr.ConversionRates) > 0 {
		rates, respBase, date = fr.ConversionRates, fr.BaseCode, fr.LastUpdateUTC
	}
	if len(rates) == 0 {
		return nil, fmt.Errorf("%w: empty rate table for %s", ErrUpstream, base)
	}
	if respBase != "" && model.NormalizeCode(respBase) != base {
		return nil, fmt.Errorf("%w: asked for %s, feed answered %s", ErrUpstream, base, respBase)
	}

	t := model.NewRateTable(base, date, rates, l.now())
	logging.Debugf("rates: loaded %d rates for %s (date %s)", len(t.Rates), base, date)
	return t, nil
}

func (fr feedResponse) errorMessage() string {
	if fr.Result != "" && fr.Result != "success" {
		if fr.ErrorType != "" {
			return fr.ErrorType
		}
		return "result=" + fr.Result
	}
	if len(fr.Error) == 0 || string(fr.Error) == "null" {
		if fr.Success != nil && !*fr.Success {
			return "request was not successful"
		}
		return ""
	}
	var s string
	if err := json.Unmarshal(fr.Error, &s); err == nil {
		return s
	}
	var obj struct {
		Code any    `json:"code"`
		Type string `json:"type"`
		Info string `json:"info"`
	}
	if err := json.Unmarshal(fr.Error, &obj); err == nil {
		if obj.Info != "" {
			return obj.Info
		}
		if obj.Type != "" {
			return obj.Type
		}
	}
	return string(fr.Error)
}

func looksUnsupported(msg string) bool {
	m := strings.ToLower(msg)
	return strings.Contains(m, "not supported") ||
		strings.Contains(m, "unsupported") ||
		strings.Contains(m, "invalid_base") ||
		strings.Contains(m, "invalid base") ||
		strings.Contains(m, "unsupported-code") ||
		strings.Contains(m, "not found")
}
