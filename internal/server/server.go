// Copyright (c) 2026 fxview Team
// fxview - terminal currency converter
// This source code is licensed under the MIT license found in the LICENSE file.

// Package server exposes the converter as a small headless HTTP API for
// scripts and dashboards.
package server // import "github.com/toeirei/fxview/internal/server"

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/toeirei/fxview/internal/converter"
	"github.com/toeirei/fxview/internal/logging"
	"github.com/toeirei/fxview/internal/model"
	"github.com/toeirei/fxview/internal/money"
	"github.com/toeirei/fxview/internal/rates"
)

// Response is the envelope for every JSON answer.
type Response struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ConvertedRow is one target of a /api/convert answer.
type ConvertedRow struct {
	Currency  string  `json:"currency"`
	Rate      float64 `json:"rate"`
	Amount    float64 `json:"amount"`
	Known     bool    `json:"known"`
	Formatted string  `json:"formatted,omitempty"`
}

// Conversion is the payload of /api/convert.
type Conversion struct {
	Base   string         `json:"base"`
	Amount float64        `json:"amount"`
	Date   string         `json:"date,omitempty"`
	Stale  bool           `json:"stale,omitempty"`
	Rows   []ConvertedRow `json:"rows"`
}

// Options configures the HTTP API.
type Options struct {
	Loader rates.Loader
	// Gatherer backs /metrics; nil uses the default prometheus registry.
	Gatherer prometheus.Gatherer
	Lang     string
}

// New builds the fiber app with all routes registered.
func New(opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "fxview",
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			status := ErrorToStatusCode(err)
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
			return ErrorResponseJSON(c, status, err.Error())
		},
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(accessLog)

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	h := &handlers{loader: opts.Loader, format: money.NewFormatter(opts.Lang)}

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(Response{Status: fiber.StatusOK, Message: "ok"})
	})
	api := app.Group("/api")
	api.Get("/rates/:base", h.rates)
	api.Get("/convert", h.convert)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	return app
}

// ErrorResponseJSON writes the error envelope.
func ErrorResponseJSON(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(Response{Status: status, Message: message})
}

// ErrorToStatusCode maps loader and parsing errors to HTTP status codes.
func ErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, rates.ErrUnknownCurrency):
		return fiber.StatusNotFound
	case errors.Is(err, money.ErrInvalidAmount):
		return fiber.StatusBadRequest
	case errors.Is(err, rates.ErrUpstream):
		return fiber.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusInternalServerError
	}
}

func accessLog(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	status := c.Response().StatusCode()
	if err != nil {
		status = ErrorToStatusCode(err)
	}
	logging.Debugf("http: %s %s -> %d in %s (request_id=%s)",
		c.Method(), c.OriginalURL(), status, time.Since(start), c.GetRespHeader(fiber.HeaderXRequestID))
	return err
}

type handlers struct {
	loader rates.Loader
	format *money.Formatter
}

func (h *handlers) rates(c *fiber.Ctx) error {
	base := model.NormalizeCode(c.Params("base"))
	t, err := h.loader.Fetch(c.UserContext(), base)
	if err != nil {
		return err
	}
	return c.JSON(Response{Status: fiber.StatusOK, Message: "ok", Data: t})
}

// convert runs one conversion through the same state machine as the TUI:
// mount, apply the fetched table, add each target.
func (h *handlers) convert(c *fiber.Ctx) error {
	base := c.Query("base", model.DefaultBaseCurrency)
	amount := 1.0
	if raw := c.Query("amount"); raw != "" {
		v, err := money.ParseAmount(raw)
		if err != nil {
			return err
		}
		amount = v
	}

	st := converter.New(base, amount)
	req := st.Mount()
	t, err := h.loader.Fetch(c.UserContext(), req.Base)
	if st.ApplyRateTable(req.Token, t, err) == converter.Failed {
		return st.Err
	}
	if t == nil {
		return fmt.Errorf("%w: no table for %s", rates.ErrUpstream, req.Base)
	}

	targets := strings.Split(c.Query("to"), ",")
	if c.Query("to") == "" {
		targets = t.CurrencyList
	}
	for _, code := range targets {
		st.AddTarget(code)
	}

	out := Conversion{Base: st.BaseCurrency, Amount: st.BaseAmount, Date: t.Date, Stale: t.Stale}
	out.Rows = make([]ConvertedRow, 0, len(st.Displayed))
	for _, r := range st.Rows() {
		row := ConvertedRow{Currency: r.Currency, Rate: r.Rate, Amount: r.Amount, Known: r.Known}
		if r.Known {
			row.Formatted = h.format.Amount(r.Currency, r.Amount)
		}
		out.Rows = append(out.Rows, row)
	}
	return c.JSON(Response{Status: fiber.StatusOK, Message: "ok", Data: out})
}

// ListenAndServe serves app on addr until ctx is cancelled, then shuts down
// gracefully.
func ListenAndServe(ctx context.Context, app *fiber.App, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		logging.Infof("serving on %s", addr)
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	}
}
