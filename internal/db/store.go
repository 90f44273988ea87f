// Copyright (c) 2026 fxview Team
// fxview - terminal currency converter
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/toeirei/fxview/internal/model"
	"github.com/uptrace/bun"
)

// Store defines the persistence operations fxview needs. It is implemented by
// BunStore for every supported backend.
type Store interface {
	// Rate table cache
	SaveRateTable(ctx context.Context, t *model.RateTable) error
	GetRateTable(ctx context.Context, base string) (*model.RateTable, error)
	ListRateTables(ctx context.Context) ([]*model.RateTable, error)
	DeleteRateTable(ctx context.Context, base string) error

	// Sessions
	SaveSession(ctx context.Context, s model.Session) error
	GetSession(ctx context.Context, name string) (*model.Session, error)

	Type() string
	Close() error
}

// RateTableModel is the Bun mapping of a cached rate table. Rates are kept as
// a JSON payload; the currency list is derived from it on load.
type RateTableModel struct {
	bun.BaseModel `bun:"table:rate_tables"`
	Base          string    `bun:"base,pk"`
	Date          string    `bun:"date"`
	FetchedAt     time.Time `bun:"fetched_at"`
	Payload       string    `bun:"payload"`
}

// SessionModel is the Bun mapping of a saved converter session.
type SessionModel struct {
	bun.BaseModel `bun:"table:sessions"`
	Name          string    `bun:"name,pk"`
	BaseCurrency  string    `bun:"base_currency"`
	BaseAmount    float64   `bun:"base_amount"`
	Targets       string    `bun:"targets"`
	UpdatedAt     time.Time `bun:"updated_at"`
}

// BunStore is the Bun-backed Store used for all dialects.
type BunStore struct {
	bun    *bun.DB
	dbType string
}

var _ Store = (*BunStore)(nil)

// BunDB exposes the underlying Bun handle for maintenance and tests.
func (s *BunStore) BunDB() *bun.DB { return s.bun }

// Type returns the configured database type.
func (s *BunStore) Type() string { return s.dbType }

// Close closes the underlying connection pool.
func (s *BunStore) Close() error { return s.bun.Close() }

// SaveRateTable replaces the cached table for t.Base.
func (s *BunStore) SaveRateTable(ctx context.Context, t *model.RateTable) error {
	if t == nil || t.Base == "" {
		return errors.New("cannot cache a rate table without base")
	}
	payload, err := json.Marshal(t.Rates)
	if err != nil {
		return fmt.Errorf("failed to encode rates for %s: %w", t.Base, err)
	}
	row := &RateTableModel{
		Base:      t.Base,
		Date:      t.Date,
		FetchedAt: t.FetchedAt.UTC(),
		Payload:   string(payload),
	}
	// Delete-then-insert keeps the upsert portable across the three dialects.
	return s.bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*RateTableModel)(nil)).Where("base = ?", t.Base).Exec(ctx); err != nil {
			return fmt.Errorf("failed to clear cached table %s: %w", t.Base, err)
		}
		if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
			return fmt.Errorf("failed to cache table %s: %w", t.Base, MapDBError(err))
		}
		dbLogf("db: cached %d rates for %s", len(t.Rates), t.Base)
		return nil
	})
}

// GetRateTable loads the cached table for base, or ErrNotFound.
func (s *BunStore) GetRateTable(ctx context.Context, base string) (*model.RateTable, error) {
	var row RateTableModel
	err := s.bun.NewSelect().Model(&row).Where("base = ?", model.NormalizeCode(base)).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rowToTable(row)
}

// ListRateTables returns every cached table ordered by base.
func (s *BunStore) ListRateTables(ctx context.Context) ([]*model.RateTable, error) {
	var rows []RateTableModel
	if err := s.bun.NewSelect().Model(&rows).Order("base ASC").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]*model.RateTable, 0, len(rows))
	for _, r := range rows {
		t, err := rowToTable(r)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// DeleteRateTable removes the cached table for base. Missing rows are not an error.
func (s *BunStore) DeleteRateTable(ctx context.Context, base string) error {
	_, err := s.bun.NewDelete().Model((*RateTableModel)(nil)).Where("base = ?", model.NormalizeCode(base)).Exec(ctx)
	return err
}

func rowToTable(r RateTableModel) (*model.RateTable, error) {
	var rates map[string]float64
	if err := json.Unmarshal([]byte(r.Payload), &rates); err != nil {
		return nil, fmt.Errorf("corrupt cached rates for %s: %w", r.Base, err)
	}
	return model.NewRateTable(r.Base, r.Date, rates, r.FetchedAt), nil
}

// SaveSession stores sess under sess.Name, replacing any previous one.
func (s *BunStore) SaveSession(ctx context.Context, sess model.Session) error {
	if sess.Name == "" {
		return errors.New("session name is required")
	}
	updated := sess.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}
	row := &SessionModel{
		Name:         sess.Name,
		BaseCurrency: sess.BaseCurrency,
		BaseAmount:   sess.BaseAmount,
		Targets:      strings.Join(sess.Targets, ","),
		UpdatedAt:    updated.UTC(),
	}
	return s.bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*SessionModel)(nil)).Where("name = ?", sess.Name).Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
			return MapDBError(err)
		}
		return nil
	})
}

// GetSession loads the session called name, or ErrNotFound.
func (s *BunStore) GetSession(ctx context.Context, name string) (*model.Session, error) {
	var row SessionModel
	err := s.bun.NewSelect().Model(&row).Where("name = ?", name).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var targets []string
	for _, code := range strings.Split(row.Targets, ",") {
		if code = strings.TrimSpace(code); code != "" {
			targets = append(targets, code)
		}
	}
	return &model.Session{
		Name:         row.Name,
		BaseCurrency: row.BaseCurrency,
		BaseAmount:   row.BaseAmount,
		Targets:      targets,
		UpdatedAt:    row.UpdatedAt,
	}, nil
}
