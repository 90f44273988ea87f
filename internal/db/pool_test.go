// Copyright (c) 2026 fxview Team
// fxview - terminal currency converter
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

// TestDBPoolDefaultsSQLite verifies the connection pool limits NewStoreFromDSN
// applies: the default for file databases, the env override, and the single
// connection pin for in-memory databases.
func TestDBPoolDefaultsSQLite(t *testing.T) {
	cases := []struct {
		name string
		env  string
		dsn  string
		want int
	}{
		{"file default", "", filepath.Join(t.TempDir(), "a.db"), 4},
		{"env override", "7", filepath.Join(t.TempDir(), "b.db"), 7},
		{"memory pinned", "7", ":memory:", 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("FXVIEW_DB_MAX_OPEN_CONNS", tc.env)
			s, err := NewStoreFromDSN("sqlite", tc.dsn)
			if err != nil {
				t.Fatalf("NewStoreFromDSN returned error: %v", err)
			}
			bs, ok := s.(*BunStore)
			if !ok {
				t.Fatalf("expected *BunStore, got %T", s)
			}
			defer func() { _ = bs.Close() }()
			if got := bs.BunDB().DB.Stats().MaxOpenConnections; got != tc.want {
				t.Fatalf("MaxOpenConnections = %d; want %d", got, tc.want)
			}
		})
	}
}

func TestNewStoreFromDSN_UnsupportedType(t *testing.T) {
	if _, err := NewStoreFromDSN("oracle", "x"); err == nil {
		t.Fatal("expected error for unsupported database type")
	}
	if _, err := New("sqlite", ""); err != ErrEmptyDSN {
		t.Fatalf("expected ErrEmptyDSN, got %v", err)
	}
}

func TestNewStoreFromDSN_OpenFailure(t *testing.T) {
	orig := sqlOpenFunc
	defer func() { sqlOpenFunc = orig }()

	boom := errors.New("driver unavailable")
	var gotDriver string
	sqlOpenFunc = func(driverName, dsn string) (*sql.DB, error) {
		gotDriver = driverName
		return nil, boom
	}

	_, err := NewStoreFromDSN("sqlite", ":memory:")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped open error, got %v", err)
	}
	if !strings.Contains(err.Error(), "failed to open database") {
		t.Fatalf("unexpected error text: %v", err)
	}
	if gotDriver != "sqlite" {
		t.Fatalf("expected sqlite driver, got %q", gotDriver)
	}
}
