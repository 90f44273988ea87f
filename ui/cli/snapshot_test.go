// Copyright (c) 2026 fxview Team
// fxview - terminal currency converter
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/toeirei/fxview/internal/db"
	"github.com/toeirei/fxview/internal/model"
	"github.com/toeirei/fxview/internal/rates"
)

func TestCompressedSnapshot_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.fxv")
	fetched := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	in := &Snapshot{
		Version:    SnapshotVersion,
		ExportedAt: fetched,
		Tables: []*model.RateTable{
			model.NewRateTable("USD", "2026-03-01", map[string]float64{"EUR": 0.9}, fetched),
		},
		Session: &model.Session{Name: "default", BaseCurrency: "USD", BaseAmount: 5, Targets: []string{"EUR"}},
	}
	if err := writeCompressedSnapshot(path, in); err != nil {
		t.Fatalf("write: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600 permissions, got %v", info.Mode().Perm())
	}

	out, err := readCompressedSnapshot(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(out.Tables) != 1 || out.Tables[0].Base != "USD" || out.Tables[0].Rates["EUR"] != 0.9 {
		t.Fatalf("unexpected tables: %+v", out.Tables)
	}
	if !out.Tables[0].FetchedAt.Equal(fetched) {
		t.Fatalf("fetched_at not preserved: %v", out.Tables[0].FetchedAt)
	}
	if out.Session == nil || out.Session.BaseAmount != 5 || out.Session.Targets[0] != "EUR" {
		t.Fatalf("unexpected session: %+v", out.Session)
	}
}

// writeRaw compresses an arbitrary JSON document, bypassing Snapshot.
func writeRaw(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "raw.fxv")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close() //nolint:errcheck
	zw, err := zstd.NewWriter(f)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := zw.Write([]byte(doc)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadCompressedSnapshot_NormalizesTables(t *testing.T) {
	doc, _ := json.Marshal(map[string]any{
		"version": 1,
		"tables": []map[string]any{
			{"base": "eur", "rates": map[string]float64{"usd": 1.1}},
			{"rates": map[string]float64{"GBP": 0.8}},
		},
	})
	snap, err := readCompressedSnapshot(writeRaw(t, string(doc)))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(snap.Tables) != 1 {
		t.Fatalf("expected the table without base to be skipped, got %d", len(snap.Tables))
	}
	tbl := snap.Tables[0]
	if tbl.Base != "EUR" || !tbl.Has("USD") || !tbl.Has("EUR") {
		t.Fatalf("expected normalized table, got %+v", tbl)
	}
}

func TestReadCompressedSnapshot_Rejects(t *testing.T) {
	if _, err := readCompressedSnapshot(writeRaw(t, `{"version": 99}`)); err == nil || !strings.Contains(err.Error(), "newer") {
		t.Fatalf("expected version error, got %v", err)
	}
	if _, err := readCompressedSnapshot(writeRaw(t, `not json`)); err == nil {
		t.Fatal("expected decode error")
	}
	if _, err := readCompressedSnapshot(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected open error")
	}
}

func TestExportImport_Commands(t *testing.T) {
	srcDSN := isolate(t)
	withRemote(t, rates.NewStaticLoader(rates.DemoTable()))

	// Populate the cache through the normal loader path, then add a session.
	if _, err := runCLI(t, "rates", "EUR", "--db-dsn", srcDSN); err != nil {
		t.Fatalf("seed: %v", err)
	}
	st, err := db.New("sqlite", srcDSN)
	if err != nil {
		t.Fatalf("open source db: %v", err)
	}
	sess := model.Session{Name: "travel", BaseCurrency: "EUR", BaseAmount: 42, Targets: []string{"CHF", "JPY"}}
	if err := st.SaveSession(context.Background(), sess); err != nil {
		t.Fatalf("save session: %v", err)
	}
	_ = st.Close()

	file := filepath.Join(t.TempDir(), "cache.fxv")
	out, err := runCLI(t, "export", file, "--session", "travel", "--db-dsn", srcDSN)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(out, "Exported 1 rate table(s)") {
		t.Fatalf("unexpected export output: %q", out)
	}

	dstDSN := filepath.Join(t.TempDir(), "other.db")
	out, err = runCLI(t, "import", file, "--offline", "--db-dsn", dstDSN)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out, "Imported 1 rate table(s)") {
		t.Fatalf("unexpected import output: %q", out)
	}

	dst, err := db.New("sqlite", dstDSN)
	if err != nil {
		t.Fatalf("open target db: %v", err)
	}
	defer dst.Close() //nolint:errcheck
	tbl, err := dst.GetRateTable(context.Background(), "EUR")
	if err != nil {
		t.Fatalf("imported table missing: %v", err)
	}
	if !tbl.Has("USD") {
		t.Fatalf("imported table lacks USD: %+v", tbl.CurrencyList)
	}
	got, err := dst.GetSession(context.Background(), "travel")
	if err != nil {
		t.Fatalf("imported session missing: %v", err)
	}
	if got.BaseAmount != 42 || strings.Join(got.Targets, ",") != "CHF,JPY" {
		t.Fatalf("unexpected imported session: %+v", got)
	}
}

func TestExport_WithoutSession(t *testing.T) {
	dsn := isolate(t)
	file := filepath.Join(t.TempDir(), "empty.fxv")
	if _, err := runCLI(t, "export", file, "--offline", "--db-dsn", dsn); err != nil {
		t.Fatalf("export: %v", err)
	}
	snap, err := readCompressedSnapshot(file)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if snap.Session != nil || len(snap.Tables) != 0 {
		t.Fatalf("expected an empty snapshot, got %+v", snap)
	}
}
