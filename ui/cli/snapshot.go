// Copyright (c) 2026 fxview Team
// fxview - terminal currency converter
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/cobra"
	"github.com/toeirei/fxview/internal/db"
	"github.com/toeirei/fxview/internal/i18n"
	"github.com/toeirei/fxview/internal/logging"
	"github.com/toeirei/fxview/internal/model"
)

// SnapshotVersion is bumped whenever the snapshot layout changes.
const SnapshotVersion = 1

// Snapshot is the exported form of the local cache: every cached rate table
// plus, optionally, one saved converter session.
type Snapshot struct {
	Version    int                `json:"version"`
	ExportedAt time.Time          `json:"exported_at"`
	Tables     []*model.RateTable `json:"tables"`
	Session    *model.Session     `json:"session,omitempty"`
}

func newExportCmd(services func() *appServices, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "export FILE",
		Short: "Export cached rate tables to a zstd-compressed snapshot",
		Long: `Writes every cached rate table and the current session to FILE so the
rates can be carried to a machine without network access.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := services()
			ctx := commandContext(cmd)

			tables, err := svc.store.ListRateTables(ctx)
			if err != nil {
				return fmt.Errorf("failed to list cached tables: %w", err)
			}
			snap := &Snapshot{Version: SnapshotVersion, ExportedAt: time.Now().UTC(), Tables: tables}
			sess, err := svc.store.GetSession(ctx, flags.session)
			switch {
			case err == nil:
				snap.Session = sess
			case !errors.Is(err, db.ErrNotFound):
				return fmt.Errorf("failed to load session %q: %w", flags.session, err)
			}

			if err := writeCompressedSnapshot(args[0], snap); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cli.export.done", len(tables), args[0]))
			return nil
		},
	}
}

func newImportCmd(services func() *appServices) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import rate tables from a snapshot",
		Long: `Loads a snapshot written by "fxview export" into the local cache. Existing
tables for the same base are replaced.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := services()
			ctx := commandContext(cmd)

			snap, err := readCompressedSnapshot(args[0])
			if err != nil {
				return err
			}
			for _, t := range snap.Tables {
				if err := svc.store.SaveRateTable(ctx, t); err != nil {
					return fmt.Errorf("failed to import table %s: %w", t.Base, err)
				}
			}
			if snap.Session != nil {
				if err := svc.store.SaveSession(ctx, *snap.Session); err != nil {
					return fmt.Errorf("failed to import session %q: %w", snap.Session.Name, err)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cli.import.done", len(snap.Tables), args[0]))
			return nil
		},
	}
}

// writeCompressedSnapshot encodes snap as indented JSON inside a zstd stream.
func writeCompressedSnapshot(filename string, snap *Snapshot) (err error) {
	file, err := os.OpenFile(filename, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	zw, err := zstd.NewWriter(file)
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}
	enc := json.NewEncoder(zw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		_ = zw.Close()
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return zw.Close()
}

// readCompressedSnapshot is the inverse of writeCompressedSnapshot. Tables
// are rebuilt through model.NewRateTable so a hand-edited file still yields
// normalized codes.
func readCompressedSnapshot(filename string) (*Snapshot, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer file.Close() //nolint:errcheck

	zr, err := zstd.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer zr.Close()

	var snap Snapshot
	if err := json.NewDecoder(zr).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if snap.Version > SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d is newer than supported version %d", snap.Version, SnapshotVersion)
	}
	tables := make([]*model.RateTable, 0, len(snap.Tables))
	for _, t := range snap.Tables {
		if t == nil || t.Base == "" {
			logging.Warnf("snapshot: skipping table without base")
			continue
		}
		tables = append(tables, model.NewRateTable(t.Base, t.Date, t.Rates, t.FetchedAt))
	}
	snap.Tables = tables
	return &snap, nil
}
