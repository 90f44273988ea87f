// Copyright (c) 2026 fxview Team
// fxview - terminal currency converter
// This source code is licensed under the MIT license found in the LICENSE file.

// Package db contains the data-access layer used by fxview.
//
// A Store caches the last rate table fetched for every base currency and
// keeps named converter sessions so the TUI can come back to what the user
// had on screen. All backends share one bun-based implementation; the
// dialect is picked from database.type.
//
// Testing notes
//   - Prefer `db.New("sqlite", ":memory:")` in tests that need real DB
//     semantics and migrations.
package db
