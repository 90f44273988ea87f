// Copyright (c) 2026 fxview Team
// fxview - terminal currency converter
// This source code is licensed under the MIT license found in the LICENSE file.

package db

// New initializes and returns a bun-backed Store for the given dbType and dsn.
// It is a small convenience wrapper around NewStoreFromDSN that also
// rejects an empty DSN early with a readable error.
func New(dbType, dsn string) (Store, error) {
	if dsn == "" {
		return nil, ErrEmptyDSN
	}
	return NewStoreFromDSN(dbType, dsn)
}
