// Copyright (c) 2026 fxview Team
// fxview - terminal currency converter
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigInit_WritesResolvedConfig(t *testing.T) {
	dsn := isolate(t)
	path := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "fxview", "fxview.yaml")

	out, err := runCLI(t, "config", "init", "--offline", "--db-dsn", dsn, "--base", "GBP")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, "Wrote configuration to "+path) {
		t.Fatalf("unexpected output: %q", out)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600 permissions, got %v", info.Mode().Perm())
	}

	// The written file is picked up by later runs.
	out, err = runCLI(t, "rates", "--offline")
	if err != nil {
		t.Fatalf("rates with written config: %v", err)
	}
	if !strings.Contains(out, "Rates for 1 GBP") {
		t.Fatalf("expected GBP from the written config:\n%s", out)
	}
}

func TestConfigInit_RefusesOverwriteWithoutForce(t *testing.T) {
	dsn := isolate(t)
	if _, err := runCLI(t, "config", "init", "--offline", "--db-dsn", dsn); err != nil {
		t.Fatalf("first init: %v", err)
	}
	_, err := runCLI(t, "config", "init", "--offline", "--db-dsn", dsn)
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected overwrite refusal, got %v", err)
	}
	if _, err := runCLI(t, "config", "init", "--offline", "--db-dsn", dsn, "--force"); err != nil {
		t.Fatalf("init --force: %v", err)
	}
}
