// Copyright (c) 2026 fxview Team
// fxview - terminal currency converter
// This source code is licensed under the MIT license found in the LICENSE file.

package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	cfg "github.com/toeirei/fxview/internal/config"
)

// isolate points the user config dir and cwd at a temp dir so no real
// fxview.yaml or .env leaks into the test.
func isolate(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)
	t.Chdir(tmp)
	return tmp
}

func TestLoadConfig_DefaultsWithoutFile(t *testing.T) {
	isolate(t)

	got, err := cfg.LoadConfig[cfg.Config](nil, cfg.Defaults(), nil)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if got.BaseCurrency != "USD" || got.Database.Type != "sqlite" {
		t.Fatalf("unexpected defaults: %+v", got)
	}
	if got.UI.Debounce != 25*time.Millisecond {
		t.Fatalf("expected 25ms debounce, got %s", got.UI.Debounce)
	}
	if got.Cache.TTL != time.Hour || !got.Cache.OfflineFallback {
		t.Fatalf("unexpected cache defaults: %+v", got.Cache)
	}
	if err := cfg.Validate(&got); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadConfig_ReadsExplicitFile(t *testing.T) {
	tmp := isolate(t)
	yaml := "database:\n  type: postgres\n  dsn: postgresql://user@/db\nlanguage: de\nbase_currency: EUR\ncache:\n  ttl: 5m\n"
	file := filepath.Join(tmp, "cfg.yaml")
	if err := os.WriteFile(file, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	got, err := cfg.LoadConfig[cfg.Config](nil, cfg.Defaults(), &file)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if got.Database.Type != "postgres" {
		t.Fatalf("expected postgres, got %q", got.Database.Type)
	}
	if got.Language != "de" || got.BaseCurrency != "EUR" {
		t.Fatalf("expected de/EUR, got %q/%q", got.Language, got.BaseCurrency)
	}
	if got.Cache.TTL != 5*time.Minute {
		t.Fatalf("expected 5m ttl, got %s", got.Cache.TTL)
	}
	if got.API.URL != "https://api.frankfurter.app" {
		t.Fatalf("default api.url lost: %q", got.API.URL)
	}
}

func TestLoadConfig_BrokenFile(t *testing.T) {
	tmp := isolate(t)
	file := filepath.Join(tmp, "broken.yaml")
	if err := os.WriteFile(file, []byte("database: [unterminated\n"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := cfg.LoadConfig[cfg.Config](nil, cfg.Defaults(), &file); err == nil {
		t.Fatalf("expected parse error for broken yaml")
	}
}

func TestLoadConfig_EnvAndDotEnv(t *testing.T) {
	tmp := isolate(t)
	if err := os.WriteFile(filepath.Join(tmp, ".env"), []byte("FXVIEW_API_KEY=from-dotenv\nFXVIEW_LANGUAGE=fr\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("FXVIEW_LANGUAGE", "de")
	t.Setenv("FXVIEW_DATABASE_TYPE", "mysql")
	t.Cleanup(func() { _ = os.Unsetenv("FXVIEW_API_KEY") })

	got, err := cfg.LoadConfig[cfg.Config](nil, cfg.Defaults(), nil)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if got.API.Key != "from-dotenv" {
		t.Fatalf("expected api key from .env, got %q", got.API.Key)
	}
	if got.Language != "de" {
		t.Fatalf("exported env must win over .env, got %q", got.Language)
	}
	if got.Database.Type != "mysql" {
		t.Fatalf("expected mysql from env, got %q", got.Database.Type)
	}
}

func TestLoadConfig_FlagsWin(t *testing.T) {
	isolate(t)
	t.Setenv("FXVIEW_LANGUAGE", "de")

	cmd := &cobra.Command{}
	cmd.Flags().String("lang", "", "")
	cmd.Flags().String("db-type", "", "")
	cmd.Flags().String("unrelated", "", "")
	if err := cmd.Flags().Parse([]string{"--lang", "en", "--db-type", "postgres"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	got, err := cfg.LoadConfig[cfg.Config](cmd, cfg.Defaults(), nil)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if got.Language != "en" || got.Database.Type != "postgres" {
		t.Fatalf("flags not applied: lang=%q db=%q", got.Language, got.Database.Type)
	}
}

func TestValidate(t *testing.T) {
	isolate(t)
	c, err := cfg.LoadConfig[cfg.Config](nil, cfg.Defaults(), nil)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	bad := c
	bad.Database.Type = "oracle"
	bad.BaseCurrency = "US"
	err = cfg.Validate(&bad)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"Database.Type", "BaseCurrency"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}

	bad = c
	bad.API.URL = "not a url"
	if err := cfg.Validate(&bad); err == nil {
		t.Fatalf("expected api.url validation error")
	}
}

func TestWriteConfigFile_RoundTrip(t *testing.T) {
	isolate(t)

	c := cfg.Config{Language: "de", BaseCurrency: "CHF"}
	c.Database.Type = "sqlite"
	c.Database.Dsn = "./fx.db"
	if err := cfg.WriteConfigFile(&c, false); err != nil {
		t.Fatalf("WriteConfigFile failed: %v", err)
	}

	path, err := cfg.GetConfigPath(false)
	if err != nil {
		t.Fatalf("GetConfigPath failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected config file at %s: %v", path, err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600, got %v", info.Mode().Perm())
	}

	got, err := cfg.LoadConfig[cfg.Config](nil, cfg.Defaults(), nil)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got.BaseCurrency != "CHF" || got.Database.Dsn != "./fx.db" {
		t.Fatalf("round trip lost values: %+v", got)
	}
}
