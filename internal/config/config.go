// Copyright (c) 2026 fxview Team
// fxview - terminal currency converter
// This source code is licensed under the MIT license found in the LICENSE file.

// Package config loads fxview's configuration from defaults, fxview.yaml,
// .env, FXVIEW_* environment variables and command-line flags, in increasing
// order of precedence.
package config // import "github.com/toeirei/fxview/internal/config"

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config is the full fxview configuration.
type Config struct {
	Language     string `mapstructure:"language" yaml:"language" validate:"omitempty,min=2"`
	BaseCurrency string `mapstructure:"base_currency" yaml:"base_currency" validate:"omitempty,len=3,alpha"`

	API struct {
		URL     string        `mapstructure:"url" yaml:"url" validate:"omitempty,url"`
		Key     string        `mapstructure:"key" yaml:"key,omitempty"`
		Timeout time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"min=0"`
	} `mapstructure:"api" yaml:"api"`

	UI struct {
		Debounce time.Duration `mapstructure:"debounce" yaml:"debounce" validate:"min=0"`
	} `mapstructure:"ui" yaml:"ui"`

	Database struct {
		Type string `mapstructure:"type" yaml:"type" validate:"oneof=sqlite postgres mysql"`
		Dsn  string `mapstructure:"dsn" yaml:"dsn" validate:"required"`
	} `mapstructure:"database" yaml:"database"`

	Cache struct {
		TTL             time.Duration `mapstructure:"ttl" yaml:"ttl" validate:"min=0"`
		OfflineFallback bool          `mapstructure:"offline_fallback" yaml:"offline_fallback"`
	} `mapstructure:"cache" yaml:"cache"`

	Server struct {
		Addr string `mapstructure:"addr" yaml:"addr" validate:"omitempty,hostname_port"`
	} `mapstructure:"server" yaml:"server"`

	Log struct {
		Level string `mapstructure:"level" yaml:"level" validate:"omitempty,oneof=debug info warn error fatal"`
	} `mapstructure:"log" yaml:"log"`
}

// Defaults returns the built-in defaults keyed by viper path.
func Defaults() map[string]any {
	dsn := "fxview.db"
	if dir, err := os.UserCacheDir(); err == nil {
		dsn = filepath.Join(dir, "fxview", "fxview.db")
	}
	return map[string]any{
		"language":               "en",
		"base_currency":          "USD",
		"api.url":                "https://api.frankfurter.app",
		"api.key":                "",
		"api.timeout":            "10s",
		"ui.debounce":            "25ms",
		"database.type":          "sqlite",
		"database.dsn":           dsn,
		"cache.ttl":              "1h",
		"cache.offline_fallback": true,
		"server.addr":            ":8080",
		"log.level":              "info",
	}
}

// FlagKeys maps command-line flag names to the configuration keys they set.
var FlagKeys = map[string]string{
	"lang":     "language",
	"base":     "base_currency",
	"api-url":  "api.url",
	"api-key":  "api.key",
	"db-type":  "database.type",
	"db-dsn":   "database.dsn",
	"addr":     "server.addr",
	"ttl":      "cache.ttl",
	"debounce": "ui.debounce",
}

// GetConfigPath returns the full path for the configuration file.
func GetConfigPath(system bool) (string, error) {
	var configDir string
	var err error

	if system {
		switch runtime.GOOS {
		case "windows":
			configDir = filepath.Join(os.Getenv("ProgramData"), "fxview")
		default:
			configDir = "/etc/fxview"
		}
	} else {
		configDir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not get user config directory: %w", err)
		}
		configDir = filepath.Join(configDir, "fxview")
	}

	return filepath.Join(configDir, "fxview.yaml"), nil
}

// LoadConfig reads T from the layered sources. A missing config file is not
// an error; a malformed one is. cmd may be nil.
func LoadConfig[T any](cmd *cobra.Command, defaults map[string]any, configFile *string) (T, error) {
	var c T
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	// .env only feeds the environment; values already exported win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return c, fmt.Errorf("failed to read .env: %w", err)
	}

	v.SetConfigName("fxview")
	v.SetConfigType("yaml")
	if configFile != nil && *configFile != "" {
		v.SetConfigFile(*configFile)
	}
	if userConfigPath, err := GetConfigPath(false); err == nil {
		v.AddConfigPath(filepath.Dir(userConfigPath))
	}
	if systemConfigPath, err := GetConfigPath(true); err == nil {
		v.AddConfigPath(filepath.Dir(systemConfigPath))
	}
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return c, err
		}
	}

	v.SetEnvPrefix("fxview")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cmd != nil {
		for name, key := range FlagKeys {
			if f := cmd.Flags().Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return c, err
				}
			}
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	return c, nil
}

var validate = validator.New()

// Validate checks c against its struct tags.
func Validate(c *Config) error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

// WriteConfigFile writes c as YAML to the user (or system) config path.
func WriteConfigFile[T any](c *T, system bool) error {
	path, err := GetConfigPath(system)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", configDir, err)
	}

	// 0600: the file may hold api.key.
	return os.WriteFile(path, data, 0o600)
}
