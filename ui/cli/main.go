// Copyright (c) 2026 fxview Team
// fxview - terminal currency converter
// This source code is licensed under the MIT license found in the LICENSE file.

// main.go sets up the command-line interface (CLI) for fxview using the
// Cobra library. It defines the root command, the shared service setup
// (config, i18n, logging, store, rate loader), global flags, and the main
// entry point for execution.

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/toeirei/fxview/buildvars"
	"github.com/toeirei/fxview/internal/config"
	"github.com/toeirei/fxview/internal/db"
	"github.com/toeirei/fxview/internal/i18n"
	"github.com/toeirei/fxview/internal/logging"
	"github.com/toeirei/fxview/internal/model"
	"github.com/toeirei/fxview/internal/rates"
	"github.com/toeirei/fxview/internal/tui"
	"golang.org/x/term"
)

var gitCommit = "dev" // set at build time with the short commit SHA
var buildDate = ""    // set at build time (RFC3339)

// appServices holds everything a command needs once setup has run.
type appServices struct {
	cfg      config.Config
	store    db.Store
	loader   rates.Loader
	registry *prometheus.Registry
	metrics  *rates.Metrics
}

// Close releases the store.
func (s *appServices) Close() error {
	if s == nil || s.store == nil {
		return nil
	}
	return s.store.Close()
}

// rootFlags are the persistent flags shared by every command.
type rootFlags struct {
	cfgFile     string
	offline     bool
	verbose     bool
	showVersion bool
	session     string
}

// newStoreFunc and newHTTPLoaderFunc allow tests to swap the backends.
var (
	newStoreFunc      = db.New
	newHTTPLoaderFunc = func(opts rates.HTTPOptions) rates.Loader { return rates.NewHTTPLoader(opts) }
)

func setupDefaultServices(cmd *cobra.Command, flags *rootFlags) (*appServices, error) {
	optionalConfigPath, err := getConfigPathFromCli(cmd)
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig[config.Config](cmd, config.Defaults(), optionalConfigPath)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	if err := config.Validate(&cfg); err != nil {
		return nil, err
	}

	if flags.verbose {
		logging.SetDebug(true)
		db.SetDebug(true)
	} else if err := logging.SetLevel(cfg.Log.Level); err != nil {
		logging.Warnf("ignoring log.level: %v", err)
	}
	i18n.Init(cfg.Language)
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		color.NoColor = true
	}

	st, err := newStoreFunc(cfg.Database.Type, cfg.Database.Dsn)
	if err != nil {
		return nil, errors.New(i18n.T("config.error_init_db", err))
	}

	registry := prometheus.NewRegistry()
	metrics := rates.NewMetrics(registry)

	var loader rates.Loader
	if flags.offline {
		logging.Infof("offline mode: using built-in demo rates")
		loader = rates.NewStaticLoader(rates.DemoTable())
	} else {
		remote := newHTTPLoaderFunc(rates.HTTPOptions{
			URL:     cfg.API.URL,
			Key:     cfg.API.Key,
			Timeout: cfg.API.Timeout,
			Metrics: metrics,
		})
		loader = rates.NewCachedLoader(remote, st, rates.CachedOptions{
			TTL:             cfg.Cache.TTL,
			OfflineFallback: cfg.Cache.OfflineFallback,
			Metrics:         metrics,
		})
	}

	return &appServices{cfg: cfg, store: st, loader: loader, registry: registry, metrics: metrics}, nil
}

// Execute runs the CLI entrypoint. The main package should call this
// function and handle process exit.
func Execute() error {
	return NewRootCmd().Execute()
}

func getConfigPathFromCli(cmd *cobra.Command) (*string, error) {
	// Only proceed if the user has explicitly set the --config flag.
	if cmd.Flags().Changed("config") {
		path, err := cmd.Flags().GetString("config")
		if err != nil {
			return nil, fmt.Errorf("could not read --config flag: %w", err)
		}
		if path == "" {
			return nil, nil
		}
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file specified via --config flag not found or is not accessible: %w", err)
		}
		return &path, nil
	}
	return nil, nil
}

func defaultLogFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "fxview.log")
	}
	return filepath.Join(dir, "fxview", "fxview.log")
}

// NewRootCmd creates and configures a new root cobra command. Each call
// builds a fresh command tree, so tests can execute commands in isolation.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}
	var svc *appServices

	cmd := &cobra.Command{
		Use:   "fxview",
		Short: "fxview is a terminal currency converter.",
		Long: `fxview converts an amount in a base currency into any number of target
currencies using live exchange rates. Rate tables are cached locally so
the last known rates stay available offline.

Running without a subcommand will launch the interactive TUI.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if flags.showVersion {
				fmt.Fprintln(cmd.OutOrStdout(), compositeVersion())
				os.Exit(0)
			}
			if cmd.Name() == "version" {
				return nil
			}
			var err error
			svc, err = setupDefaultServices(cmd, flags)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return svc.Close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.Run(cmd.Context(), tui.Options{
				Loader:       svc.loader,
				Sessions:     svc.store,
				SessionName:  flags.session,
				BaseCurrency: svc.cfg.BaseCurrency,
				OverrideBase: cmd.Flags().Changed("base"),
				Debounce:     svc.cfg.UI.Debounce,
				Lang:         svc.cfg.Language,
				LogFile:      defaultLogFile(),
			})
		},
	}
	cmd.Version = compositeVersion()

	pf := cmd.PersistentFlags()
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose output (debug logs, including DB)")
	pf.BoolVarP(&flags.showVersion, "version", "V", false, "Print version and exit")
	pf.StringVar(&flags.cfgFile, "config", "", "config file")
	pf.BoolVar(&flags.offline, "offline", false, "Use built-in demo rates instead of the remote feed")
	pf.StringVar(&flags.session, "session", tui.DefaultSession, "Name of the saved converter session")
	pf.String("lang", "en", `Display language ("en", "de")`)
	pf.String("base", model.DefaultBaseCurrency, "Base currency (overrides the saved session when set)")
	pf.String("api-url", "", "Exchange-rate feed URL")
	pf.String("api-key", "", "Access key for feeds that require one")
	pf.String("db-type", "sqlite", "Database type (sqlite, postgres, mysql)")
	pf.String("db-dsn", "", "Database connection string (DSN)")
	pf.Duration("ttl", time.Hour, "How long a cached rate table is served without refetching")
	pf.Duration("debounce", 25*time.Millisecond, "Delay before a typed amount is applied")

	services := func() *appServices { return svc }
	cmd.AddCommand(
		newConvertCmd(services),
		newRatesCmd(services),
		newServeCmd(services),
		newExportCmd(services, flags),
		newImportCmd(services),
		newDebugCmd(services),
		newConfigCmd(services),
		newVersionCmd(),
	)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			v, c, d := resolveBuildVersion(nil)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "version: %s\n", v)
			fmt.Fprintf(out, "commit: %s\n", c)
			if d != "" {
				fmt.Fprintf(out, "built: %s\n", d)
			}
		},
	}
}

func compositeVersion() string {
	v, c, d := resolveBuildVersion(nil)
	composite := v
	if c != "" && c != "dev" {
		composite = composite + " (" + c + ")"
	}
	if d != "" {
		composite = composite + " built: " + d
	}
	return composite
}

// modulePath identifies this module in build info dependency lists.
const modulePath = "github.com/toeirei/fxview"

// resolveBuildVersion computes the best-available version, commit and build
// date for the running binary. If `info` is nil, it reads build info from
// the runtime.
func resolveBuildVersion(info *debug.BuildInfo) (versionOut, commitOut, dateOut string) {
	resolvedVersion := buildvars.VersionOrDefault("dev")
	resolvedCommit := gitCommit
	resolvedDate := buildDate

	if info == nil {
		if local, found := debug.ReadBuildInfo(); found {
			info = local
		}
	}
	if info != nil {
		if resolvedVersion == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			resolvedVersion = info.Main.Version
		}
		// When fxview is embedded as a dependency Main holds the host module.
		if resolvedVersion == "dev" {
			for _, dep := range info.Deps {
				if dep.Path == modulePath && dep.Version != "" {
					resolvedVersion = dep.Version
					break
				}
			}
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if s.Value != "" && resolvedCommit == "dev" {
					resolvedCommit = s.Value
					if len(resolvedCommit) > 7 {
						resolvedCommit = resolvedCommit[:7]
					}
				}
			case "vcs.time":
				if s.Value != "" && resolvedDate == "" {
					resolvedDate = s.Value
				}
			}
		}
	}

	if resolvedVersion == "dev" && gitCommit != "dev" && gitCommit != "" {
		resolvedVersion = gitCommit
	}
	return resolvedVersion, resolvedCommit, resolvedDate
}

// commandContext returns cmd's context, or Background when the command is
// executed without one (tests).
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
