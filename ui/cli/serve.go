// Copyright (c) 2026 fxview Team
// fxview - terminal currency converter
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/toeirei/fxview/internal/i18n"
	"github.com/toeirei/fxview/internal/logging"
	"github.com/toeirei/fxview/internal/server"
)

func newServeCmd(services func() *appServices) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the converter as a JSON API",
		Long: `Starts a small HTTP server exposing /api/rates/:base, /api/convert and
/metrics. The server stops gracefully on SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := services()
			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app := server.New(server.Options{
				Loader:   svc.loader,
				Gatherer: svc.registry,
				Lang:     svc.cfg.Language,
			})
			logging.Infof("%s", i18n.T("cli.serve.listening", svc.cfg.Server.Addr))
			return server.ListenAndServe(ctx, app, svc.cfg.Server.Addr)
		},
	}
	cmd.Flags().String("addr", "", "Listen address (host:port)")
	return cmd
}
