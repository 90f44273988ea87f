// Copyright (c) 2026 fxview Team
// fxview - terminal currency converter
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/toeirei/fxview/internal/logging"
)

func newDebugCmd(services func() *appServices) *cobra.Command {
	return &cobra.Command{
		Use:   "debug",
		Short: "Dump debug information about config, env and flags",
		Run: func(cmd *cobra.Command, args []string) {
			svc := services()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "--- FXVIEW DEBUG ---")

			cfg := svc.cfg
			if cfg.API.Key != "" {
				cfg.API.Key = "********"
			}
			b, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				logging.Errorf("could not marshal config: %v", err)
			} else {
				fmt.Fprintln(out, "-- resolved config --")
				fmt.Fprintln(out, string(b))
			}
			fmt.Fprintf(out, "store: %s\n", svc.store.Type())

			fmt.Fprintln(out, "-- flags --")
			cmd.Flags().VisitAll(func(f *pflag.Flag) {
				value := f.Value.String()
				if f.Name == "api-key" && value != "" {
					value = "********"
				}
				fmt.Fprintf(out, "%s = %s\n", f.Name, value)
			})

			fmt.Fprintln(out, "-- environment (FXVIEW_*) --")
			for _, e := range os.Environ() {
				if strings.HasPrefix(e, "FXVIEW_") {
					if strings.HasPrefix(e, "FXVIEW_API_KEY=") {
						e = "FXVIEW_API_KEY=********"
					}
					fmt.Fprintln(out, e)
				}
			}
			fmt.Fprintln(out, "--- END DEBUG ---")
		},
	}
}
