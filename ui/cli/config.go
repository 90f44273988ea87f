// Copyright (c) 2026 fxview Team
// fxview - terminal currency converter
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/toeirei/fxview/internal/config"
	"github.com/toeirei/fxview/internal/i18n"
)

// newConfigCmd returns `config init`, which writes the resolved
// configuration (defaults, env and flags applied) to fxview.yaml.
func newConfigCmd(services func() *appServices) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the fxview configuration file",
	}

	var system, force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the current settings to fxview.yaml",
		Long: `Writes the resolved configuration to the user config directory (or the
system one with --system). Flags given on the same command line end up in
the file, e.g. "fxview config init --base EUR --lang de".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := services()
			path, err := config.GetConfigPath(system)
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("could not check %s: %w", path, err)
			}

			cfg := svc.cfg
			if err := config.WriteConfigFile(&cfg, system); err != nil {
				return fmt.Errorf("failed to write config file: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cli.config.written", path))
			return nil
		},
	}
	initCmd.Flags().BoolVar(&system, "system", false, "Write the system-wide config instead of the user one")
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	cmd.AddCommand(initCmd)
	return cmd
}
