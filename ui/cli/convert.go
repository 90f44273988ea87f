// Copyright (c) 2026 fxview Team
// fxview - terminal currency converter
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/toeirei/fxview/internal/converter"
	"github.com/toeirei/fxview/internal/i18n"
	"github.com/toeirei/fxview/internal/money"
	"github.com/toeirei/fxview/internal/rates"
)

// newConvertCmd returns `convert AMOUNT FROM TO...`, a one-shot conversion
// driven through the same converter state as the TUI.
func newConvertCmd(services func() *appServices) *cobra.Command {
	return &cobra.Command{
		Use:   "convert AMOUNT FROM TO...",
		Short: "Convert an amount into one or more currencies",
		Long: `Converts AMOUNT of currency FROM into every TO currency and prints one
line per target. Unknown targets are reported but do not fail the command.`,
		Example: "  fxview convert 100 USD EUR GBP JPY\n  fxview convert 2,5 eur chf",
		Args:    cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := services()
			amount, err := money.ParseAmount(args[0])
			if err != nil {
				return err
			}

			st := converter.New(args[1], amount)
			req := st.Mount()
			table, err := svc.loader.Fetch(commandContext(cmd), req.Base)
			if st.ApplyRateTable(req.Token, table, err) == converter.Failed {
				return st.Err
			}
			for _, code := range args[2:] {
				for _, c := range strings.Split(code, ",") {
					st.AddTarget(c)
				}
			}
			printConversion(cmd.OutOrStdout(), st, money.NewFormatter(svc.cfg.Language))
			return nil
		},
	}
}

func printConversion(out io.Writer, st *converter.State, f *money.Formatter) {
	bold := color.New(color.Bold)
	dim := color.New(color.Faint)
	warn := color.New(color.FgRed)

	bold.Fprintln(out, i18n.T("cli.convert.header", f.Number(st.BaseAmount), st.BaseCurrency)) //nolint:errcheck
	for _, r := range st.Rows() {
		if !r.Known {
			warn.Fprintf(out, "  %-4s %s\n", r.Currency, i18n.T("cli.unknown_currency", r.Currency)) //nolint:errcheck
			continue
		}
		fmt.Fprintf(out, "  %-4s %-20s ", r.Currency, f.Amount(r.Currency, r.Amount))
		dim.Fprintln(out, "("+i18n.T("converter.unit_rate", st.BaseCurrency, f.Rate(r.Rate), r.Currency)+")") //nolint:errcheck
	}
	if st.Table != nil && st.Table.Stale {
		warn.Fprintln(out, i18n.T("converter.stale", st.Table.Date)) //nolint:errcheck
	}
}

// newRatesCmd returns `rates [BASE]`, which prints the full rate table.
func newRatesCmd(services func() *appServices) *cobra.Command {
	return &cobra.Command{
		Use:   "rates [BASE]",
		Short: "Print every known rate for a base currency",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := services()
			base := svc.cfg.BaseCurrency
			if len(args) == 1 {
				base = args[0]
			}
			table, err := svc.loader.Fetch(commandContext(cmd), base)
			if err != nil {
				return err
			}
			if table == nil {
				return fmt.Errorf("%w: no table for %s", rates.ErrUpstream, base)
			}

			f := money.NewFormatter(svc.cfg.Language)
			out := cmd.OutOrStdout()
			color.New(color.Bold).Fprintln(out, i18n.T("cli.rates.header", table.Base, table.Date)) //nolint:errcheck
			for _, code := range table.CurrencyList {
				if code == table.Base {
					continue
				}
				rate, _ := table.Rate(code)
				fmt.Fprintf(out, "  %-4s %s\n", code, f.Rate(rate))
			}
			if table.Stale {
				color.New(color.FgRed).Fprintln(out, i18n.T("converter.stale", table.Date)) //nolint:errcheck
			}
			return nil
		},
	}
}
