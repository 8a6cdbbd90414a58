package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/tally/internal/balance"
	"github.com/cleared-dev/tally/internal/report"
)

func newBalancesCommand(a *app) *cobra.Command {
	var (
		classNames []string
		year       int
		price      string
		group      string
		watch      bool
	)

	cmd := &cobra.Command{
		Use:   "balances",
		Short: "Show account balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			classes, err := parseClasses(classNames)
			if err != nil {
				return err
			}
			groupBy, err := balance.ParseGroupBy(group)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("price") {
				price = a.cfg.Report.Price
			}
			opts := balance.Options{
				Classes:     classes,
				Year:        year,
				PriceTarget: price,
				GroupBy:     groupBy,
			}

			out := cmd.OutOrStdout()
			if !watch {
				return a.renderBalances(out, opts)
			}

			render := func() {
				fmt.Fprintln(out)
				if err := a.renderBalances(out, opts); err != nil {
					a.log.Error().Err(err).Msg("reload failed")
				}
			}
			if err := a.renderBalances(out, opts); err != nil {
				a.log.Error().Err(err).Msg("load failed")
			}
			a.log.Info().Str("path", a.cfg.Ledger.Path).Msg("watching ledger")
			return watchLedger(cmd.Context(), a.cfg.Ledger.Path, render)
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVarP(&classNames, "class", "c", nil, "only report these account types (repeatable)")
	flags.IntVarP(&year, "year", "y", 0, "only postings within this year")
	flags.StringVarP(&price, "price", "p", "", "convert balances to this currency")
	flags.StringVarP(&group, "group", "g", "", "group by period: M, Q or Y")
	flags.BoolVarP(&watch, "watch", "w", false, "re-render when the ledger changes")

	return cmd
}

func (a *app) renderBalances(w io.Writer, opts balance.Options) error {
	l, err := a.loadLedger()
	if err != nil {
		return err
	}

	rows := balance.Compute(l, nil, opts)
	for _, row := range rows {
		if row.Unconverted {
			a.log.Warn().
				Str("account", row.Account).
				Str("currency", row.Currency).
				Str("target", opts.PriceTarget).
				Err(row.Err).
				Msg("balance not converted")
		}
	}
	return report.New(w).Balances(rows, opts.GroupBy)
}
