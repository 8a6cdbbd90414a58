package commands

import (
	"github.com/spf13/cobra"

	"github.com/cleared-dev/tally/internal/journal"
	"github.com/cleared-dev/tally/internal/model"
	"github.com/cleared-dev/tally/internal/report"
)

func newJournalCommand(a *app) *cobra.Command {
	var (
		year       int
		className  string
		account    string
		payee      string
		payeeMatch string
	)

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "List transactions, one row per leg",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := journal.Filter{Year: year, Account: account, Payee: payee}
			if className != "" {
				class, err := model.ParseAccountType(className)
				if err != nil {
					return err
				}
				f.Class = class
			}
			if !cmd.Flags().Changed("payee-match") {
				payeeMatch = a.cfg.Report.PayeeMatch
			}
			match, err := journal.ParsePayeeMatch(payeeMatch)
			if err != nil {
				return err
			}
			f.PayeeMatch = match

			l, err := a.loadLedger()
			if err != nil {
				return err
			}
			if account != "" {
				if _, ok := l.Account(account); !ok {
					a.log.Warn().Str("account", account).Msg("no such account")
				}
			}
			return report.New(cmd.OutOrStdout()).Journal(journal.List(l, f))
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&year, "year", "y", 0, "only transactions in this year")
	flags.StringVarP(&className, "class", "c", "", "only transactions touching this account type")
	flags.StringVarP(&account, "account", "a", "", "only transactions touching this account")
	flags.StringVarP(&payee, "payee", "p", "", "only transactions with this payee")
	flags.StringVar(&payeeMatch, "payee-match", "", "payee matching: exact or contains")

	return cmd
}
