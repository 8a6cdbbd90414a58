package commands

import (
	"github.com/spf13/cobra"

	"github.com/cleared-dev/tally/internal/model"
	"github.com/cleared-dev/tally/internal/report"
)

func newAccountsCommand(a *app) *cobra.Command {
	var classNames []string

	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "List declared accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			classes, err := parseClasses(classNames)
			if err != nil {
				return err
			}
			l, err := a.loadLedger()
			if err != nil {
				return err
			}

			var accounts []model.Account
			for _, acct := range l.Accounts() {
				if len(classes) == 0 || containsType(classes, acct.Type) {
					accounts = append(accounts, acct)
				}
			}
			return report.New(cmd.OutOrStdout()).Accounts(accounts)
		},
	}

	cmd.Flags().StringSliceVarP(&classNames, "class", "c", nil, "only these account types (repeatable)")

	return cmd
}

func containsType(types []model.AccountType, t model.AccountType) bool {
	for _, c := range types {
		if c == t {
			return true
		}
	}
	return false
}
