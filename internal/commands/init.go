package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/tally/internal/accounts"
	"github.com/cleared-dev/tally/internal/config"
	"github.com/cleared-dev/tally/internal/gitops"
	"github.com/cleared-dev/tally/internal/ledgerfile"
	"github.com/cleared-dev/tally/internal/model"
)

const ledgerHeader = `# tally ledger
#
# [[account]]      open, name, type, currency, opening_balance
# [[transaction]]  date, account, offset_account, amount, offset_amount, quantity, payee, note
# [[price]]        date, commodity, price, currency

`

func newInitCommand() *cobra.Command {
	var currency string
	var opened string
	var chartName string
	var git bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new ledger",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			openDate := time.Now()
			if opened != "" {
				openDate, err = time.Parse(model.DateFormat, opened)
				if err != nil {
					return fmt.Errorf("parsing --opened: %w", err)
				}
			}

			chart, ok := accounts.Parse(chartName)
			if !ok {
				return fmt.Errorf("unknown chart %q", chartName)
			}

			return runInit(cmd.OutOrStdout(), absDir, initOptions{
				currency: currency,
				opened:   openDate,
				chart:    chart,
				git:      git,
			})
		},
	}

	cmd.Flags().StringVar(&currency, "currency", "USD", "currency of the starter accounts")
	cmd.Flags().StringVar(&opened, "opened", "", "open date of the starter accounts, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&chartName, "chart", string(accounts.ChartMinimal), "starter chart of accounts: minimal or household")
	cmd.Flags().BoolVar(&git, "git", true, "initialize a git repository and commit imports")

	return cmd
}

type initOptions struct {
	currency string
	opened   time.Time
	chart    accounts.Chart
	git      bool
}

func runInit(out io.Writer, dir string, opts initOptions) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking config: %w", err)
	}

	for _, d := range []string{"logs", "import", filepath.Join("import", "processed")} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default()
	cfg.Import.Account = accounts.Uncategorized
	cfg.Import.OffsetAccount = accounts.Checking
	cfg.Git.AutoCommit = opts.git
	if err := config.Save(cfgPath, cfg); err != nil {
		return err
	}

	if err := writeStarterLedger(filepath.Join(dir, cfg.Ledger.Path), accounts.StarterChart(opts.chart, opts.currency, opts.opened)); err != nil {
		return err
	}

	if err := os.WriteFile(filepath.Join(dir, "import", ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	if !opts.git {
		fmt.Fprintf(out, "Initialized ledger at %s\n", dir)
		return nil
	}

	if err := gitops.Init(dir, io.Discard); err != nil {
		return err
	}
	author := gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
	hash, err := gitops.Commit(dir, "init: new ledger", author, config.FileName, cfg.Ledger.Path, "import")
	if err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}

	fmt.Fprintf(out, "Initialized ledger at %s (%s)\n", dir, hash)
	return nil
}

func writeStarterLedger(path string, chart []model.Account) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("creating ledger: %w", err)
	}
	defer f.Close()

	if _, err := io.WriteString(f, ledgerHeader); err != nil {
		return fmt.Errorf("writing ledger: %w", err)
	}
	for _, a := range chart {
		if err := ledgerfile.WriteAccount(f, a); err != nil {
			return err
		}
	}
	return f.Close()
}
