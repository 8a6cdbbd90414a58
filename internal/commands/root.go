package commands

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/tally/internal/buildinfo"
	"github.com/cleared-dev/tally/internal/config"
	"github.com/cleared-dev/tally/internal/ledger"
	"github.com/cleared-dev/tally/internal/ledgerfile"
	"github.com/cleared-dev/tally/internal/logger"
)

// app carries state shared by all subcommands of one invocation.
type app struct {
	configPath string
	ledgerPath string
	logLevel   string

	cfg *config.Config
	log zerolog.Logger
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	a := &app{log: logger.Nop()}

	rootCmd := &cobra.Command{
		Use:     "tally",
		Short:   "Plain-text personal accounting",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", config.FileName, "config file")
	flags.StringVarP(&a.ledgerPath, "ledger", "l", "", "ledger file or directory (overrides config)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")

	rootCmd.AddCommand(
		newInitCommand(),
		newAccountsCommand(a),
		newBalancesCommand(a),
		newJournalCommand(a),
		newImportCommand(a),
	)

	return rootCmd
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Resolve(a.configPath)
	if err != nil {
		return err
	}
	// Paths in the config file are relative to the file itself.
	if a.ledgerPath != "" {
		cfg.Ledger.Path = a.ledgerPath
	} else if !filepath.IsAbs(cfg.Ledger.Path) {
		cfg.Ledger.Path = filepath.Join(a.root(), cfg.Ledger.Path)
	}
	if t := cfg.Ledger.ImportTarget; t != "" && !filepath.IsAbs(t) {
		cfg.Ledger.ImportTarget = filepath.Join(a.root(), t)
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	a.cfg = cfg
	a.log = logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}, cmd.ErrOrStderr())
	for _, w := range cfg.Warnings() {
		a.log.Warn().Msg(w)
	}
	return nil
}

// loadLedger reads and validates the configured ledger.
func (a *app) loadLedger() (*ledger.Ledger, error) {
	raw, err := ledgerfile.Load(a.cfg.Ledger.Path)
	if err != nil {
		return nil, err
	}
	l, err := ledger.Build(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid ledger: %w", err)
	}
	a.log.Debug().
		Str("path", a.cfg.Ledger.Path).
		Int("accounts", len(l.Accounts())).
		Int("transactions", len(l.Transactions())).
		Int("prices", len(l.Prices())).
		Msg("ledger loaded")
	return l, nil
}
