package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/tally/internal/gitops"
	"github.com/cleared-dev/tally/internal/importer"
	"github.com/cleared-dev/tally/internal/importlog"
	"github.com/cleared-dev/tally/internal/ledger"
	"github.com/cleared-dev/tally/internal/ledgerfile"
)

type importOptions struct {
	preset        string
	format        string
	sign          string
	account       string
	offsetAccount string
	dryRun        bool
}

func newImportCommand(a *app) *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import [csv files...]",
		Short: "Import transactions from CSV exports",
		Long: "Import transactions from CSV exports into the ledger. Without arguments,\n" +
			"every CSV in import/ is imported and then moved to import/processed/.",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := a.normalizer(opts)
			if err != nil {
				return err
			}
			return a.runImport(cmd.OutOrStdout(), args, n, opts.dryRun)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.preset, "preset", "", "column preset: "+strings.Join(importer.DefaultRegistry().Names(), ", "))
	flags.StringVarP(&opts.format, "format", "f", "", "date format, strftime (%d/%m/%Y) or Go layout")
	flags.StringVar(&opts.sign, "sign", "", "sign convention: as-is, inverted, absolute, debit-negative, debit-positive")
	flags.StringVarP(&opts.account, "account", "a", "", "account for rows without one")
	flags.StringVarP(&opts.offsetAccount, "offset-account", "o", "", "funding account for rows without one")
	flags.BoolVarP(&opts.dryRun, "dry-run", "n", false, "print the transactions instead of writing them")

	return cmd
}

// normalizer combines the preset, the configured columns and the flags.
// Flags win over config, which wins over the preset.
func (a *app) normalizer(opts importOptions) (importer.Normalizer, error) {
	ic := a.cfg.Import

	var preset importer.Preset
	switch {
	case opts.preset == "" && ic.Columns.Date != "":
		preset = importer.Preset{Name: "config", Mapping: ic.Columns}
	default:
		name := opts.preset
		if name == "" {
			name = ic.Preset
		}
		p, ok := importer.DefaultRegistry().Get(name)
		if !ok {
			return importer.Normalizer{}, fmt.Errorf("unknown import preset %q (have %s)",
				name, strings.Join(importer.DefaultRegistry().Names(), ", "))
		}
		preset = p
	}

	if format := firstNonEmpty(opts.format, ic.DateFormat); format != "" {
		preset.DateFormat = format
	}
	if s := firstNonEmpty(opts.sign, ic.Sign); s != "" {
		sign, err := importer.ParseSignConvention(s)
		if err != nil {
			return importer.Normalizer{}, err
		}
		preset.Sign = sign
	}

	n := preset.Normalizer(
		firstNonEmpty(opts.account, ic.Account),
		firstNonEmpty(opts.offsetAccount, ic.OffsetAccount),
	)
	if err := n.Mapping.Validate(); err != nil {
		return importer.Normalizer{}, err
	}
	if err := n.CheckDateFormat(); err != nil {
		return importer.Normalizer{}, err
	}
	return n, nil
}

func (a *app) root() string {
	return filepath.Dir(a.configPath)
}

func (a *app) runImport(out io.Writer, files []string, n importer.Normalizer, dryRun bool) error {
	fromInbox := len(files) == 0
	if fromInbox {
		found, err := importer.Scan(a.root())
		if err != nil {
			return err
		}
		for _, f := range found {
			files = append(files, f.Path)
		}
		if len(files) == 0 {
			fmt.Fprintln(out, "Nothing to import")
			return nil
		}
	}

	batch := importlog.NewBatch()
	total := 0
	for _, path := range files {
		res, err := a.importFile(out, path, n, batch, dryRun)
		if err != nil {
			return err
		}
		total += len(res.Entries)
		fmt.Fprintf(out, "%s: imported %d, skipped %d\n", filepath.Base(path), len(res.Entries), len(res.Skipped))

		if fromInbox && !dryRun {
			if err := importer.MarkProcessed(a.root(), filepath.Base(path)); err != nil {
				return err
			}
		}
	}

	if dryRun {
		return nil
	}
	a.printBatch(out, batch)

	if !a.cfg.Git.AutoCommit {
		return nil
	}
	return a.commitImport(batch, total, fromInbox)
}

// printBatch reports the batch totals recorded in the import log.
func (a *app) printBatch(out io.Writer, batch string) {
	entries, err := importlog.Read(a.root())
	if err != nil {
		a.log.Warn().Err(err).Msg("failed to read import log")
		return
	}
	imported, skipped := importlog.Counts(entries, batch)
	fmt.Fprintf(out, "Batch %s: imported %d, skipped %d\n", batch, imported, skipped)
}

func (a *app) importFile(out io.Writer, path string, n importer.Normalizer, batch string, dryRun bool) (importer.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return importer.Result{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	res, err := importer.Run(f, n)
	if err != nil {
		return importer.Result{}, fmt.Errorf("importing %s: %w", path, err)
	}
	for _, s := range res.Skipped {
		a.log.Warn().Str("file", path).Int("row", s.Row).Err(s.Err).Msg("row skipped")
	}

	txns := res.Transactions()
	if len(txns) > 0 {
		raw, err := ledgerfile.Load(a.cfg.Ledger.Path)
		if err != nil {
			return importer.Result{}, err
		}
		raw.AddTransactions(filepath.Base(path), txns)
		if _, err := ledger.Build(raw); err != nil {
			return importer.Result{}, fmt.Errorf("importing %s: %w", path, err)
		}
	}

	if dryRun {
		return res, ledgerfile.AppendTransactions(out, txns)
	}

	if len(txns) > 0 {
		target := a.cfg.ImportTarget()
		if err := ledgerfile.AppendFile(target, txns); err != nil {
			return importer.Result{}, err
		}
		a.log.Info().Str("file", path).Str("target", target).Int("transactions", len(txns)).Msg("imported")
	}

	entries := importlog.Entries(batch, filepath.Base(path), res, time.Now().UTC())
	if err := importlog.Append(a.root(), entries); err != nil {
		a.log.Warn().Err(err).Msg("failed to write import log")
	}
	return res, nil
}

func (a *app) commitImport(batch string, total int, fromInbox bool) error {
	root := a.root()
	if !gitops.IsRepo(root) {
		a.log.Debug().Str("dir", root).Msg("not a git repository, skipping commit")
		return nil
	}

	paths := []string{a.cfg.ImportTarget(), filepath.Join(root, "logs")}
	if fromInbox {
		paths = append(paths, filepath.Join(root, "import"))
	}
	for i, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("resolving path: %w", err)
		}
		paths[i] = abs
	}

	changed, err := gitops.Changed(root, paths...)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	author := gitops.Author{Name: a.cfg.Git.AuthorName, Email: a.cfg.Git.AuthorEmail}
	msg := fmt.Sprintf("import: %d transactions (batch %s)", total, batch)
	hash, err := gitops.Commit(root, msg, author, paths...)
	if err != nil {
		return err
	}
	a.log.Info().Str("commit", hash).Msg("import committed")
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
