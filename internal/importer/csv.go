package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cleared-dev/tally/internal/model"
)

// Entry is a normalized row and the CSV line it came from.
type Entry struct {
	Row         int
	Transaction model.Transaction
}

// Skipped is a row that could not be normalized.
type Skipped struct {
	Row int
	Err error
}

// Result is the outcome of one CSV import.
type Result struct {
	Entries []Entry
	Skipped []Skipped
}

// Transactions returns the normalized transactions in file order.
func (r Result) Transactions() []model.Transaction {
	txns := make([]model.Transaction, len(r.Entries))
	for i, e := range r.Entries {
		txns[i] = e.Transaction
	}
	return txns
}

// Run reads a header-first CSV and normalizes every data row. Rows that fail
// are recorded in Result.Skipped and the run continues. Row numbers are CSV
// line numbers, the header being row 1.
func Run(r io.Reader, n Normalizer) (Result, error) {
	if err := n.Mapping.Validate(); err != nil {
		return Result{}, err
	}
	if err := n.CheckDateFormat(); err != nil {
		return Result{}, err
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return Result{}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("reading CSV header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}
	if err := checkHeader(header, n.Mapping); err != nil {
		return Result{}, err
	}

	var res Result
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			row := parseErr.StartLine
			res.Skipped = append(res.Skipped, Skipped{Row: row, Err: fmt.Errorf("%w: row %d: %v", ErrImport, row, parseErr.Err)})
			continue
		}
		if err != nil {
			return res, fmt.Errorf("reading CSV: %w", err)
		}
		row, _ := cr.FieldPos(0)
		if blank(rec) {
			continue
		}

		txn, err := n.Normalize(record(header, rec))
		if err != nil {
			setRow(err, row)
			res.Skipped = append(res.Skipped, Skipped{Row: row, Err: err})
			continue
		}
		res.Entries = append(res.Entries, Entry{Row: row, Transaction: txn})
	}
	return res, nil
}

// checkHeader requires the date and amount columns. Other mapped columns
// may be absent and read as empty.
func checkHeader(header []string, m Mapping) error {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	for _, col := range []string{m.Date, m.Amount, m.Debit, m.Credit} {
		if col != "" && !present[col] {
			return fmt.Errorf("CSV header has no column %q", col)
		}
	}
	return nil
}

func record(header, rec []string) map[string]string {
	row := make(map[string]string, len(header))
	for i, h := range header {
		if i < len(rec) {
			row[h] = rec[i]
		}
	}
	return row
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
