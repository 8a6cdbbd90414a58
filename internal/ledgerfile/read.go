// Package ledgerfile reads and writes the TOML ledger format:
//
//	[[account]]
//	open = 2023-09-30
//	name = "Savings Account"
//	type = "Assets"
//	currency = "USD"
//	opening_balance = 1000.00
//
//	[[transaction]]
//	date = 2023-10-01
//	account = "Dining"
//	offset_account = "Savings Account"
//	amount = 24.50
//	payee = "Cafe"
//
//	[[price]]
//	date = 2023-10-02
//	commodity = "ARS"
//	price = 0.00125
//	currency = "USD"
package ledgerfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tally/internal/ledger"
	"github.com/cleared-dev/tally/internal/model"
)

// Ext is the extension of ledger files.
const Ext = ".toml"

type document struct {
	Accounts     []accountDoc     `toml:"account"`
	Transactions []transactionDoc `toml:"transaction"`
	Prices       []priceDoc       `toml:"price"`
}

// Dates and numbers are decoded loosely: dates may be TOML dates or
// YYYY-MM-DD strings, numbers may be integers, floats or decimal strings.
type accountDoc struct {
	Name           string `toml:"name"`
	Open           any    `toml:"open"`
	Type           string `toml:"type"`
	Currency       string `toml:"currency"`
	OpeningBalance any    `toml:"opening_balance"`
}

type transactionDoc struct {
	Date          any    `toml:"date"`
	Account       string `toml:"account"`
	OffsetAccount string `toml:"offset_account"`
	Amount        any    `toml:"amount"`
	OffsetAmount  any    `toml:"offset_amount"`
	Quantity      any    `toml:"quantity"`
	Payee         string `toml:"payee"`
	Note          string `toml:"note"`
}

type priceDoc struct {
	Date      any    `toml:"date"`
	Commodity string `toml:"commodity"`
	Price     any    `toml:"price"`
	Currency  string `toml:"currency"`
}

// Read parses one ledger document. source names the document in errors
// and in the Source of every returned record.
func Read(r io.Reader, source string) (ledger.RawLedger, error) {
	var doc document
	md, err := toml.NewDecoder(r).Decode(&doc)
	if err != nil {
		return ledger.RawLedger{}, fmt.Errorf("parsing %s: %w", source, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return ledger.RawLedger{}, fmt.Errorf("parsing %s: unknown fields: %s", source, strings.Join(keys, ", "))
	}

	var raw ledger.RawLedger
	for i, d := range doc.Accounts {
		src := fmt.Sprintf("%s#account[%d]", source, i)
		acct, err := d.raw(src)
		if err != nil {
			return ledger.RawLedger{}, fmt.Errorf("%s: %w", src, err)
		}
		raw.Accounts = append(raw.Accounts, acct)
	}
	for i, d := range doc.Transactions {
		src := fmt.Sprintf("%s#transaction[%d]", source, i)
		txn, err := d.raw(src)
		if err != nil {
			return ledger.RawLedger{}, fmt.Errorf("%s: %w", src, err)
		}
		raw.Transactions = append(raw.Transactions, txn)
	}
	for i, d := range doc.Prices {
		src := fmt.Sprintf("%s#price[%d]", source, i)
		p, err := d.raw(src)
		if err != nil {
			return ledger.RawLedger{}, fmt.Errorf("%s: %w", src, err)
		}
		raw.Prices = append(raw.Prices, p)
	}
	return raw, nil
}

func (d accountDoc) raw(src string) (ledger.RawAccount, error) {
	if d.Name == "" {
		return ledger.RawAccount{}, errors.New("missing name")
	}
	open, err := parseDate("open", d.Open)
	if err != nil {
		return ledger.RawAccount{}, err
	}
	bal, err := parseOptionalDecimal("opening_balance", d.OpeningBalance)
	if err != nil {
		return ledger.RawAccount{}, err
	}
	return ledger.RawAccount{
		Source:         src,
		Name:           d.Name,
		Type:           d.Type,
		Currency:       d.Currency,
		Opened:         open,
		OpeningBalance: bal,
	}, nil
}

func (d transactionDoc) raw(src string) (ledger.RawTransaction, error) {
	date, err := parseDate("date", d.Date)
	if err != nil {
		return ledger.RawTransaction{}, err
	}
	if d.Account == "" {
		return ledger.RawTransaction{}, errors.New("missing account")
	}
	if d.OffsetAccount == "" {
		return ledger.RawTransaction{}, errors.New("missing offset_account")
	}
	amount, err := parseDecimal("amount", d.Amount)
	if err != nil {
		return ledger.RawTransaction{}, err
	}
	offset, err := parseOptionalDecimal("offset_amount", d.OffsetAmount)
	if err != nil {
		return ledger.RawTransaction{}, err
	}
	qty, err := parseOptionalDecimal("quantity", d.Quantity)
	if err != nil {
		return ledger.RawTransaction{}, err
	}
	return ledger.RawTransaction{
		Source:        src,
		Date:          date,
		Account:       d.Account,
		OffsetAccount: d.OffsetAccount,
		Amount:        amount,
		OffsetAmount:  offset,
		Quantity:      qty,
		Payee:         d.Payee,
		Note:          d.Note,
	}, nil
}

func (d priceDoc) raw(src string) (ledger.RawPrice, error) {
	date, err := parseDate("date", d.Date)
	if err != nil {
		return ledger.RawPrice{}, err
	}
	if d.Commodity == "" {
		return ledger.RawPrice{}, errors.New("missing commodity")
	}
	if d.Currency == "" {
		return ledger.RawPrice{}, errors.New("missing currency")
	}
	price, err := parseDecimal("price", d.Price)
	if err != nil {
		return ledger.RawPrice{}, err
	}
	return ledger.RawPrice{
		Source:    src,
		Date:      date,
		Commodity: d.Commodity,
		Price:     price,
		Currency:  d.Currency,
	}, nil
}

func parseDate(field string, v any) (time.Time, error) {
	switch d := v.(type) {
	case nil:
		return time.Time{}, fmt.Errorf("missing %s", field)
	case time.Time:
		return model.Day(d), nil
	case string:
		t, err := time.Parse(model.DateFormat, d)
		if err != nil {
			return time.Time{}, fmt.Errorf("parsing %s %q: %w", field, d, err)
		}
		return t, nil
	default:
		return time.Time{}, fmt.Errorf("parsing %s: expected a date, got %T", field, v)
	}
}

func parseDecimal(field string, v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case nil:
		return decimal.Zero, fmt.Errorf("missing %s", field)
	case int64:
		return decimal.NewFromInt(n), nil
	case float64:
		return decimal.NewFromFloat(n), nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		if err != nil {
			return decimal.Zero, fmt.Errorf("parsing %s %q: %w", field, n, err)
		}
		return d, nil
	default:
		return decimal.Zero, fmt.Errorf("parsing %s: expected a number, got %T", field, v)
	}
}

func parseOptionalDecimal(field string, v any) (*decimal.Decimal, error) {
	if v == nil {
		return nil, nil
	}
	d, err := parseDecimal(field, v)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Files returns the ledger files at path: path itself when it is a file,
// or every *.toml file directly inside it, sorted by name.
func Files(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("reading ledger dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), Ext) {
			continue
		}
		files = append(files, filepath.Join(path, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// Load reads every ledger file at path and merges them in name order.
func Load(path string) (ledger.RawLedger, error) {
	files, err := Files(path)
	if err != nil {
		return ledger.RawLedger{}, err
	}

	var raw ledger.RawLedger
	for _, file := range files {
		fragment, err := readFile(file)
		if err != nil {
			return ledger.RawLedger{}, err
		}
		raw.Merge(fragment)
	}
	return raw, nil
}

func readFile(path string) (ledger.RawLedger, error) {
	f, err := os.Open(path)
	if err != nil {
		return ledger.RawLedger{}, fmt.Errorf("opening ledger file: %w", err)
	}
	defer f.Close()
	return Read(f, filepath.Base(path))
}
