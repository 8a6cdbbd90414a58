// Package journal lists ledger transactions in date order.
package journal

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tally/internal/ledger"
	"github.com/cleared-dev/tally/internal/model"
)

// PayeeMatch selects how Filter.Payee is compared against a transaction payee.
type PayeeMatch string

const (
	// PayeeExact requires a case-sensitive exact match.
	PayeeExact PayeeMatch = "exact"
	// PayeeContains requires a case-insensitive substring match.
	PayeeContains PayeeMatch = "contains"
)

// ParsePayeeMatch parses "exact" or "contains". Empty means PayeeExact.
func ParsePayeeMatch(s string) (PayeeMatch, error) {
	switch PayeeMatch(strings.ToLower(s)) {
	case "", PayeeExact:
		return PayeeExact, nil
	case PayeeContains:
		return PayeeContains, nil
	default:
		return "", fmt.Errorf("unknown payee match %q (want exact or contains)", s)
	}
}

// Filter selects transactions. Zero-valued fields do not filter.
type Filter struct {
	Year       int
	Class      model.AccountType // either leg belongs to this class
	Account    string            // either leg is this account
	Payee      string
	PayeeMatch PayeeMatch
}

// Row is one leg of a transaction.
type Row struct {
	Date     time.Time
	Account  string
	Currency string
	Amount   decimal.Decimal
	Payee    string
	Note     string
}

// List returns two rows per matching transaction: the account leg with the
// payee and note, then the offset leg with neither. Transactions are ordered
// by date; same-day transactions keep their declaration order.
func List(l *ledger.Ledger, f Filter) []Row {
	var matched []model.Transaction
	for _, t := range l.Transactions() {
		if f.matches(l, t) {
			matched = append(matched, t)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Date.Before(matched[j].Date)
	})

	rows := make([]Row, 0, 2*len(matched))
	for _, t := range matched {
		rows = append(rows,
			Row{
				Date:     t.Date,
				Account:  t.Account,
				Currency: currencyOf(l, t.Account),
				Amount:   t.Amount,
				Payee:    t.Payee,
				Note:     t.Note,
			},
			Row{
				Date:     t.Date,
				Account:  t.OffsetAccount,
				Currency: currencyOf(l, t.OffsetAccount),
				Amount:   t.OffsetAmount,
			},
		)
	}
	return rows
}

func (f Filter) matches(l *ledger.Ledger, t model.Transaction) bool {
	if f.Year != 0 && t.Date.Year() != f.Year {
		return false
	}
	if f.Account != "" && t.Account != f.Account && t.OffsetAccount != f.Account {
		return false
	}
	if f.Class != "" && !hasClass(l, t.Account, f.Class) && !hasClass(l, t.OffsetAccount, f.Class) {
		return false
	}
	if f.Payee != "" && !f.payeeMatches(t.Payee) {
		return false
	}
	return true
}

func (f Filter) payeeMatches(payee string) bool {
	if f.PayeeMatch == PayeeContains {
		return strings.Contains(strings.ToLower(payee), strings.ToLower(f.Payee))
	}
	return payee == f.Payee
}

func hasClass(l *ledger.Ledger, name string, class model.AccountType) bool {
	a, ok := l.Account(name)
	return ok && a.Type == class
}

func currencyOf(l *ledger.Ledger, name string) string {
	a, _ := l.Account(name)
	return a.Currency
}
