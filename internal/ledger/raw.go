package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tally/internal/model"
)

// RawAccount is an account declaration as parsed, before validation.
type RawAccount struct {
	Source         string // where the record came from, for error messages
	Name           string
	Type           string
	Currency       string
	Opened         time.Time
	OpeningBalance *decimal.Decimal
}

// RawTransaction is a transaction declaration as parsed. Nil OffsetAmount
// and Quantity take their defaults during Build.
type RawTransaction struct {
	Source        string
	Date          time.Time
	Account       string
	OffsetAccount string
	Amount        decimal.Decimal
	OffsetAmount  *decimal.Decimal
	Quantity      *decimal.Decimal
	Payee         string
	Note          string
}

// RawPrice is a price declaration as parsed.
type RawPrice struct {
	Source    string
	Date      time.Time
	Commodity string
	Price     decimal.Decimal
	Currency  string
}

// RawLedger holds every parsed record of one or more ledger fragments.
type RawLedger struct {
	Accounts     []RawAccount
	Transactions []RawTransaction
	Prices       []RawPrice
}

// Merge appends the records of other to r. Fragments are concatenated
// in order; duplicate accounts across fragments are caught by Build.
func (r *RawLedger) Merge(other RawLedger) {
	r.Accounts = append(r.Accounts, other.Accounts...)
	r.Transactions = append(r.Transactions, other.Transactions...)
	r.Prices = append(r.Prices, other.Prices...)
}

// AddTransactions appends fully populated transactions, such as import
// output, so they are validated with the rest of r by Build.
func (r *RawLedger) AddTransactions(source string, txns []model.Transaction) {
	for _, t := range txns {
		offset, qty := t.OffsetAmount, t.Quantity
		r.Transactions = append(r.Transactions, RawTransaction{
			Source:        source,
			Date:          t.Date,
			Account:       t.Account,
			OffsetAccount: t.OffsetAccount,
			Amount:        t.Amount,
			OffsetAmount:  &offset,
			Quantity:      &qty,
			Payee:         t.Payee,
			Note:          t.Note,
		})
	}
}
