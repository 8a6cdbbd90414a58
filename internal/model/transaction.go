package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateFormat is the day layout used across ledger files and reports.
const DateFormat = "2006-01-02"

// Transaction is an exchange between exactly two accounts.
// Amount is in the currency of Account; OffsetAmount in that of OffsetAccount.
type Transaction struct {
	Date          time.Time
	Account       string
	OffsetAccount string
	Amount        decimal.Decimal
	OffsetAmount  decimal.Decimal
	Quantity      decimal.Decimal // units when Amount is a per-unit price
	Payee         string
	Note          string
}

// Posting returns the signed change applied to Account.
func (t Transaction) Posting() decimal.Decimal {
	return t.Amount.Mul(t.Quantity)
}

// Price records the value of one unit of Commodity in Currency on Date.
type Price struct {
	Date      time.Time
	Commodity string
	Price     decimal.Decimal
	Currency  string
}

// Day truncates t to a calendar day in UTC, keeping its year, month and day.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Quarter returns the quarter (1..4) of month m.
func Quarter(m time.Month) int {
	return (int(m)-1)/3 + 1
}
