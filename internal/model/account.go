package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies accounts in the ledger.
type AccountType string

const (
	AccountTypeAssets      AccountType = "Assets"
	AccountTypeLiabilities AccountType = "Liabilities"
	AccountTypeExpenses    AccountType = "Expenses"
	AccountTypeIncome      AccountType = "Income"
	AccountTypeEquity      AccountType = "Equity"
	AccountTypeStock       AccountType = "Stock"
	AccountTypeMutualFund  AccountType = "MutualFund"
	AccountTypeHolding     AccountType = "Holding"
	AccountTypeCash        AccountType = "Cash"
)

// AccountTypes lists every account type in report order.
var AccountTypes = []AccountType{
	AccountTypeAssets,
	AccountTypeLiabilities,
	AccountTypeExpenses,
	AccountTypeIncome,
	AccountTypeEquity,
	AccountTypeStock,
	AccountTypeMutualFund,
	AccountTypeHolding,
	AccountTypeCash,
}

// Ledger files written for older versions use plural names for these classes.
var accountTypeAliases = map[string]AccountType{
	"Stocks":      AccountTypeStock,
	"MutualFunds": AccountTypeMutualFund,
	"Holdings":    AccountTypeHolding,
}

// ParseAccountType returns the AccountType named by s.
func ParseAccountType(s string) (AccountType, error) {
	for _, t := range AccountTypes {
		if string(t) == s {
			return t, nil
		}
	}
	if t, ok := accountTypeAliases[s]; ok {
		return t, nil
	}
	return "", fmt.Errorf("unknown account type %q", s)
}

// Rank returns the position of t in report order, or -1 for an unknown type.
func (t AccountType) Rank() int {
	for i, at := range AccountTypes {
		if at == t {
			return i
		}
	}
	return -1
}

// Account is a declared ledger account.
type Account struct {
	Name           string
	Type           AccountType
	Currency       string
	Opened         time.Time
	OpeningBalance *decimal.Decimal // nil when the declaration has none
}

// Opening returns the opening balance, or zero.
func (a Account) Opening() decimal.Decimal {
	if a.OpeningBalance == nil {
		return decimal.Zero
	}
	return *a.OpeningBalance
}
