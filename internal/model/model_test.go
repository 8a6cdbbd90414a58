package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAccountType(t *testing.T) {
	tests := []struct {
		input string
		want  AccountType
	}{
		{"Assets", AccountTypeAssets},
		{"Liabilities", AccountTypeLiabilities},
		{"Expenses", AccountTypeExpenses},
		{"Income", AccountTypeIncome},
		{"Equity", AccountTypeEquity},
		{"Stock", AccountTypeStock},
		{"Stocks", AccountTypeStock},
		{"MutualFund", AccountTypeMutualFund},
		{"MutualFunds", AccountTypeMutualFund},
		{"Holding", AccountTypeHolding},
		{"Holdings", AccountTypeHolding},
		{"Cash", AccountTypeCash},
	}
	for _, tt := range tests {
		got, err := ParseAccountType(tt.input)
		require.NoError(t, err, "input: %s", tt.input)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseAccountType_Unknown(t *testing.T) {
	for _, input := range []string{"", "assets", "Revenue", "Unknown"} {
		_, err := ParseAccountType(input)
		assert.Error(t, err, "expected error for input: %q", input)
	}
}

func TestAccountTypeRank(t *testing.T) {
	assert.Equal(t, 0, AccountTypeAssets.Rank())
	assert.Equal(t, 8, AccountTypeCash.Rank())
	assert.Less(t, AccountTypeExpenses.Rank(), AccountTypeIncome.Rank())
	assert.Equal(t, -1, AccountType("Bogus").Rank())
}

func TestAccountOpening(t *testing.T) {
	assert.True(t, Account{}.Opening().IsZero())

	bal := decimal.RequireFromString("1000.50")
	acct := Account{OpeningBalance: &bal}
	assert.True(t, acct.Opening().Equal(bal))
}

func TestTransactionPosting(t *testing.T) {
	txn := Transaction{
		Amount:   decimal.RequireFromString("390.50"),
		Quantity: decimal.NewFromInt(3),
	}
	assert.Equal(t, "1171.5", txn.Posting().String())
}

func TestQuarter(t *testing.T) {
	tests := []struct {
		month time.Month
		want  int
	}{
		{time.January, 1}, {time.March, 1},
		{time.April, 2}, {time.June, 2},
		{time.July, 3}, {time.September, 3},
		{time.October, 4}, {time.December, 4},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Quarter(tt.month), "Quarter(%s)", tt.month)
	}
}

func TestDay(t *testing.T) {
	loc := time.FixedZone("x", -5*3600)
	d := Day(time.Date(2023, 10, 1, 22, 30, 0, 0, loc))
	assert.Equal(t, time.Date(2023, 10, 1, 0, 0, 0, 0, time.UTC), d)
}
