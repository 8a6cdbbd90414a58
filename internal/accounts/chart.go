// Package accounts provides the starter chart written by tally init.
package accounts

import (
	"time"

	"github.com/cleared-dev/tally/internal/model"
)

// Account names that the starter config refers to.
const (
	Checking      = "Checking"
	Uncategorized = "Uncategorized"
)

// Chart names a starter chart of accounts.
type Chart string

const (
	ChartMinimal   Chart = "minimal"
	ChartHousehold Chart = "household"
)

// Charts lists the known charts in display order.
var Charts = []Chart{ChartMinimal, ChartHousehold}

// StarterChart returns the accounts of a chart, all in one currency and
// opened on the same day. Unknown charts fall back to the minimal one.
func StarterChart(chart Chart, currency string, opened time.Time) []model.Account {
	var accts []model.Account
	switch chart {
	case ChartHousehold:
		accts = householdChart()
	default:
		accts = minimalChart()
	}
	day := model.Day(opened)
	for i := range accts {
		accts[i].Currency = currency
		accts[i].Opened = day
	}
	return accts
}

func minimalChart() []model.Account {
	return []model.Account{
		{Name: Checking, Type: model.AccountTypeAssets},
		{Name: Uncategorized, Type: model.AccountTypeExpenses},
		{Name: "Income", Type: model.AccountTypeIncome},
	}
}

func householdChart() []model.Account {
	return []model.Account{
		{Name: Checking, Type: model.AccountTypeAssets},
		{Name: "Savings", Type: model.AccountTypeAssets},
		{Name: "Credit Card", Type: model.AccountTypeLiabilities},
		{Name: "Opening Balances", Type: model.AccountTypeEquity},
		{Name: "Salary", Type: model.AccountTypeIncome},
		{Name: "Interest", Type: model.AccountTypeIncome},
		{Name: "Groceries", Type: model.AccountTypeExpenses},
		{Name: "Dining", Type: model.AccountTypeExpenses},
		{Name: "Rent", Type: model.AccountTypeExpenses},
		{Name: "Utilities", Type: model.AccountTypeExpenses},
		{Name: "Subscriptions", Type: model.AccountTypeExpenses},
		{Name: Uncategorized, Type: model.AccountTypeExpenses},
	}
}

// Parse returns the chart named s.
func Parse(s string) (Chart, bool) {
	for _, c := range Charts {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}
