package balance

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/tally/internal/ledger"
	"github.com/cleared-dev/tally/internal/model"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func account(name, typ, currency string, opened time.Time) ledger.RawAccount {
	return ledger.RawAccount{Name: name, Type: typ, Currency: currency, Opened: opened}
}

func txn(d time.Time, acct, offset, amount string) ledger.RawTransaction {
	return ledger.RawTransaction{Date: d, Account: acct, OffsetAccount: offset, Amount: dec(amount)}
}

func build(t *testing.T, raw ledger.RawLedger) *ledger.Ledger {
	t.Helper()
	l, err := ledger.Build(raw)
	require.NoError(t, err)
	return l
}

func byName(rows []Row) map[string]Row {
	out := make(map[string]Row, len(rows))
	for _, r := range rows {
		out[r.Account] = r
	}
	return out
}

func householdLedger() ledger.RawLedger {
	opened := date(2023, 1, 1)
	return ledger.RawLedger{
		Accounts: []ledger.RawAccount{
			account("Savings Account", "Assets", "USD", opened),
			account("Credit Card", "Liabilities", "USD", opened),
			account("Dining", "Expenses", "USD", opened),
			account("Groceries", "Expenses", "USD", opened),
			account("Salary", "Income", "USD", opened),
			account("Rent", "Expenses", "USD", opened),
		},
		Transactions: []ledger.RawTransaction{
			txn(date(2023, 1, 31), "Savings Account", "Salary", "3000"),
			txn(date(2023, 2, 3), "Dining", "Credit Card", "45.20"),
			txn(date(2023, 2, 10), "Groceries", "Savings Account", "120.15"),
			txn(date(2023, 4, 2), "Dining", "Savings Account", "30"),
			txn(date(2023, 4, 30), "Credit Card", "Savings Account", "45.20"),
		},
	}
}

func TestCompute_BalanceClosure(t *testing.T) {
	l := build(t, householdLedger())
	rows := Compute(l, nil, Options{})

	sum := decimal.Zero
	for _, r := range rows {
		assert.Equal(t, "USD", r.Currency)
		sum = sum.Add(r.Amount)
	}
	assert.True(t, sum.IsZero(), "balances should sum to zero, got %s", sum)
}

func TestCompute_Amounts(t *testing.T) {
	l := build(t, householdLedger())
	got := byName(Compute(l, nil, Options{}))

	assert.Equal(t, "2804.65", got["Savings Account"].Amount.StringFixed(2))
	assert.Equal(t, "0.00", got["Credit Card"].Amount.StringFixed(2))
	assert.Equal(t, "75.20", got["Dining"].Amount.StringFixed(2))
	assert.Equal(t, "-3000.00", got["Salary"].Amount.StringFixed(2))
}

func TestCompute_OpeningBalanceSeed(t *testing.T) {
	raw := ledger.RawLedger{Accounts: []ledger.RawAccount{
		{Name: "Savings Account", Type: "Assets", Currency: "USD", Opened: date(2023, 9, 30), OpeningBalance: decPtr("1000.00")},
	}}
	rows := Compute(build(t, raw), nil, Options{})
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Amount.Equal(dec("1000")), "got %s", rows[0].Amount)
}

func TestCompute_YearFilterExactness(t *testing.T) {
	raw := ledger.RawLedger{
		Accounts: []ledger.RawAccount{
			{Name: "Brokerage", Type: "Assets", Currency: "USD", Opened: date(2022, 1, 1), OpeningBalance: decPtr("0")},
			account("Equity", "Equity", "USD", date(2022, 1, 1)),
		},
		Transactions: []ledger.RawTransaction{
			txn(date(2022, 6, 1), "Brokerage", "Equity", "100"),
			txn(date(2023, 3, 1), "Brokerage", "Equity", "50"),
		},
	}
	l := build(t, raw)

	got := byName(Compute(l, nil, Options{Year: 2023}))
	assert.True(t, got["Brokerage"].Amount.Equal(dec("50")), "got %s", got["Brokerage"].Amount)

	got = byName(Compute(l, nil, Options{Year: 2022}))
	assert.True(t, got["Brokerage"].Amount.Equal(dec("100")), "got %s", got["Brokerage"].Amount)

	got = byName(Compute(l, nil, Options{}))
	assert.True(t, got["Brokerage"].Amount.Equal(dec("150")), "got %s", got["Brokerage"].Amount)
}

func TestCompute_YearFilterOpeningBalance(t *testing.T) {
	raw := ledger.RawLedger{
		Accounts: []ledger.RawAccount{
			{Name: "Savings Account", Type: "Assets", Currency: "USD", Opened: date(2022, 3, 1), OpeningBalance: decPtr("500")},
			account("Later", "Assets", "USD", date(2024, 1, 1)),
			account("Salary", "Income", "USD", date(2022, 1, 1)),
		},
		Transactions: []ledger.RawTransaction{
			txn(date(2023, 5, 1), "Savings Account", "Salary", "20"),
		},
	}
	l := build(t, raw)

	for _, year := range []int{2022, 2023, 2024} {
		got := byName(Compute(l, nil, Options{Year: year}))

		want := "500"
		if year == 2023 {
			want = "520"
		}
		assert.True(t, got["Savings Account"].Amount.Equal(dec(want)), "year %d: got %s", year, got["Savings Account"].Amount)

		later, listed := got["Later"]
		require.True(t, listed, "year %d: declared accounts are always reported", year)
		assert.True(t, later.Amount.IsZero())
	}
}

func TestCompute_GroupedYearFilterOpeningBalance(t *testing.T) {
	raw := ledger.RawLedger{
		Accounts: []ledger.RawAccount{
			{Name: "Savings Account", Type: "Assets", Currency: "USD", Opened: date(2022, 3, 1), OpeningBalance: decPtr("500")},
			account("Salary", "Income", "USD", date(2022, 1, 1)),
		},
		Transactions: []ledger.RawTransaction{
			txn(date(2023, 5, 1), "Savings Account", "Salary", "20"),
		},
	}
	rows := Compute(build(t, raw), nil, Options{Year: 2023, GroupBy: ByQuarter})

	var got []string
	for _, r := range rows {
		got = append(got, r.Period.String()+" "+r.Account+" "+r.Amount.String())
	}
	assert.Equal(t, []string{
		"2023-Q1 Savings Account 500",
		"2023-Q2 Savings Account 20",
		"2023-Q2 Salary -20",
	}, got)

	rows = Compute(build(t, raw), nil, Options{GroupBy: ByQuarter})
	require.NotEmpty(t, rows)
	assert.Equal(t, "2022-Q1", rows[0].Period.String())
	assert.True(t, rows[0].Amount.Equal(dec("500")))
}

func TestCompute_ClassFilterKeepsAccumulation(t *testing.T) {
	l := build(t, householdLedger())
	rows := Compute(l, nil, Options{Classes: []model.AccountType{model.AccountTypeExpenses}})

	require.Len(t, rows, 3)
	for _, r := range rows {
		assert.Equal(t, model.AccountTypeExpenses, r.Type)
	}
	got := byName(rows)
	assert.Equal(t, "75.20", got["Dining"].Amount.StringFixed(2))
	assert.Equal(t, "0.00", got["Rent"].Amount.StringFixed(2), "declared accounts without activity still appear")
}

func TestCompute_Ordering(t *testing.T) {
	l := build(t, householdLedger())
	rows := Compute(l, nil, Options{})

	var names []string
	for _, r := range rows {
		names = append(names, r.Account)
	}
	assert.Equal(t, []string{
		"Savings Account",
		"Credit Card",
		"Dining", "Groceries", "Rent",
		"Salary",
	}, names)
}

func TestCompute_Quantity(t *testing.T) {
	raw := ledger.RawLedger{
		Accounts: []ledger.RawAccount{
			account("VOO", "Stock", "USD", date(2023, 1, 1)),
			account("Brokerage Cash", "Cash", "USD", date(2023, 1, 1)),
		},
		Transactions: []ledger.RawTransaction{
			{Date: date(2023, 9, 30), Account: "VOO", OffsetAccount: "Brokerage Cash", Amount: dec("390.50"), Quantity: decPtr("2"), OffsetAmount: decPtr("-781")},
		},
	}
	got := byName(Compute(build(t, raw), nil, Options{}))
	assert.True(t, got["VOO"].Amount.Equal(dec("781")))
	assert.True(t, got["Brokerage Cash"].Amount.Equal(dec("-781")))
}

func pesoLedger() ledger.RawLedger {
	return ledger.RawLedger{
		Accounts: []ledger.RawAccount{
			account("Pesos", "Cash", "ARS", date(2023, 9, 1)),
			account("Savings Account", "Assets", "USD", date(2023, 9, 1)),
			account("Travel", "Expenses", "EUR", date(2023, 9, 1)),
		},
		Transactions: []ledger.RawTransaction{
			{Date: date(2023, 10, 1), Account: "Pesos", OffsetAccount: "Savings Account", Amount: dec("10000"), OffsetAmount: decPtr("-12.60")},
			{Date: date(2023, 10, 1), Account: "Travel", OffsetAccount: "Pesos", Amount: dec("5"), OffsetAmount: decPtr("-4000")},
		},
		Prices: []ledger.RawPrice{
			{Date: date(2023, 9, 30), Commodity: "ARS", Price: dec("0.00125"), Currency: "USD"},
			{Date: date(2023, 10, 2), Commodity: "ARS", Price: dec("0.0013"), Currency: "USD"},
		},
	}
}

func TestCompute_PriceConversionYear(t *testing.T) {
	l := build(t, pesoLedger())
	got := byName(Compute(l, nil, Options{Year: 2023, PriceTarget: "USD", Today: date(2024, 1, 1)}))

	pesos := got["Pesos"]
	assert.Equal(t, "USD", pesos.Currency)
	assert.False(t, pesos.Unconverted)
	// 6000 ARS at the 2023-09-30 rate, the last one not after 2023-10-01.
	assert.True(t, pesos.Amount.Equal(dec("7.5")), "got %s", pesos.Amount)

	savings := got["Savings Account"]
	assert.Equal(t, "USD", savings.Currency)
	assert.True(t, savings.Amount.Equal(dec("-12.60")))
}

func TestCompute_PriceConversionToday(t *testing.T) {
	l := build(t, pesoLedger())
	got := byName(Compute(l, nil, Options{PriceTarget: "USD", Today: date(2023, 10, 5)}))
	assert.True(t, got["Pesos"].Amount.Equal(dec("7.8")), "got %s", got["Pesos"].Amount)

	got = byName(Compute(l, nil, Options{PriceTarget: "USD", Today: date(2023, 10, 1)}))
	assert.True(t, got["Pesos"].Amount.Equal(dec("7.5")), "got %s", got["Pesos"].Amount)
}

func TestCompute_MissingPriceLeavesRowUnconverted(t *testing.T) {
	l := build(t, pesoLedger())
	rows := Compute(l, nil, Options{PriceTarget: "USD", Today: date(2023, 10, 5)})
	require.Len(t, rows, 3, "a missing price does not drop rows")

	travel := byName(rows)["Travel"]
	assert.True(t, travel.Unconverted)
	assert.Equal(t, "EUR", travel.Currency)
	assert.True(t, travel.Amount.Equal(dec("5")))
	require.Error(t, travel.Err)
	assert.Contains(t, travel.Err.Error(), "EUR")
}

func TestCompute_GroupByMonth(t *testing.T) {
	l := build(t, householdLedger())
	rows := Compute(l, nil, Options{GroupBy: ByMonth, Classes: []model.AccountType{model.AccountTypeExpenses}})

	type key struct{ period, account, amount string }
	var got []key
	for _, r := range rows {
		require.NotNil(t, r.Period)
		got = append(got, key{r.Period.String(), r.Account, r.Amount.StringFixed(2)})
	}
	assert.Equal(t, []key{
		{"2023-02", "Dining", "45.20"},
		{"2023-02", "Groceries", "120.15"},
		{"2023-04", "Dining", "30.00"},
	}, got)
}

func TestCompute_GroupByQuarter(t *testing.T) {
	l := build(t, householdLedger())
	rows := Compute(l, nil, Options{GroupBy: ByQuarter, Classes: []model.AccountType{model.AccountTypeAssets}})

	require.Len(t, rows, 2)
	assert.Equal(t, "2023-Q1", rows[0].Period.String())
	assert.Equal(t, "2879.85", rows[0].Amount.StringFixed(2))
	assert.Equal(t, "2023-Q2", rows[1].Period.String())
	assert.Equal(t, "-75.20", rows[1].Amount.StringFixed(2))
}

func TestCompute_GroupByYear(t *testing.T) {
	raw := ledger.RawLedger{
		Accounts: []ledger.RawAccount{
			{Name: "Brokerage", Type: "Assets", Currency: "USD", Opened: date(2022, 1, 1), OpeningBalance: decPtr("10")},
			account("Equity", "Equity", "USD", date(2022, 1, 1)),
		},
		Transactions: []ledger.RawTransaction{
			txn(date(2022, 6, 1), "Brokerage", "Equity", "100"),
			txn(date(2023, 3, 1), "Brokerage", "Equity", "50"),
		},
	}
	rows := Compute(build(t, raw), nil, Options{GroupBy: ByYear})

	var got []string
	for _, r := range rows {
		got = append(got, r.Period.String()+" "+r.Account+" "+r.Amount.String())
	}
	assert.Equal(t, []string{
		"2022 Brokerage 110",
		"2022 Equity -100",
		"2023 Brokerage 50",
		"2023 Equity -50",
	}, got)
}

func TestCompute_GroupedConversionUsesPeriodDate(t *testing.T) {
	l := build(t, pesoLedger())
	rows := Compute(l, nil, Options{GroupBy: ByMonth, PriceTarget: "USD", Classes: []model.AccountType{model.AccountTypeCash}})
	require.Len(t, rows, 1)
	assert.Equal(t, "2023-10", rows[0].Period.String())
	assert.True(t, rows[0].Amount.Equal(dec("7.5")), "got %s", rows[0].Amount)
}

type fixedPrice struct{ rate decimal.Decimal }

func (f fixedPrice) PriceOf(string, time.Time, string) (decimal.Decimal, error) {
	return f.rate, nil
}

func TestCompute_CustomPriceSource(t *testing.T) {
	l := build(t, pesoLedger())
	got := byName(Compute(l, fixedPrice{rate: dec("2")}, Options{PriceTarget: "USD"}))
	assert.True(t, got["Travel"].Amount.Equal(dec("10")))
	assert.True(t, got["Savings Account"].Amount.Equal(dec("-12.60")), "same currency is never priced")
}

func TestParseGroupBy(t *testing.T) {
	tests := []struct {
		input string
		want  GroupBy
	}{
		{"", ByAccount},
		{"M", ByMonth},
		{"month", ByMonth},
		{"Q", ByQuarter},
		{"quarterly", ByQuarter},
		{"Y", ByYear},
		{"year", ByYear},
	}
	for _, tt := range tests {
		got, err := ParseGroupBy(tt.input)
		require.NoError(t, err, "input: %s", tt.input)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseGroupBy("W")
	assert.Error(t, err)
}

func TestPeriodString(t *testing.T) {
	d := date(2023, 11, 5)
	assert.Equal(t, "2023-11", periodOf(ByMonth, d).String())
	assert.Equal(t, "2023-Q4", periodOf(ByQuarter, d).String())
	assert.Equal(t, "2023", periodOf(ByYear, d).String())
}
