package importer

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Chase(t *testing.T) {
	f, err := os.Open("testdata/chase_checking.csv")
	require.NoError(t, err)
	defer f.Close()

	res, err := Run(f, ChasePreset.Normalizer("Uncategorized", "Checking"))
	require.NoError(t, err)
	require.Len(t, res.Entries, 6)
	assert.Empty(t, res.Skipped)

	first := res.Entries[0]
	assert.Equal(t, 2, first.Row)
	assert.Equal(t, "GITHUB *PRO SUBSCRIPTION", first.Transaction.Payee)
	assert.Equal(t, "ACH_DEBIT", first.Transaction.Note)
	assert.Equal(t, "4.00", first.Transaction.Amount.StringFixed(2))
	assert.Equal(t, "-4.00", first.Transaction.OffsetAmount.StringFixed(2))
	assert.Equal(t, "Uncategorized", first.Transaction.Account)
	assert.Equal(t, "Checking", first.Transaction.OffsetAccount)
	assert.Equal(t, 2025, first.Transaction.Date.Year())
	assert.Equal(t, 3, first.Transaction.Date.Day())

	assert.Equal(t, "STAPLES, INC 0042", res.Entries[2].Transaction.Payee)

	income := res.Entries[3].Transaction
	assert.Equal(t, "ACME CONSULTING INVOICE 1042", income.Payee)
	assert.Equal(t, "3500.00", income.OffsetAmount.StringFixed(2))

	last := res.Entries[5].Transaction
	assert.Equal(t, 22, last.Date.Day())
	assert.Len(t, res.Transactions(), 6)
}

func TestRun_SkipsBadRowsAndContinues(t *testing.T) {
	data := "date,amount,payee\n" +
		"01/10/2023,(123.45),Cafe\n" +
		"2023-10-02,10.00,Bad date\n" +
		"03/10/2023,ten,Bad amount\n" +
		"04/10/2023,,No amount\n" +
		"05/10/2023,\"1,250.00\",Rent\n"

	n := Normalizer{
		Mapping: Mapping{
			Date:                 "date",
			Amount:               "amount",
			Payee:                "payee",
			DefaultAccount:       "Uncategorized",
			DefaultOffsetAccount: "Checking",
		},
		DateFormat: "%d/%m/%Y",
	}
	res, err := Run(strings.NewReader(data), n)
	require.NoError(t, err)

	require.Len(t, res.Entries, 2)
	assert.Equal(t, "-123.45", res.Entries[0].Transaction.Amount.String())
	assert.Equal(t, 2, res.Entries[0].Row)
	assert.Equal(t, "1250", res.Entries[1].Transaction.Amount.String())
	assert.Equal(t, 6, res.Entries[1].Row)

	require.Len(t, res.Skipped, 3)
	for _, s := range res.Skipped {
		assert.True(t, errors.Is(s.Err, ErrImport), "row %d", s.Row)
	}

	var dateErr *DateParseError
	require.ErrorAs(t, res.Skipped[0].Err, &dateErr)
	assert.Equal(t, 3, dateErr.Row)
	assert.Equal(t, "2023-10-02", dateErr.Value)
	assert.Contains(t, dateErr.Error(), "row 3: parsing date")

	var amountErr *AmountParseError
	require.ErrorAs(t, res.Skipped[1].Err, &amountErr)
	assert.Equal(t, 4, amountErr.Row)

	var missing *MissingFieldError
	require.ErrorAs(t, res.Skipped[2].Err, &missing)
	assert.Equal(t, 5, missing.Row)
}

func TestRun_MalformedLineIsSkipped(t *testing.T) {
	data := "date,amount\n" +
		"01/10/2023,5\n" +
		"02/10/2023,6 \"x\n" +
		"03/10/2023,7\n"
	n := Normalizer{
		Mapping:    Mapping{Date: "date", Amount: "amount", DefaultAccount: "A", DefaultOffsetAccount: "B"},
		DateFormat: "%d/%m/%Y",
	}
	res, err := Run(strings.NewReader(data), n)
	require.NoError(t, err)
	require.Len(t, res.Entries, 2)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, 3, res.Skipped[0].Row)
	assert.True(t, errors.Is(res.Skipped[0].Err, ErrImport))
}

func TestRun_HeaderOnly(t *testing.T) {
	res, err := Run(strings.NewReader("Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #\n"), ChasePreset.Normalizer("A", "B"))
	require.NoError(t, err)
	assert.Empty(t, res.Entries)
	assert.Empty(t, res.Skipped)
}

func TestRun_EmptyInput(t *testing.T) {
	res, err := Run(strings.NewReader(""), GenericPreset.Normalizer("", ""))
	require.NoError(t, err)
	assert.Empty(t, res.Entries)
}

func TestRun_MissingColumnAborts(t *testing.T) {
	_, err := Run(strings.NewReader("when,amount\n01/10/2023,5\n"), GenericPreset.Normalizer("", ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no column "date"`)
}

func TestRun_OptionalColumnsMayBeAbsent(t *testing.T) {
	res, err := Run(strings.NewReader("date,amount\n01/10/2023,-5\n"), GenericPreset.Normalizer("Dining", "Checking"))
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	txn := res.Entries[0].Transaction
	assert.Equal(t, "Dining", txn.Account)
	assert.Equal(t, "5", txn.Amount.String())
	assert.Empty(t, txn.Payee)
}

func TestRun_BadMappingAborts(t *testing.T) {
	_, err := Run(strings.NewReader("a,b\n"), Normalizer{Mapping: Mapping{Amount: "a"}})
	assert.ErrorContains(t, err, "date column is required")

	_, err = Run(strings.NewReader("a,b\n"), Normalizer{Mapping: Mapping{Date: "a", Amount: "b"}, DateFormat: "%d/%m"})
	assert.ErrorContains(t, err, `invalid date format "%d/%m"`)
}

func TestRun_GenericPresetMakesAmountsAbsolute(t *testing.T) {
	data := "\ufeffdate,account,offset_account,amount,payee,quantity,note\n" +
		"01/10/2023,Dining,Savings Account,-24.50,Cafe,,\n" +
		"02/10/2023,Broker,Savings Account,101.25,,5,buy\n"

	res, err := Run(strings.NewReader(data), GenericPreset.Normalizer("", ""))
	require.NoError(t, err)
	require.Len(t, res.Entries, 2)

	meal := res.Entries[0].Transaction
	assert.Equal(t, "Dining", meal.Account)
	assert.Equal(t, "Savings Account", meal.OffsetAccount)
	assert.Equal(t, "24.5", meal.Amount.String())
	assert.Equal(t, "-24.5", meal.OffsetAmount.String())

	buy := res.Entries[1].Transaction
	assert.Equal(t, "5", buy.Quantity.String())
	assert.Equal(t, "buy", buy.Note)
}

func TestRun_ShortRecordsAndBlankLines(t *testing.T) {
	data := "date,amount,payee\n" +
		"01/10/2023,5\n" +
		",,\n" +
		"02/10/2023,6,Shop\n"
	n := Normalizer{
		Mapping:    Mapping{Date: "date", Amount: "amount", Payee: "payee", DefaultAccount: "A", DefaultOffsetAccount: "B"},
		DateFormat: "%d/%m/%Y",
	}
	res, err := Run(strings.NewReader(data), n)
	require.NoError(t, err)
	require.Len(t, res.Entries, 2)
	assert.Empty(t, res.Skipped)
	assert.Equal(t, "", res.Entries[0].Transaction.Payee)
	assert.Equal(t, 4, res.Entries[1].Row)
}
