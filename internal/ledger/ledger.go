// Package ledger turns parsed ledger records into a validated, queryable Ledger.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tally/internal/model"
)

// Ledger is the validated set of accounts, transactions and prices.
// It is read-only once built.
type Ledger struct {
	accounts     []model.Account
	byName       map[string]int
	transactions []model.Transaction
	prices       []model.Price
}

// Account returns the account with the given name.
func (l *Ledger) Account(name string) (model.Account, bool) {
	i, ok := l.byName[name]
	if !ok {
		return model.Account{}, false
	}
	return l.accounts[i], true
}

// Accounts returns all accounts in declaration order.
func (l *Ledger) Accounts() []model.Account {
	return l.accounts
}

// Transactions returns all transactions in declaration order.
func (l *Ledger) Transactions() []model.Transaction {
	return l.transactions
}

// Prices returns all prices in declaration order.
func (l *Ledger) Prices() []model.Price {
	return l.prices
}

type priceKey struct {
	commodity string
	currency  string
	date      time.Time
}

// Build validates raw and returns the Ledger it describes. Any violation
// fails the whole build; no partial ledger is returned.
//
// Checks run in order: account names are unique, account types are known,
// transactions reference declared accounts, the two legs differ, and no
// transaction predates an account it touches. Prices must be positive and
// unique per commodity, currency and date.
func Build(raw RawLedger) (*Ledger, error) {
	l := &Ledger{
		byName: make(map[string]int, len(raw.Accounts)),
	}

	sources := make(map[string]string, len(raw.Accounts))
	for _, ra := range raw.Accounts {
		if first, ok := sources[ra.Name]; ok {
			return nil, &DuplicateAccountError{Name: ra.Name, Source: ra.Source, First: first}
		}
		sources[ra.Name] = ra.Source
	}

	for _, ra := range raw.Accounts {
		at, err := model.ParseAccountType(ra.Type)
		if err != nil {
			return nil, &UnknownAccountTypeError{Account: ra.Name, Value: ra.Type, Source: ra.Source}
		}
		l.byName[ra.Name] = len(l.accounts)
		l.accounts = append(l.accounts, model.Account{
			Name:           ra.Name,
			Type:           at,
			Currency:       ra.Currency,
			Opened:         model.Day(ra.Opened),
			OpeningBalance: ra.OpeningBalance,
		})
	}

	txns := make([]model.Transaction, len(raw.Transactions))
	for i, rt := range raw.Transactions {
		txns[i] = resolveDefaults(rt)
	}

	for i, t := range txns {
		for _, name := range []string{t.Account, t.OffsetAccount} {
			if _, ok := l.byName[name]; !ok {
				return nil, &UnknownAccountError{Name: name, Date: t.Date, Source: raw.Transactions[i].Source}
			}
		}
	}

	for i, t := range txns {
		if t.Account == t.OffsetAccount {
			return nil, &SelfReferencingTransactionError{
				Account: t.Account,
				Date:    t.Date,
				Amount:  t.Amount,
				Source:  raw.Transactions[i].Source,
			}
		}
	}

	for i, t := range txns {
		for _, name := range []string{t.Account, t.OffsetAccount} {
			acct, _ := l.Account(name)
			if t.Date.Before(acct.Opened) {
				return nil, &TransactionBeforeAccountOpenError{
					Account: name,
					Opened:  acct.Opened,
					Date:    t.Date,
					Source:  raw.Transactions[i].Source,
				}
			}
		}
	}
	l.transactions = txns

	seen := make(map[priceKey]bool, len(raw.Prices))
	for _, rp := range raw.Prices {
		date := model.Day(rp.Date)
		if !rp.Price.IsPositive() {
			return nil, &InvalidPriceError{Commodity: rp.Commodity, Price: rp.Price, Date: date, Source: rp.Source}
		}
		key := priceKey{commodity: rp.Commodity, currency: rp.Currency, date: date}
		if seen[key] {
			return nil, &DuplicatePriceError{Commodity: rp.Commodity, Currency: rp.Currency, Date: date, Source: rp.Source}
		}
		seen[key] = true
		l.prices = append(l.prices, model.Price{
			Date:      date,
			Commodity: rp.Commodity,
			Price:     rp.Price,
			Currency:  rp.Currency,
		})
	}

	return l, nil
}

// resolveDefaults fills OffsetAmount (-Amount) and Quantity (1) when absent.
func resolveDefaults(rt RawTransaction) model.Transaction {
	offset := rt.Amount.Neg()
	if rt.OffsetAmount != nil {
		offset = *rt.OffsetAmount
	}
	qty := decimal.NewFromInt(1)
	if rt.Quantity != nil {
		qty = *rt.Quantity
	}
	return model.Transaction{
		Date:          model.Day(rt.Date),
		Account:       rt.Account,
		OffsetAccount: rt.OffsetAccount,
		Amount:        rt.Amount,
		OffsetAmount:  offset,
		Quantity:      qty,
		Payee:         rt.Payee,
		Note:          rt.Note,
	}
}
