// Package balance accumulates transaction postings into account balances.
package balance

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tally/internal/ledger"
	"github.com/cleared-dev/tally/internal/model"
	"github.com/cleared-dev/tally/internal/prices"
)

// PriceSource prices one unit of a commodity in a target currency.
type PriceSource interface {
	PriceOf(commodity string, date time.Time, target string) (decimal.Decimal, error)
}

// Options selects and shapes a balance report.
type Options struct {
	Classes     []model.AccountType // empty reports every class
	Year        int                 // zero reports all years
	PriceTarget string              // empty leaves balances in account currency
	GroupBy     GroupBy
	Today       time.Time // pricing date without a year filter; zero means now
}

// Row is one reported balance.
type Row struct {
	Account  string
	Type     model.AccountType
	Currency string // PriceTarget when converted, else the account currency
	Amount   decimal.Decimal
	Period   *Period // nil for ByAccount

	// Unconverted is set when a PriceTarget was requested but no price was
	// found; Amount is then in the account currency and Err says why.
	Unconverted bool
	Err         error
}

// Compute returns balances for every reportable account.
//
// Every posting in scope accumulates, whatever the class of the account it
// touches; the class filter only limits which accounts are reported. A year
// filter limits transactions to that calendar year. Opening balances always
// seed the running totals, whatever the year.
//
// Flat reports list every declared account passing the class filter, at
// zero when nothing touched it. Grouped reports list only (account, period)
// pairs with postings; an opening balance posts into the period of the open
// date, or of January 1 of the filter year when the account opened in
// another year.
//
// When src is nil the ledger's own prices are used.
func Compute(l *ledger.Ledger, src PriceSource, opts Options) []Row {
	if src == nil {
		src = prices.NewResolver(l.Prices())
	}
	if opts.GroupBy == ByAccount {
		return computeFlat(l, src, opts)
	}
	return computeGrouped(l, src, opts)
}

func computeFlat(l *ledger.Ledger, src PriceSource, opts Options) []Row {
	totals := make(map[string]decimal.Decimal, len(l.Accounts()))
	for _, a := range l.Accounts() {
		totals[a.Name] = a.Opening()
	}

	var latest time.Time
	for _, t := range l.Transactions() {
		if !opts.inYear(t.Date) {
			continue
		}
		totals[t.Account] = totals[t.Account].Add(t.Posting())
		totals[t.OffsetAccount] = totals[t.OffsetAccount].Add(t.OffsetAmount)
		if t.Date.After(latest) {
			latest = t.Date
		}
	}
	ref := opts.referenceDate(latest)

	var rows []Row
	for _, a := range reportable(l, opts) {
		row := Row{Account: a.Name, Type: a.Type, Amount: totals[a.Name]}
		convert(&row, a, src, opts.PriceTarget, ref)
		rows = append(rows, row)
	}
	return rows
}

type bucket struct {
	totals map[string]decimal.Decimal
	latest time.Time
}

func computeGrouped(l *ledger.Ledger, src PriceSource, opts Options) []Row {
	buckets := make(map[Period]*bucket)
	post := func(name string, d time.Time, amount decimal.Decimal) {
		p := periodOf(opts.GroupBy, d)
		b, ok := buckets[p]
		if !ok {
			b = &bucket{totals: make(map[string]decimal.Decimal)}
			buckets[p] = b
		}
		b.totals[name] = b.totals[name].Add(amount)
		if d.After(b.latest) {
			b.latest = d
		}
	}

	for _, a := range l.Accounts() {
		if a.OpeningBalance != nil {
			post(a.Name, opts.openingDate(a), *a.OpeningBalance)
		}
	}
	for _, t := range l.Transactions() {
		if !opts.inYear(t.Date) {
			continue
		}
		post(t.Account, t.Date, t.Posting())
		post(t.OffsetAccount, t.Date, t.OffsetAmount)
	}

	periods := make([]Period, 0, len(buckets))
	for p := range buckets {
		periods = append(periods, p)
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].Before(periods[j]) })

	accounts := reportable(l, opts)
	var rows []Row
	for _, p := range periods {
		b := buckets[p]
		for _, a := range accounts {
			amount, ok := b.totals[a.Name]
			if !ok {
				continue
			}
			period := p
			row := Row{Account: a.Name, Type: a.Type, Amount: amount, Period: &period}
			convert(&row, a, src, opts.PriceTarget, b.latest)
			rows = append(rows, row)
		}
	}
	return rows
}

// reportable returns the accounts passing the class filter,
// ordered by class then name.
func reportable(l *ledger.Ledger, opts Options) []model.Account {
	var out []model.Account
	for _, a := range l.Accounts() {
		if !opts.hasClass(a.Type) {
			continue
		}
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if ri, rj := out[i].Type.Rank(), out[j].Type.Rank(); ri != rj {
			return ri < rj
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func convert(row *Row, a model.Account, src PriceSource, target string, ref time.Time) {
	row.Currency = a.Currency
	if target == "" || a.Currency == target {
		if target != "" {
			row.Currency = target
		}
		return
	}
	rate, err := src.PriceOf(a.Currency, ref, target)
	if err != nil {
		row.Unconverted = true
		row.Err = err
		return
	}
	row.Amount = row.Amount.Mul(rate)
	row.Currency = target
}

// openingDate is where a grouped report posts an opening balance.
func (o Options) openingDate(a model.Account) time.Time {
	if o.Year == 0 || a.Opened.Year() == o.Year {
		return a.Opened
	}
	return time.Date(o.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
}

func (o Options) inYear(d time.Time) bool {
	return o.Year == 0 || d.Year() == o.Year
}

func (o Options) hasClass(t model.AccountType) bool {
	if len(o.Classes) == 0 {
		return true
	}
	for _, c := range o.Classes {
		if c == t {
			return true
		}
	}
	return false
}

func (o Options) today() time.Time {
	if o.Today.IsZero() {
		return model.Day(time.Now())
	}
	return model.Day(o.Today)
}

// referenceDate is the pricing date for a flat report: today without a year
// filter, otherwise the latest posting of the year, falling back to the end
// of the year (or today, if earlier) when the year has no postings.
func (o Options) referenceDate(latest time.Time) time.Time {
	if o.Year == 0 {
		return o.today()
	}
	if !latest.IsZero() {
		return latest
	}
	end := time.Date(o.Year, time.December, 31, 0, 0, 0, 0, time.UTC)
	if today := o.today(); today.Before(end) {
		return today
	}
	return end
}
