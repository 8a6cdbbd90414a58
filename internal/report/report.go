// Package report renders balances, journals and account lists as aligned
// text tables.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tally/internal/balance"
	"github.com/cleared-dev/tally/internal/journal"
	"github.com/cleared-dev/tally/internal/model"
)

// Renderer writes reports to one output. Colors are used only when the
// output is a terminal.
type Renderer struct {
	out      io.Writer
	header   lipgloss.Style
	negative lipgloss.Style
	warn     lipgloss.Style
	muted    lipgloss.Style
}

// New creates a Renderer for w.
func New(w io.Writer) *Renderer {
	r := lipgloss.NewRenderer(w)
	return &Renderer{
		out:      w,
		header:   r.NewStyle().Bold(true),
		negative: r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#D70000", Dark: "#FF5F87"}),
		warn:     r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#AF5F00", Dark: "#FFAF00"}),
		muted:    r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#808080", Dark: "#808080"}),
	}
}

// unconvertedMark flags amounts left in account currency.
const unconvertedMark = "*"

// Balances renders balance rows. Grouped rows are pivoted into one column
// per period.
func (r *Renderer) Balances(rows []balance.Row, group balance.GroupBy) error {
	if len(rows) == 0 {
		return r.line(r.muted.Render("no accounts"))
	}
	if group == balance.ByAccount {
		return r.flatBalances(rows)
	}
	return r.groupedBalances(rows)
}

func (r *Renderer) flatBalances(rows []balance.Row) error {
	t := table{columns: []column{
		{title: "TYPE"},
		{title: "ACCOUNT"},
		{title: "BALANCE", align: alignRight},
		{title: "CURRENCY"},
	}}
	for _, row := range rows {
		t.add(
			cell{text: string(row.Type)},
			cell{text: row.Account},
			r.amountCell(row.Amount, row.Unconverted),
			cell{text: row.Currency},
		)
	}
	if err := t.write(r.out, r.header); err != nil {
		return err
	}
	return r.footnotes(rows)
}

type pivotKey struct {
	account  string
	currency string
}

func (r *Renderer) groupedBalances(rows []balance.Row) error {
	var periods []balance.Period
	seenPeriod := make(map[balance.Period]bool)
	var keys []pivotKey
	types := make(map[pivotKey]model.AccountType)
	cells := make(map[pivotKey]map[balance.Period]balance.Row)

	for _, row := range rows {
		if row.Period == nil {
			continue
		}
		p := *row.Period
		if !seenPeriod[p] {
			seenPeriod[p] = true
			periods = append(periods, p)
		}
		k := pivotKey{account: row.Account, currency: row.Currency}
		if _, ok := cells[k]; !ok {
			keys = append(keys, k)
			types[k] = row.Type
			cells[k] = make(map[balance.Period]balance.Row)
		}
		cells[k][p] = row
	}

	sort.Slice(periods, func(i, j int) bool { return periods[i].Before(periods[j]) })
	sort.SliceStable(keys, func(i, j int) bool {
		if ri, rj := types[keys[i]].Rank(), types[keys[j]].Rank(); ri != rj {
			return ri < rj
		}
		if keys[i].account != keys[j].account {
			return keys[i].account < keys[j].account
		}
		return keys[i].currency < keys[j].currency
	})

	t := table{columns: []column{{title: "TYPE"}, {title: "ACCOUNT"}, {title: "CURRENCY"}}}
	for _, p := range periods {
		t.columns = append(t.columns, column{title: p.String(), align: alignRight})
	}
	for _, k := range keys {
		line := []cell{{text: string(types[k])}, {text: k.account}, {text: k.currency}}
		for _, p := range periods {
			row, ok := cells[k][p]
			if !ok {
				line = append(line, cell{})
				continue
			}
			line = append(line, r.amountCell(row.Amount, row.Unconverted))
		}
		t.add(line...)
	}
	if err := t.write(r.out, r.header); err != nil {
		return err
	}
	return r.footnotes(rows)
}

// footnotes lists each distinct conversion failure once.
func (r *Renderer) footnotes(rows []balance.Row) error {
	seen := make(map[string]bool)
	for _, row := range rows {
		if !row.Unconverted || row.Err == nil {
			continue
		}
		msg := row.Err.Error()
		if seen[msg] {
			continue
		}
		if len(seen) == 0 {
			if err := r.line(""); err != nil {
				return err
			}
		}
		seen[msg] = true
		if err := r.line(r.warn.Render(unconvertedMark + " not converted: " + msg)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) amountCell(d decimal.Decimal, unconverted bool) cell {
	text := FormatAmount(d)
	if unconverted {
		return cell{text: text + unconvertedMark, style: &r.warn}
	}
	if d.IsNegative() {
		return cell{text: text, style: &r.negative}
	}
	return cell{text: text}
}

// Journal renders journal rows.
func (r *Renderer) Journal(rows []journal.Row) error {
	if len(rows) == 0 {
		return r.line(r.muted.Render("no transactions"))
	}
	t := table{columns: []column{
		{title: "DATE"},
		{title: "ACCOUNT"},
		{title: "AMOUNT", align: alignRight},
		{title: "CURRENCY"},
		{title: "PAYEE"},
		{title: "NOTE"},
	}}
	for _, row := range rows {
		t.add(
			cell{text: row.Date.Format(model.DateFormat)},
			cell{text: row.Account},
			r.amountCell(row.Amount, false),
			cell{text: row.Currency},
			cell{text: row.Payee},
			cell{text: row.Note, style: &r.muted},
		)
	}
	return t.write(r.out, r.header)
}

// Accounts renders declared accounts.
func (r *Renderer) Accounts(accounts []model.Account) error {
	if len(accounts) == 0 {
		return r.line(r.muted.Render("no accounts"))
	}
	t := table{columns: []column{
		{title: "OPENED"},
		{title: "TYPE"},
		{title: "ACCOUNT"},
		{title: "CURRENCY"},
		{title: "OPENING", align: alignRight},
	}}
	for _, a := range accounts {
		opening := cell{}
		if a.OpeningBalance != nil {
			opening = r.amountCell(*a.OpeningBalance, false)
		}
		t.add(
			cell{text: a.Opened.Format(model.DateFormat)},
			cell{text: string(a.Type)},
			cell{text: a.Name},
			cell{text: a.Currency},
			opening,
		)
	}
	return t.write(r.out, r.header)
}

func (r *Renderer) line(s string) error {
	if _, err := fmt.Fprintln(r.out, s); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// FormatAmount shows at least two decimal places, and more when the value
// needs them.
func FormatAmount(d decimal.Decimal) string {
	fixed := d.StringFixed(2)
	if decimal.RequireFromString(fixed).Equal(d) {
		return fixed
	}
	return d.String()
}
