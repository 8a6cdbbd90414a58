// Package prices resolves commodity prices on a date.
package prices

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tally/internal/model"
)

// ErrNoPriceAvailable is matched by NoPriceAvailableError.
var ErrNoPriceAvailable = errors.New("no price available")

// NoPriceAvailableError is returned when no price of Commodity in Currency
// exists on or before Date.
type NoPriceAvailableError struct {
	Commodity string
	Currency  string
	Date      time.Time
}

func (e *NoPriceAvailableError) Error() string {
	return fmt.Sprintf("no price of %s in %s on or before %s", e.Commodity, e.Currency, e.Date.Format(model.DateFormat))
}

func (e *NoPriceAvailableError) Is(target error) bool { return target == ErrNoPriceAvailable }

type entry struct {
	date     time.Time
	price    decimal.Decimal
	currency string
}

// Resolver answers price lookups using the most recent price not after the
// query date. It never interpolates and never looks forward in time.
type Resolver struct {
	// byCommodity holds entries sorted by date ascending.
	byCommodity map[string][]entry
}

// NewResolver indexes prices by commodity.
func NewResolver(prices []model.Price) *Resolver {
	r := &Resolver{byCommodity: make(map[string][]entry)}
	for _, p := range prices {
		r.byCommodity[p.Commodity] = append(r.byCommodity[p.Commodity], entry{
			date:     model.Day(p.Date),
			price:    p.Price,
			currency: p.Currency,
		})
	}
	for _, entries := range r.byCommodity {
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].date.Before(entries[j].date)
		})
	}
	return r
}

// PriceOf returns the value of one unit of commodity in target on date.
// Pricing a commodity in itself always returns 1.
func (r *Resolver) PriceOf(commodity string, date time.Time, target string) (decimal.Decimal, error) {
	if commodity == target {
		return decimal.NewFromInt(1), nil
	}

	day := model.Day(date)
	entries := r.byCommodity[commodity]
	// First index with a date after day; everything before it is eligible.
	n := sort.Search(len(entries), func(i int) bool {
		return entries[i].date.After(day)
	})
	for i := n - 1; i >= 0; i-- {
		if entries[i].currency == target {
			return entries[i].price, nil
		}
	}

	return decimal.Zero, &NoPriceAvailableError{Commodity: commodity, Currency: target, Date: day}
}
