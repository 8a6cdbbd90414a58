package balance

import (
	"fmt"
	"strings"
	"time"

	"github.com/cleared-dev/tally/internal/model"
)

// GroupBy selects how balances are bucketed.
type GroupBy int

const (
	// ByAccount reports one row per account.
	ByAccount GroupBy = iota
	ByMonth
	ByQuarter
	ByYear
)

func (g GroupBy) String() string {
	switch g {
	case ByMonth:
		return "month"
	case ByQuarter:
		return "quarter"
	case ByYear:
		return "year"
	default:
		return "account"
	}
}

// ParseGroupBy accepts the single-letter forms M, Q and Y as well as the
// full period names. An empty string means ByAccount.
func ParseGroupBy(s string) (GroupBy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "account":
		return ByAccount, nil
	case "m", "month", "monthly":
		return ByMonth, nil
	case "q", "quarter", "quarterly":
		return ByQuarter, nil
	case "y", "year", "yearly":
		return ByYear, nil
	default:
		return ByAccount, fmt.Errorf("unknown grouping %q (want M, Q or Y)", s)
	}
}

// Period is a Month, Quarter or Year bucket.
type Period struct {
	Kind GroupBy
	Year int
	Part int // month 1..12 or quarter 1..4; zero for ByYear
}

func periodOf(kind GroupBy, d time.Time) Period {
	switch kind {
	case ByMonth:
		return Period{Kind: kind, Year: d.Year(), Part: int(d.Month())}
	case ByQuarter:
		return Period{Kind: kind, Year: d.Year(), Part: model.Quarter(d.Month())}
	default:
		return Period{Kind: ByYear, Year: d.Year()}
	}
}

// Before reports whether p sorts before o.
func (p Period) Before(o Period) bool {
	if p.Year != o.Year {
		return p.Year < o.Year
	}
	return p.Part < o.Part
}

func (p Period) String() string {
	switch p.Kind {
	case ByMonth:
		return fmt.Sprintf("%04d-%02d", p.Year, p.Part)
	case ByQuarter:
		return fmt.Sprintf("%04d-Q%d", p.Year, p.Part)
	default:
		return fmt.Sprintf("%04d", p.Year)
	}
}
