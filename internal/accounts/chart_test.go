package accounts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/tally/internal/ledger"
	"github.com/cleared-dev/tally/internal/model"
)

func TestStarterChart(t *testing.T) {
	opened := time.Date(2024, 1, 1, 15, 30, 0, 0, time.Local)

	for _, chart := range Charts {
		t.Run(string(chart), func(t *testing.T) {
			accts := StarterChart(chart, "EUR", opened)
			require.NotEmpty(t, accts)

			names := make(map[string]bool)
			for _, a := range accts {
				assert.False(t, names[a.Name], "duplicate %s", a.Name)
				names[a.Name] = true
				assert.Equal(t, "EUR", a.Currency)
				assert.Equal(t, model.Day(opened), a.Opened)
				assert.Nil(t, a.OpeningBalance)
			}
			assert.True(t, names[Checking])
			assert.True(t, names[Uncategorized])
		})
	}
}

func TestStarterChart_Builds(t *testing.T) {
	var raw ledger.RawLedger
	for _, a := range StarterChart(ChartHousehold, "USD", time.Now()) {
		raw.Accounts = append(raw.Accounts, ledger.RawAccount{
			Name:     a.Name,
			Type:     string(a.Type),
			Currency: a.Currency,
			Opened:   a.Opened,
			Source:   "starter",
		})
	}
	l, err := ledger.Build(raw)
	require.NoError(t, err)
	assert.Len(t, l.Accounts(), 12)
}

func TestStarterChart_UnknownFallsBack(t *testing.T) {
	assert.Equal(t,
		StarterChart(ChartMinimal, "USD", time.Time{}),
		StarterChart("corporate", "USD", time.Time{}))
}

func TestParse(t *testing.T) {
	c, ok := Parse("household")
	assert.True(t, ok)
	assert.Equal(t, ChartHousehold, c)

	_, ok = Parse("Household")
	assert.False(t, ok)
}
