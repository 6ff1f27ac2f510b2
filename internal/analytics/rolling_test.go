package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/model"
)

func rollingSnapshot() *model.Snapshot {
	snap := sampleSnapshot()
	snap.RollingStats = model.RollingStats{
		"INF001": {"1Y": {Latest: 12, Min: -4, Max: 30, Mean: 14, Median: 13}},
		"INF002": {"1Y": {Latest: 9, Min: 1, Max: 20, Mean: 11, Median: 10}, "3Y": {Mean: 15}},
		"INF003": {"3Y": {Mean: 7}},
		"INF004": {"1Y": {Mean: 99}},
		"INF999": {"1Y": {Mean: 50}},
	}
	return snap
}

func TestRollingView(t *testing.T) {
	snap := rollingSnapshot()
	v := model.DefaultViewState()
	schemes := FilteredSchemes(snap, v)

	t.Run("default sort is mean descending over filtered ISINs", func(t *testing.T) {
		view := RollingView(snap, schemes, v)

		require.Len(t, view.Rows, 2)
		assert.Equal(t, "INF001", view.Rows[0].ISIN)
		assert.Equal(t, "Alpha Bluechip Fund", view.Rows[0].Name)
		assert.Equal(t, "INF002", view.Rows[1].ISIN)
		assert.Equal(t, "1Y", view.Period)
	})

	t.Run("missing period is skipped", func(t *testing.T) {
		v3 := v
		v3.RollingPeriod = "3Y"

		view := RollingView(snap, schemes, v3)

		require.Len(t, view.Rows, 2)
		assert.Equal(t, "INF002", view.Rows[0].ISIN)
		assert.Equal(t, "INF003", view.Rows[1].ISIN)
	})

	t.Run("name sort ascending", func(t *testing.T) {
		byName := v.WithRollingSort("name").WithRollingSort("name")
		require.Equal(t, model.SortAsc, byName.RollingSort.Order)

		view := RollingView(snap, schemes, byName)

		assert.Equal(t, "Alpha Bluechip Fund", view.Rows[0].Name)
		assert.Equal(t, "Beta Flexi Cap Fund", view.Rows[1].Name)
	})

	t.Run("name falls back to ISIN", func(t *testing.T) {
		extra := append(schemes, model.SchemeDetail{ISIN: "INF999", CurrentVal: 1})
		snapNoName := rollingSnapshot()

		view := RollingView(snapNoName, extra, v)

		require.Len(t, view.Rows, 3)
		assert.Equal(t, "INF999", view.Rows[0].Name)
	})
}

func TestComparison(t *testing.T) {
	snap := sampleSnapshot()
	snap.PerformanceComparison = []model.PerformanceEntry{
		{ISIN: "INF001", Fund: "Alpha Bluechip Fund", FundCAGR: 20, Years: 1},
		{ISIN: "INF004", Fund: "Delta Liquid Fund", FundCAGR: 5, Years: 1},
	}
	v := model.DefaultViewState()

	rows := Comparison(snap, FilteredSchemes(snap, v), FilteredCashFlows(snap, v))

	require.Len(t, rows, 1)
	assert.Equal(t, "INF001", rows[0].ISIN)
	assert.InDelta(t, 25.0, rows[0].InvestorXIRR, 0.05)
	assert.InDelta(t, rows[0].InvestorXIRR-20, rows[0].Alpha, 1e-9)
}
