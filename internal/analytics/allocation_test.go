package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/model"
)

func TestAllocation(t *testing.T) {
	schemes := sampleSnapshot().SchemeDetails

	t.Run("category shares sum to 100", func(t *testing.T) {
		got := Allocation(schemes, model.DimensionCategory)

		require.Len(t, got, 2)
		assert.Equal(t, "Equity", got[0].Label)
		assert.InDelta(t, 80000, got[0].Value, 1e-9)
		assert.InDelta(t, 80, got[0].Percent, 1e-9)
		assert.Equal(t, "Debt", got[1].Label)
		assert.InDelta(t, 20, got[1].Percent, 1e-9)
	})

	t.Run("zero value schemes are ignored", func(t *testing.T) {
		got := Allocation(schemes, model.DimensionAMC)

		for _, s := range got {
			assert.NotEqual(t, "Delta AMC", s.Label)
		}
	})

	t.Run("missing sector becomes Others", func(t *testing.T) {
		in := []model.SchemeDetail{
			{ISIN: "X", CurrentVal: 10},
			{ISIN: "Y", Sector: "Banking", CurrentVal: 30},
		}

		got := Allocation(in, model.DimensionSector)

		require.Len(t, got, 2)
		assert.Equal(t, "Banking", got[0].Label)
		assert.Equal(t, model.OthersTag, got[1].Label)
		assert.InDelta(t, 25, got[1].Percent, 1e-9)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, Allocation(nil, model.DimensionCap))
	})
}

func TestSegmentReturns(t *testing.T) {
	snap := sampleSnapshot()
	v := model.DefaultViewState()
	schemes := FilteredSchemes(snap, v)
	flows := FilteredCashFlows(snap, v)

	got := SegmentReturns(schemes, flows, model.DimensionCategory)

	require.Len(t, got, 2)
	labels := []string{got[0].Label, got[1].Label}
	assert.ElementsMatch(t, []string{"Equity", "Debt"}, labels)
	assert.GreaterOrEqual(t, got[0].XIRR, got[1].XIRR)
	for _, s := range got {
		assert.Greater(t, s.XIRR, 0.0)
	}

	t.Run("flows outside the lookup are excluded", func(t *testing.T) {
		onlyAlpha := FilteredSchemes(snap, v.WithSelection(model.DimensionAMC, "Alpha AMC"))

		got := SegmentReturns(onlyAlpha, snap.CashFlows, model.DimensionAMC)

		require.Len(t, got, 1)
		assert.Equal(t, "Alpha AMC", got[0].Label)
		assert.Equal(t, 4, got[0].Flows)
	})

	t.Run("near zero returns are dropped", func(t *testing.T) {
		flat := []model.SchemeDetail{{ISIN: "Z", Category: "Cash", CurrentVal: 1}}
		flatFlows := []model.CashFlow{
			{ISIN: "Z", Date: model.NewDate(2021, 1, 1), Amount: -1000},
			{ISIN: "Z", Date: model.NewDate(2022, 1, 1), Amount: 1000},
		}

		assert.Empty(t, SegmentReturns(flat, flatFlows, model.DimensionCategory))
	})
}
