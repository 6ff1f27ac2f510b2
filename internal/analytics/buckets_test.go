package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/model"
)

func TestBucketFor_Edges(t *testing.T) {
	tests := []struct {
		daysLeft int
		want     string
	}{
		{1, "Inside 7 Days"},
		{7, "Inside 7 Days"},
		{8, "8–14 Days"},
		{14, "8–14 Days"},
		{15, "15–30 Days"},
		{31, "1–2 Months"},
		{60, "1–2 Months"},
		{90, "2–3 Months"},
		{91, ""},
		{365, ""},
	}

	for _, tt := range tests {
		idx := BucketFor(tt.daysLeft)
		if tt.want == "" {
			assert.Equal(t, -1, idx, "days_left=%d", tt.daysLeft)
			continue
		}
		require.GreaterOrEqual(t, idx, 0, "days_left=%d", tt.daysLeft)
		assert.Equal(t, tt.want, TransitionBoundaries[idx].Label, "days_left=%d", tt.daysLeft)
	}
}

func TestTransitionBuckets(t *testing.T) {
	items := []model.TransitionItem{
		{ISIN: "A", DaysLeft: 7, Gain: 100},
		{ISIN: "B", DaysLeft: 8, Gain: 200},
		{ISIN: "C", DaysLeft: 3, Gain: 50.5},
		{ISIN: "D", DaysLeft: 75, Gain: -20},
		{ISIN: "E", DaysLeft: 91, Gain: 1000},
	}

	t.Run("totals, cumulative gain and omitted empty buckets", func(t *testing.T) {
		buckets := TransitionBuckets(items, model.DefaultViewState())

		require.Len(t, buckets, 3)
		assert.Equal(t, "Inside 7 Days", buckets[0].Label)
		assert.Equal(t, 2, buckets[0].Count)
		assert.InDelta(t, 150.5, buckets[0].TotalGain, 1e-9)
		assert.InDelta(t, 150.5, buckets[0].CumulativeGain, 1e-9)

		assert.Equal(t, "8–14 Days", buckets[1].Label)
		assert.InDelta(t, 350.5, buckets[1].CumulativeGain, 1e-9)

		assert.Equal(t, "2–3 Months", buckets[2].Label)
		assert.InDelta(t, -20, buckets[2].TotalGain, 1e-9)
		assert.InDelta(t, 330.5, buckets[2].CumulativeGain, 1e-9)
	})

	t.Run("collapsed buckets hide members", func(t *testing.T) {
		v := model.DefaultViewState().ToggleBucket("8–14 Days")

		buckets := TransitionBuckets(items, v)

		assert.True(t, buckets[0].Collapsed)
		assert.Empty(t, buckets[0].Items)
		assert.False(t, buckets[1].Collapsed)
		require.Len(t, buckets[1].Items, 1)
		assert.Equal(t, "B", buckets[1].Items[0].ISIN)
	})

	t.Run("no items", func(t *testing.T) {
		assert.Empty(t, TransitionBuckets(nil, model.DefaultViewState()))
	})
}
