package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/model"
)

// BucketBoundary is an inclusive upper bound on days_left and its label.
type BucketBoundary struct {
	MaxDays int
	Label   string
}

// TransitionBoundaries are the planning buckets in ascending order.
// Items with more than 90 days left fall outside the planning horizon.
var TransitionBoundaries = []BucketBoundary{
	{MaxDays: 7, Label: "Inside 7 Days"},
	{MaxDays: 14, Label: "8–14 Days"},
	{MaxDays: 30, Label: "15–30 Days"},
	{MaxDays: 60, Label: "1–2 Months"},
	{MaxDays: 90, Label: "2–3 Months"},
}

// BucketFor returns the index of the first boundary with daysLeft <= MaxDays, or -1.
func BucketFor(daysLeft int) int {
	for i, b := range TransitionBoundaries {
		if daysLeft <= b.MaxDays {
			return i
		}
	}
	return -1
}

// TransitionBuckets groups items by days until they turn long-term.
//
// Each bucket carries its member count, the sum of gains and the running cumulative gain across
// buckets in ascending order. Empty buckets are omitted. A bucket that is not expanded in v reports
// Collapsed and leaves Items empty; the totals are the same either way.
func TransitionBuckets(items []model.TransitionItem, v model.ViewState) []model.TaxBucket {
	members := make([][]model.TransitionItem, len(TransitionBoundaries))
	for _, item := range items {
		idx := BucketFor(item.DaysLeft)
		if idx < 0 {
			continue
		}
		members[idx] = append(members[idx], item)
	}

	out := []model.TaxBucket{}
	cumulative := decimal.Zero
	for i, b := range TransitionBoundaries {
		if len(members[i]) == 0 {
			continue
		}
		total := decimal.Zero
		for _, item := range members[i] {
			total = total.Add(decimal.NewFromFloat(item.Gain))
		}
		cumulative = cumulative.Add(total)

		bucket := model.TaxBucket{
			Label:          b.Label,
			MaxDays:        b.MaxDays,
			Count:          len(members[i]),
			TotalGain:      total.InexactFloat64(),
			CumulativeGain: cumulative.InexactFloat64(),
			Collapsed:      !v.BucketExpanded(b.Label),
		}
		if !bucket.Collapsed {
			bucket.Items = members[i]
		}
		out = append(out, bucket)
	}
	return out
}
