package analytics

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/model"
)

// groupLabel returns the tag used to group t on d. Missing sector and cap tags fall into "Others".
func groupLabel(t model.Tagged, d model.Dimension) string {
	label := t.Tag(d)
	if label == "" && (d == model.DimensionSector || d == model.DimensionCap) {
		return model.OthersTag
	}
	return label
}

// Allocation sums the current value of schemes with a positive value by the tag on d.
// Slices are ordered by value, largest first, with ties broken by label. Percent is in 0..100.
func Allocation(schemes []model.SchemeDetail, d model.Dimension) []model.AllocationSlice {
	totals := make(map[string]decimal.Decimal)
	var order []string
	grand := decimal.Zero

	for _, s := range schemes {
		if s.CurrentVal <= 0 {
			continue
		}
		label := groupLabel(s, d)
		if _, seen := totals[label]; !seen {
			order = append(order, label)
		}
		v := decimal.NewFromFloat(s.CurrentVal)
		totals[label] = totals[label].Add(v)
		grand = grand.Add(v)
	}

	slicesOut := make([]model.AllocationSlice, 0, len(order))
	for _, label := range order {
		value := totals[label]
		pct := 0.0
		if grand.IsPositive() {
			pct = value.Div(grand).Mul(decimal.NewFromInt(100)).InexactFloat64()
		}
		slicesOut = append(slicesOut, model.AllocationSlice{
			Label:   label,
			Value:   value.InexactFloat64(),
			Percent: pct,
		})
	}

	slices.SortStableFunc(slicesOut, func(a, b model.AllocationSlice) int {
		if c := cmp.Compare(b.Value, a.Value); c != 0 {
			return c
		}
		return cmp.Compare(a.Label, b.Label)
	})
	return slicesOut
}

// Allocations computes Allocation for every grouping dimension.
func Allocations(schemes []model.SchemeDetail) map[model.Dimension][]model.AllocationSlice {
	out := make(map[model.Dimension][]model.AllocationSlice, len(model.GroupingDimensions))
	for _, d := range model.GroupingDimensions {
		out[d] = Allocation(schemes, d)
	}
	return out
}
