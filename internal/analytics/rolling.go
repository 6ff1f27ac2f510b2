package analytics

import (
	"cmp"
	"slices"
	"strings"

	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/model"
)

// RollingSortColumns are the columns the rolling view can be sorted on.
var RollingSortColumns = []string{"name", "latest", "min", "max", "mean", "median"}

// RollingView selects the stats for v.RollingPeriod of every filtered ISIN and sorts them by v.RollingSort.
//
// ISINs without stats for the period are skipped. The display name comes from the scheme list and falls
// back to the ISIN. Name sorting is case-insensitive; ties keep ISIN order.
func RollingView(snap *model.Snapshot, schemes []model.SchemeDetail, v model.ViewState) model.RollingView {
	view := model.RollingView{Period: v.RollingPeriod, Sort: v.RollingSort, Rows: []model.RollingRow{}}
	if snap == nil {
		return view
	}

	filtered := ISINSet(schemes)
	names := schemeNames(snap)

	isins := make([]string, 0, len(snap.RollingStats))
	for isin := range snap.RollingStats {
		isins = append(isins, isin)
	}
	slices.Sort(isins)

	for _, isin := range isins {
		if _, ok := filtered[isin]; !ok {
			continue
		}
		rs, ok := snap.RollingStats[isin][v.RollingPeriod]
		if !ok {
			continue
		}
		name := names[isin]
		if name == "" {
			name = isin
		}
		view.Rows = append(view.Rows, model.RollingRow{ISIN: isin, Name: name, RollingStat: rs})
	}

	sortRolling(view.Rows, v.RollingSort)
	return view
}

func sortRolling(rows []model.RollingRow, by model.SortSpec) {
	slices.SortStableFunc(rows, func(a, b model.RollingRow) int {
		var c int
		switch by.Column {
		case "name":
			c = cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		case "latest":
			c = cmp.Compare(a.Latest, b.Latest)
		case "min":
			c = cmp.Compare(a.Min, b.Min)
		case "max":
			c = cmp.Compare(a.Max, b.Max)
		case "median":
			c = cmp.Compare(a.Median, b.Median)
		default:
			c = cmp.Compare(a.Mean, b.Mean)
		}
		if by.Order == model.SortAsc {
			return c
		}
		return -c
	})
}
