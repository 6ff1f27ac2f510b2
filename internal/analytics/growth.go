package analytics

import (
	"time"

	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/model"
)

// GrowthSeries sums market value and invested capital over the given ISINs for every snapshot date,
// then applies r. Dates where neither sum is positive are dropped.
func GrowthSeries(points []model.GrowthPoint, isins map[string]struct{}, r model.DateRange, now time.Time) []model.GrowthSeriesPoint {
	out := make([]model.GrowthSeriesPoint, 0, len(points))
	for _, p := range points {
		var value, invested float64
		for isin, bal := range p.Balances {
			if _, ok := isins[isin]; !ok {
				continue
			}
			value += bal.Value
			invested += bal.Invested
		}
		if value <= 0 && invested <= 0 {
			continue
		}
		out = append(out, model.GrowthSeriesPoint{Date: p.Date, Value: value, Invested: invested})
	}
	return FilterByDateRange(out, r, now)
}
