package analytics

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/model"
)

// MovingAverage returns the trailing simple moving average of values over window points.
// Near the start the window is clipped and the divisor is the number of points actually averaged.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window < 1 {
		window = 1
	}
	for i := range values {
		start := max(0, i-window+1)
		out[i] = stat.Mean(values[start:i+1], nil)
	}
	return out
}

// MonthlyTrend totals the filtered pivot rows per month key and attaches the 3 and 6 month moving averages.
//
// months fixes the series order; when it is empty the sorted distinct keys of rows are used. The averages
// are computed over the full series before r is applied, so a short range still shows averages that
// include the months just before it. Points are dated on the first day of their month.
func MonthlyTrend(rows []model.PivotRow, months []string, r model.DateRange, now time.Time) []model.TrendPoint {
	totals := make(map[string]decimal.Decimal)
	var keys []string
	for _, row := range rows {
		if _, seen := totals[row.DateKey]; !seen {
			keys = append(keys, row.DateKey)
		}
		totals[row.DateKey] = totals[row.DateKey].Add(decimal.NewFromFloat(row.Amount))
	}
	if len(months) == 0 {
		slices.Sort(keys)
		months = keys
	}

	amounts := make([]float64, len(months))
	for i, key := range months {
		amounts[i] = totals[key].InexactFloat64()
	}
	ma3 := MovingAverage(amounts, 3)
	ma6 := MovingAverage(amounts, 6)

	points := make([]model.TrendPoint, 0, len(months))
	for i, key := range months {
		p := model.TrendPoint{
			DateKey: key,
			Amount:  amounts[i],
			MA3:     ma3[i],
			MA6:     ma6[i],
		}
		if y, m, ok := parseDateKey(key); ok {
			p.Date = model.NewDate(y, time.Month(m), 1)
		}
		points = append(points, p)
	}
	return FilterByDateRange(points, r, now)
}
