package analytics

import (
	"time"

	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/model"
)

// Dated is a point on a time series.
type Dated interface {
	When() time.Time
}

// FilterByDateRange keeps points dated on or after now minus r.
// RangeAll, an empty range and an empty input return points unchanged.
func FilterByDateRange[T Dated](points []T, r model.DateRange, now time.Time) []T {
	if len(points) == 0 {
		return points
	}
	cutoff, ok := r.Cutoff(now)
	if !ok {
		return points
	}
	out := make([]T, 0, len(points))
	for _, p := range points {
		if !p.When().Before(cutoff) {
			out = append(out, p)
		}
	}
	return out
}
