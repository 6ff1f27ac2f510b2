package request

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/analytics"
	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/model"
)

// DefaultHistoryLimit and MaxHistoryLimit bound the refresh history page size.
const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 500
)

// filterParams maps each tag filter query parameter to its dimension.
var filterParams = []struct {
	name      string
	dimension model.Dimension
}{
	{"category", model.DimensionCategory},
	{"activity", model.DimensionActivity},
	{"amc", model.DimensionAMC},
	{"sector", model.DimensionSector},
	{"cap", model.DimensionCap},
}

// ParseViewState builds a model.ViewState from query parameters, starting from model.DefaultViewState.
//
// Tag filters and expansion lists are comma-separated; every parameter is optional.
//
// Validation rules:
//   - category, activity, amc, sector, cap: free-text tag values, blanks ignored
//   - hide_zero: boolean (defaults to true)
//   - q: scheme name search, trimmed
//   - growth_range, trend_range: one of 1M, 3M, 6M, 1Y, 3Y, 5Y, ALL (defaults to ALL)
//   - sort/order: a scheme table column and asc or desc (defaults to current_val desc)
//   - rolling_period: 1Y, 3Y or 5Y (defaults to 1Y)
//   - rolling_sort/rolling_order: name, latest, min, max, mean or median (defaults to mean desc)
//   - expanded_years: integer years; expanded_buckets: transition bucket labels
//
// Returns an error wrapping the matching apperrors sentinel if any parameter fails validation.
//
//nolint:gocyclo // Flat validation of independent parameters
func ParseViewState(q url.Values) (model.ViewState, error) {
	v := model.DefaultViewState()

	for _, p := range filterParams {
		if values := splitList(q.Get(p.name)); len(values) > 0 {
			v = v.WithSelection(p.dimension, values...)
		}
	}

	if raw := q.Get("hide_zero"); raw != "" {
		hide, err := strconv.ParseBool(raw)
		if err != nil {
			return v, errors.New("invalid hide_zero: must be true or false")
		}
		v.HideZero = hide
	}

	v.Search = strings.TrimSpace(q.Get("q"))

	var err error
	if v.GrowthRange, err = model.ParseDateRange(q.Get("growth_range")); err != nil {
		return v, fmt.Errorf("%w: growth_range: %v", apperrors.ErrInvalidDateRange, err)
	}
	if v.TrendRange, err = model.ParseDateRange(q.Get("trend_range")); err != nil {
		return v, fmt.Errorf("%w: trend_range: %v", apperrors.ErrInvalidDateRange, err)
	}

	if column := strings.TrimSpace(q.Get("sort")); column != "" {
		if !analytics.IsSchemeSortColumn(column) {
			return v, fmt.Errorf("%w: %s", apperrors.ErrInvalidSortColumn, column)
		}
		v.SchemeSort.Column = column
	}
	if raw := q.Get("order"); raw != "" || q.Get("sort") != "" {
		if v.SchemeSort.Order, err = model.ParseSortOrder(raw); err != nil {
			return v, fmt.Errorf("%w: %v", apperrors.ErrInvalidSortOrder, err)
		}
	}

	if period := strings.ToUpper(strings.TrimSpace(q.Get("rolling_period"))); period != "" {
		if period != model.Period1Y && period != model.Period3Y && period != model.Period5Y {
			return v, fmt.Errorf("%w: %s", apperrors.ErrInvalidPeriod, period)
		}
		v.RollingPeriod = period
	}

	if column := strings.ToLower(strings.TrimSpace(q.Get("rolling_sort"))); column != "" {
		if !slices.Contains(analytics.RollingSortColumns, column) {
			return v, fmt.Errorf("%w: %s", apperrors.ErrInvalidSortColumn, column)
		}
		v.RollingSort.Column = column
	}
	if raw := q.Get("rolling_order"); raw != "" || q.Get("rolling_sort") != "" {
		if v.RollingSort.Order, err = model.ParseSortOrder(raw); err != nil {
			return v, fmt.Errorf("%w: %v", apperrors.ErrInvalidSortOrder, err)
		}
	}

	var years []int
	for _, raw := range splitList(q.Get("expanded_years")) {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return v, fmt.Errorf("invalid expanded_years: %q is not a year", raw)
		}
		if !slices.Contains(years, year) {
			years = append(years, year)
			v = v.ToggleYear(year)
		}
	}

	var buckets []string
	for _, label := range splitList(q.Get("expanded_buckets")) {
		if !slices.Contains(buckets, label) {
			buckets = append(buckets, label)
			v = v.ToggleBucket(label)
		}
	}

	return v, nil
}

// ParseDimension validates the {dimension} path parameter.
func ParseDimension(raw string) (model.Dimension, error) {
	d, err := model.ParseDimension(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrInvalidDimension, err)
	}
	return d, nil
}

// ParseHistoryLimit parses the limit query parameter of the refresh history.
func ParseHistoryLimit(raw string) (int, error) {
	if raw == "" {
		return DefaultHistoryLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("invalid limit: must be a number")
	}
	if limit < 1 || limit > MaxHistoryLimit {
		return 0, fmt.Errorf("invalid limit: must be between 1 and %d", MaxHistoryLimit)
	}
	return limit, nil
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
