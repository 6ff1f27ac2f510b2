package model

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Dimension names a tag axis that schemes, pivot rows and transition items can be filtered or grouped on.
type Dimension string

const (
	DimensionCategory Dimension = "category"
	DimensionActivity Dimension = "activity"
	DimensionAMC      Dimension = "amc"
	DimensionSector   Dimension = "sector"
	DimensionCap      Dimension = "cap"
)

// OthersTag replaces a missing sector or cap tag.
const OthersTag = "Others"

// FilterDimensions lists the filter axes in the order they are applied.
var FilterDimensions = []Dimension{
	DimensionCategory,
	DimensionActivity,
	DimensionAMC,
	DimensionSector,
	DimensionCap,
}

// GroupingDimensions are the axes allocation and segment views can group on.
var GroupingDimensions = []Dimension{
	DimensionCategory,
	DimensionAMC,
	DimensionSector,
	DimensionCap,
}

// ParseDimension validates a grouping dimension name.
func ParseDimension(s string) (Dimension, error) {
	d := Dimension(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(GroupingDimensions, d) {
		return d, nil
	}
	return "", fmt.Errorf("unknown dimension %q: must be one of category, amc, sector, cap", s)
}

// Tagged is anything carrying the five filterable tags.
type Tagged interface {
	Tag(d Dimension) string
}

func tagOf(d Dimension, category, amc, sector, capTag, activity string) string {
	switch d {
	case DimensionCategory:
		return category
	case DimensionAMC:
		return amc
	case DimensionSector:
		return sector
	case DimensionCap:
		return capTag
	case DimensionActivity:
		return activity
	}
	return ""
}

// DateRange is a trailing window ending at "now".
type DateRange string

const (
	Range1M  DateRange = "1M"
	Range3M  DateRange = "3M"
	Range6M  DateRange = "6M"
	Range1Y  DateRange = "1Y"
	Range3Y  DateRange = "3Y"
	Range5Y  DateRange = "5Y"
	RangeAll DateRange = "ALL"
)

// ParseDateRange accepts the range labels case-insensitively; an empty string means ALL.
func ParseDateRange(s string) (DateRange, error) {
	if strings.TrimSpace(s) == "" {
		return RangeAll, nil
	}
	r := DateRange(strings.ToUpper(strings.TrimSpace(s)))
	switch r {
	case Range1M, Range3M, Range6M, Range1Y, Range3Y, Range5Y, RangeAll:
		return r, nil
	}
	return "", fmt.Errorf("invalid date range %q: must be one of 1M, 3M, 6M, 1Y, 3Y, 5Y, ALL", s)
}

// Cutoff returns the earliest date kept by the range. ok is false for ALL.
func (r DateRange) Cutoff(now time.Time) (cutoff time.Time, ok bool) {
	switch r {
	case Range1M:
		return now.AddDate(0, -1, 0), true
	case Range3M:
		return now.AddDate(0, -3, 0), true
	case Range6M:
		return now.AddDate(0, -6, 0), true
	case Range1Y:
		return now.AddDate(-1, 0, 0), true
	case Range3Y:
		return now.AddDate(-3, 0, 0), true
	case Range5Y:
		return now.AddDate(-5, 0, 0), true
	}
	return time.Time{}, false
}

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortOrder defaults to descending for an empty value.
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return SortDesc, nil
	case "asc":
		return SortAsc, nil
	case "desc":
		return SortDesc, nil
	}
	return "", fmt.Errorf("invalid sort order %q: must be 'asc' or 'desc'", s)
}

// SortSpec is a column plus direction.
type SortSpec struct {
	Column string    `json:"column"`
	Order  SortOrder `json:"order"`
}

// Toggle applies a header click: the same column flips the order, a new column starts descending.
func (s SortSpec) Toggle(column string) SortSpec {
	if s.Column == column {
		if s.Order == SortAsc {
			return SortSpec{Column: column, Order: SortDesc}
		}
		return SortSpec{Column: column, Order: SortAsc}
	}
	return SortSpec{Column: column, Order: SortDesc}
}

// Rolling periods carried in the snapshot.
const (
	Period1Y = "1Y"
	Period3Y = "3Y"
	Period5Y = "5Y"
)

// ViewState is the complete set of user-controlled view parameters.
// It is a value: every With/Toggle method returns a modified copy and never touches the receiver.
type ViewState struct {
	filters map[Dimension][]string

	HideZero    bool
	Search      string
	GrowthRange DateRange
	TrendRange  DateRange
	SchemeSort  SortSpec

	RollingPeriod string
	RollingSort   SortSpec

	expandedYears   []int
	expandedBuckets []string
}

// DefaultViewState matches the initial dashboard: no filters, zero holdings hidden, everything collapsed.
func DefaultViewState() ViewState {
	return ViewState{
		HideZero:      true,
		GrowthRange:   RangeAll,
		TrendRange:    RangeAll,
		SchemeSort:    SortSpec{Column: "current_val", Order: SortDesc},
		RollingPeriod: Period1Y,
		RollingSort:   SortSpec{Column: "mean", Order: SortDesc},
	}
}

// Selected returns a copy of the selected values for d.
func (v ViewState) Selected(d Dimension) []string {
	return slices.Clone(v.filters[d])
}

// WithSelection replaces the selection for d. Duplicates and blanks are dropped.
func (v ViewState) WithSelection(d Dimension, values ...string) ViewState {
	out := v.cloneFilters()
	var cleaned []string
	for _, val := range values {
		val = strings.TrimSpace(val)
		if val == "" || slices.Contains(cleaned, val) {
			continue
		}
		cleaned = append(cleaned, val)
	}
	if len(cleaned) == 0 {
		delete(out.filters, d)
	} else {
		out.filters[d] = cleaned
	}
	return out
}

// Toggle adds value to the selection for d, or removes it if already selected.
func (v ViewState) Toggle(d Dimension, value string) ViewState {
	current := v.filters[d]
	if i := slices.Index(current, value); i >= 0 {
		return v.WithSelection(d, slices.Delete(slices.Clone(current), i, i+1)...)
	}
	return v.WithSelection(d, append(slices.Clone(current), value)...)
}

// ClearAll removes every tag selection. Other settings are kept.
func (v ViewState) ClearAll() ViewState {
	out := v
	out.filters = nil
	return out
}

// WithSchemeSort applies the column toggle rule to the scheme table sort.
func (v ViewState) WithSchemeSort(column string) ViewState {
	out := v
	out.SchemeSort = v.SchemeSort.Toggle(column)
	return out
}

// WithRollingSort applies the column toggle rule to the rolling view sort.
func (v ViewState) WithRollingSort(column string) ViewState {
	out := v
	out.RollingSort = v.RollingSort.Toggle(column)
	return out
}

// ToggleYear expands or collapses a pivot year.
func (v ViewState) ToggleYear(year int) ViewState {
	out := v
	if i := slices.Index(v.expandedYears, year); i >= 0 {
		out.expandedYears = slices.Delete(slices.Clone(v.expandedYears), i, i+1)
	} else {
		out.expandedYears = append(slices.Clone(v.expandedYears), year)
	}
	return out
}

func (v ViewState) YearExpanded(year int) bool {
	return slices.Contains(v.expandedYears, year)
}

// ToggleBucket expands or collapses a tax bucket by label.
func (v ViewState) ToggleBucket(label string) ViewState {
	out := v
	if i := slices.Index(v.expandedBuckets, label); i >= 0 {
		out.expandedBuckets = slices.Delete(slices.Clone(v.expandedBuckets), i, i+1)
	} else {
		out.expandedBuckets = append(slices.Clone(v.expandedBuckets), label)
	}
	return out
}

func (v ViewState) BucketExpanded(label string) bool {
	return slices.Contains(v.expandedBuckets, label)
}

// Matches reports whether t passes every active tag selection.
func (v ViewState) Matches(t Tagged) bool {
	for _, d := range FilterDimensions {
		selected := v.filters[d]
		if len(selected) == 0 {
			continue
		}
		if !slices.Contains(selected, t.Tag(d)) {
			return false
		}
	}
	return true
}

// HasFilters reports whether any tag selection or hide-zero is active.
func (v ViewState) HasFilters() bool {
	return len(v.filters) > 0 || v.HideZero
}

func (v ViewState) cloneFilters() ViewState {
	out := v
	out.filters = make(map[Dimension][]string, len(v.filters)+1)
	for d, values := range v.filters {
		out.filters[d] = slices.Clone(values)
	}
	return out
}
