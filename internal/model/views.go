package model

import "time"

// Overview holds the headline KPIs for the filtered portfolio.
type Overview struct {
	CurrentValue   float64    `json:"current_value"`
	TotalInvested  float64    `json:"total_invested"`
	RealizedGain   float64    `json:"realized_gain"`
	UnrealizedGain float64    `json:"unrealized_gain"`
	TotalProfit    float64    `json:"total_profit"`
	AbsReturn      float64    `json:"abs_return"`
	XIRR           XIRRResult `json:"xirr"`
	SchemeCount    int        `json:"scheme_count"`
}

// XIRRResult is an annualised rate in percent plus solver diagnostics.
type XIRRResult struct {
	Rate       float64 `json:"rate"`
	Converged  bool    `json:"converged"`
	Iterations int     `json:"iterations"`
}

// SchemeRow is a scheme table row with its own XIRR.
type SchemeRow struct {
	SchemeDetail
	XIRR float64 `json:"xirr"`
}

// SchemeTable is the searched and sorted scheme list plus its tax summary.
type SchemeTable struct {
	Rows     []SchemeRow `json:"rows"`
	Sort     SortSpec    `json:"sort"`
	Taxation TaxSummary  `json:"taxation"`
}

type TaxSummary struct {
	UnrealizedSTCG float64 `json:"unrealized_stcg"`
	UnrealizedLTCG float64 `json:"unrealized_ltcg"`
	RealizedSTCG   float64 `json:"realized_stcg"`
	RealizedLTCG   float64 `json:"realized_ltcg"`

	CurrentFYSTCG float64 `json:"current_fy_stcg"`
	CurrentFYLTCG float64 `json:"current_fy_ltcg"`
	LastFYSTCG    float64 `json:"last_fy_stcg"`
	LastFYLTCG    float64 `json:"last_fy_ltcg"`
}

// AllocationSlice is one group's share of current value.
type AllocationSlice struct {
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Percent float64 `json:"percent"`
}

// SegmentReturn is the XIRR of the flows belonging to one tag group.
type SegmentReturn struct {
	Label string  `json:"label"`
	XIRR  float64 `json:"xirr"`
	Flows int     `json:"flows"`
}

// TaxBucket groups transition items by days until they turn long-term.
type TaxBucket struct {
	Label          string           `json:"label"`
	MaxDays        int              `json:"max_days"`
	Count          int              `json:"count"`
	TotalGain      float64          `json:"total_gain"`
	CumulativeGain float64          `json:"cumulative_gain"`
	Collapsed      bool             `json:"collapsed"`
	Items          []TransitionItem `json:"items,omitempty"`
}

// TrendClass colours a pivot cell against the previous non-zero period of the same fund.
type TrendClass string

const (
	TrendNone     TrendClass = ""
	TrendPositive TrendClass = "positive"
	TrendNegative TrendClass = "negative"
)

// PivotColumn describes one rendered column of the investment pivot.
// Month is empty for a year total column.
type PivotColumn struct {
	Year  int    `json:"year"`
	Month string `json:"month,omitempty"`
}

type PivotCell struct {
	Amount float64    `json:"amount"`
	Trend  TrendClass `json:"trend,omitempty"`
}

type PivotFundRow struct {
	Fund  string      `json:"fund"`
	Cells []PivotCell `json:"cells"`
	Total float64     `json:"total"`
}

// PivotYear is a year header with its expansion state.
type PivotYear struct {
	Year     int  `json:"year"`
	Expanded bool `json:"expanded"`
}

// PivotTable is the fund by year by month investment grid.
type PivotTable struct {
	Years      []PivotYear    `json:"years"`
	Columns    []PivotColumn  `json:"columns"`
	Rows       []PivotFundRow `json:"rows"`
	GrandTotal PivotFundRow   `json:"grand_total"`
}

// TrendPoint is one month of net investment with its moving averages.
type TrendPoint struct {
	DateKey string  `json:"date_key"`
	Date    Date    `json:"date"`
	Amount  float64 `json:"amount"`
	MA3     float64 `json:"ma3"`
	MA6     float64 `json:"ma6"`
}

// GrowthSeriesPoint is the aggregated market value against capital invested on a date.
type GrowthSeriesPoint struct {
	Date     Date    `json:"date"`
	Value    float64 `json:"value"`
	Invested float64 `json:"invested"`
}

type RollingRow struct {
	ISIN string `json:"isin"`
	Name string `json:"name"`
	RollingStat
}

type RollingView struct {
	Period string       `json:"period"`
	Sort   SortSpec     `json:"sort"`
	Rows   []RollingRow `json:"rows"`
}

// ComparisonRow compares the investor's XIRR with the fund's own CAGR over the same horizon.
type ComparisonRow struct {
	ISIN         string  `json:"isin"`
	Fund         string  `json:"fund"`
	Category     string  `json:"category,omitempty"`
	Years        float64 `json:"years"`
	FundCAGR     float64 `json:"fund_cagr"`
	InvestorXIRR float64 `json:"investor_xirr"`
	Alpha        float64 `json:"alpha"`
}

// Dashboard bundles every section computed for a single ViewState.
type Dashboard struct {
	Overview    Overview                        `json:"overview"`
	Schemes     SchemeTable                     `json:"schemes"`
	Allocations map[Dimension][]AllocationSlice `json:"allocations"`
	Segments    map[Dimension][]SegmentReturn   `json:"segments"`
	Transitions []TaxBucket                     `json:"transitions"`
	Investments PivotTable                      `json:"investments"`
	Trend       []TrendPoint                    `json:"trend"`
	Growth      []GrowthSeriesPoint             `json:"growth"`
	Rolling     RollingView                     `json:"rolling"`
	Comparison  []ComparisonRow                 `json:"comparison"`
	DataStats   DataStats                       `json:"data_stats"`
	LastUpdated string                          `json:"last_updated"`
}

// When implements the dated constraint used by range filtering.
func (p TrendPoint) When() time.Time { return p.Date.Time }

func (p GrowthSeriesPoint) When() time.Time { return p.Date.Time }
