package model

// Snapshot is the complete analytics payload produced by the upstream aggregation service.
// It is immutable once loaded; every view is derived from it together with a ViewState.
type Snapshot struct {
	SchemeDetails         []SchemeDetail     `json:"scheme_details"`
	CashFlows             []CashFlow         `json:"cash_flows"`
	GrowthChart           []GrowthPoint      `json:"growth_chart"`
	InvestmentSummary     InvestmentSummary  `json:"investment_summary"`
	RollingStats          RollingStats       `json:"rolling_stats"`
	TransitionPlanning    []TransitionItem   `json:"transition_planning"`
	PerformanceComparison []PerformanceEntry `json:"performance_comparison"`
	Categories            []string           `json:"categories"`
	AMCs                  []string           `json:"amcs"`
	Sectors               []string           `json:"sectors"`
	Caps                  []string           `json:"caps"`
	ActivityStates        []string           `json:"activity_states"`
	DataStats             DataStats          `json:"data_stats"`
	LastUpdated           string             `json:"last_updated"`
	Error                 string             `json:"error,omitempty"`
}

// SchemeDetail is one holding row keyed by ISIN.
type SchemeDetail struct {
	ISIN          string  `json:"ISIN"`
	FundName      string  `json:"Fund Name"`
	Category      string  `json:"Category"`
	AMC           string  `json:"AMC"`
	Sector        string  `json:"Sector"`
	Cap           string  `json:"Cap"`
	ActivityState string  `json:"ActivityState"`
	CurrentVal    float64 `json:"current_val"`
	InvestedVal   float64 `json:"invested_val"`

	RealizedSTCG   float64 `json:"realized_stcg"`
	RealizedLTCG   float64 `json:"realized_ltcg"`
	UnrealizedSTCG float64 `json:"unrealized_stcg"`
	UnrealizedLTCG float64 `json:"unrealized_ltcg"`
	UnrealizedGain float64 `json:"unrealized_gain"`
	TotalProfit    float64 `json:"total_profit"`
	AbsReturn      float64 `json:"abs_return"`
	LTUnits        float64 `json:"lt_units"`

	// Realized gains split by Indian financial year (April to March).
	RealizedSTCGCurrentFY float64 `json:"realized_stcg_curr"`
	RealizedLTCGCurrentFY float64 `json:"realized_ltcg_curr"`
	RealizedSTCGLastFY    float64 `json:"realized_stcg_last"`
	RealizedLTCGLastFY    float64 `json:"realized_ltcg_last"`
}

// Tag implements Tagged.
func (s SchemeDetail) Tag(d Dimension) string {
	return tagOf(d, s.Category, s.AMC, s.Sector, s.Cap, s.ActivityState)
}

// CashFlow is a single dated amount for an instrument.
// Negative amounts are contributions, positive amounts are returned capital or terminal value.
type CashFlow struct {
	ISIN   string  `json:"isin"`
	Date   Date    `json:"date"`
	Amount float64 `json:"amount"`
}

// GrowthPoint holds per-ISIN market value and invested capital on one date.
type GrowthPoint struct {
	Date     Date                     `json:"date"`
	Balances map[string]GrowthBalance `json:"b"`
}

type GrowthBalance struct {
	Value    float64 `json:"v"`
	Invested float64 `json:"i"`
}

// InvestmentSummary carries the month-level investment rows and the ordered month keys.
type InvestmentSummary struct {
	Pivot  []PivotRow `json:"pivot"`
	Months []string   `json:"months"`
}

// PivotRow is the net investment of one fund in one calendar month.
type PivotRow struct {
	ISIN          string  `json:"ISIN"`
	FundName      string  `json:"Fund Name"`
	Category      string  `json:"Category"`
	AMC           string  `json:"AMC"`
	Sector        string  `json:"Sector"`
	Cap           string  `json:"Cap"`
	ActivityState string  `json:"ActivityState"`
	Year          int     `json:"Year"`
	Month         string  `json:"Month"`
	DateKey       string  `json:"DateKey"`
	Amount        float64 `json:"Amount"`
}

// Tag implements Tagged.
func (p PivotRow) Tag(d Dimension) string {
	return tagOf(d, p.Category, p.AMC, p.Sector, p.Cap, p.ActivityState)
}

// RollingStat summarises a rolling-return series for one period.
type RollingStat struct {
	Latest float64 `json:"latest"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
}

// RollingStats maps ISIN to period label (1Y, 3Y, 5Y) to its stat set.
type RollingStats map[string]map[string]RollingStat

// TransitionItem is a short-term lot that turns long-term within the planning horizon.
type TransitionItem struct {
	ISIN          string  `json:"ISIN"`
	Scheme        string  `json:"scheme"`
	Category      string  `json:"category"`
	AMC           string  `json:"AMC,omitempty"`
	Sector        string  `json:"Sector,omitempty"`
	Cap           string  `json:"Cap,omitempty"`
	ActivityState string  `json:"ActivityState,omitempty"`
	Units         float64 `json:"units,omitempty"`
	Date          Date    `json:"date"`
	DaysLeft      int     `json:"days_left"`
	Gain          float64 `json:"gain"`
}

// Tag implements Tagged.
func (t TransitionItem) Tag(d Dimension) string {
	return tagOf(d, t.Category, t.AMC, t.Sector, t.Cap, t.ActivityState)
}

// PerformanceEntry is the point-to-point fund CAGR used as a benchmark for the investor's XIRR.
type PerformanceEntry struct {
	ISIN     string  `json:"isin"`
	Fund     string  `json:"fund"`
	Category string  `json:"category,omitempty"`
	FundCAGR float64 `json:"fund_cagr"`
	Years    float64 `json:"years"`
}

type DataStats struct {
	LastFileDate string `json:"last_file_date"`
	LastTxnDate  string `json:"last_txn_date"`
	LastNAVDate  string `json:"last_nav_date"`
}
