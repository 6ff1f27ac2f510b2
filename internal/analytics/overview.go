package analytics

import (
	"cmp"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/xirr"
)

// Overview aggregates the headline KPIs of the filtered schemes and solves the portfolio XIRR on flows.
func Overview(schemes []model.SchemeDetail, flows []model.CashFlow) model.Overview {
	var current, invested, realized, unrealized decimal.Decimal
	for _, s := range schemes {
		current = current.Add(decimal.NewFromFloat(s.CurrentVal))
		invested = invested.Add(decimal.NewFromFloat(s.InvestedVal))
		realized = realized.Add(decimal.NewFromFloat(s.RealizedSTCG)).Add(decimal.NewFromFloat(s.RealizedLTCG))
		unrealized = unrealized.Add(decimal.NewFromFloat(s.UnrealizedGain))
	}
	profit := unrealized.Add(realized)

	absReturn := 0.0
	if invested.IsPositive() {
		absReturn = profit.Div(invested).Mul(decimal.NewFromInt(100)).InexactFloat64()
	}

	res := xirr.SolveDetailed(flows)
	return model.Overview{
		CurrentValue:   current.InexactFloat64(),
		TotalInvested:  invested.InexactFloat64(),
		RealizedGain:   realized.InexactFloat64(),
		UnrealizedGain: unrealized.InexactFloat64(),
		TotalProfit:    profit.InexactFloat64(),
		AbsReturn:      absReturn,
		XIRR: model.XIRRResult{
			Rate:       res.Rate,
			Converged:  res.Converged,
			Iterations: res.Iterations,
		},
		SchemeCount: len(schemes),
	}
}

// schemeColumns maps a sortable scheme table column to its value.
var schemeColumns = map[string]func(model.SchemeRow) float64{
	"invested_val":    func(r model.SchemeRow) float64 { return r.InvestedVal },
	"current_val":     func(r model.SchemeRow) float64 { return r.CurrentVal },
	"unrealized_gain": func(r model.SchemeRow) float64 { return r.UnrealizedGain },
	"unrealized_stcg": func(r model.SchemeRow) float64 { return r.UnrealizedSTCG },
	"unrealized_ltcg": func(r model.SchemeRow) float64 { return r.UnrealizedLTCG },
	"realized_stcg":   func(r model.SchemeRow) float64 { return r.RealizedSTCG },
	"realized_ltcg":   func(r model.SchemeRow) float64 { return r.RealizedLTCG },
	"total_profit":    func(r model.SchemeRow) float64 { return r.TotalProfit },
	"abs_return":      func(r model.SchemeRow) float64 { return r.AbsReturn },
	"lt_units":        func(r model.SchemeRow) float64 { return r.LTUnits },
	"xirr":            func(r model.SchemeRow) float64 { return r.XIRR },
}

// SchemeNameColumn sorts the scheme table by fund name.
const SchemeNameColumn = "Fund Name"

// IsSchemeSortColumn reports whether column can sort the scheme table.
func IsSchemeSortColumn(column string) bool {
	if column == SchemeNameColumn {
		return true
	}
	_, ok := schemeColumns[column]
	return ok
}

// SchemeTable searches schemes by v.Search, attaches each scheme's XIRR over its own flows, sorts by
// v.SchemeSort and summarises taxation over the visible rows.
func SchemeTable(schemes []model.SchemeDetail, flows []model.CashFlow, v model.ViewState) model.SchemeTable {
	visible := SearchSchemes(schemes, v.Search)
	byISIN := FlowsByISIN(flows)

	rows := make([]model.SchemeRow, 0, len(visible))
	for _, s := range visible {
		rows = append(rows, model.SchemeRow{SchemeDetail: s, XIRR: xirr.Solve(byISIN[s.ISIN])})
	}

	sortSchemes(rows, v.SchemeSort)
	return model.SchemeTable{
		Rows:     rows,
		Sort:     v.SchemeSort,
		Taxation: TaxSummary(visible),
	}
}

func sortSchemes(rows []model.SchemeRow, by model.SortSpec) {
	value, numeric := schemeColumns[by.Column]
	if !numeric && by.Column != SchemeNameColumn {
		return
	}
	slices.SortStableFunc(rows, func(a, b model.SchemeRow) int {
		var c int
		if numeric {
			c = cmp.Compare(value(a), value(b))
		} else {
			c = cmp.Compare(strings.ToLower(a.FundName), strings.ToLower(b.FundName))
		}
		if by.Order == model.SortAsc {
			return c
		}
		return -c
	})
}

// TaxSummary totals unrealized and realized capital gains, including the financial-year split.
func TaxSummary(schemes []model.SchemeDetail) model.TaxSummary {
	var ust, ult, rst, rlt, cst, clt, lst, llt decimal.Decimal
	for _, s := range schemes {
		ust = ust.Add(decimal.NewFromFloat(s.UnrealizedSTCG))
		ult = ult.Add(decimal.NewFromFloat(s.UnrealizedLTCG))
		rst = rst.Add(decimal.NewFromFloat(s.RealizedSTCG))
		rlt = rlt.Add(decimal.NewFromFloat(s.RealizedLTCG))
		cst = cst.Add(decimal.NewFromFloat(s.RealizedSTCGCurrentFY))
		clt = clt.Add(decimal.NewFromFloat(s.RealizedLTCGCurrentFY))
		lst = lst.Add(decimal.NewFromFloat(s.RealizedSTCGLastFY))
		llt = llt.Add(decimal.NewFromFloat(s.RealizedLTCGLastFY))
	}
	return model.TaxSummary{
		UnrealizedSTCG: ust.InexactFloat64(),
		UnrealizedLTCG: ult.InexactFloat64(),
		RealizedSTCG:   rst.InexactFloat64(),
		RealizedLTCG:   rlt.InexactFloat64(),
		CurrentFYSTCG:  cst.InexactFloat64(),
		CurrentFYLTCG:  clt.InexactFloat64(),
		LastFYSTCG:     lst.InexactFloat64(),
		LastFYLTCG:     llt.InexactFloat64(),
	}
}
