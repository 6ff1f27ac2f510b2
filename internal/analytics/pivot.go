package analytics

import (
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/model"
)

// MonthNames are the pivot month column labels.
var MonthNames = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// MonthIndex resolves the month of a pivot row to 0..11.
// The Month label is tried first (abbreviated, full or numeric), then the YYYY-MM date key. -1 if neither parses.
func MonthIndex(row model.PivotRow) int {
	if m := strings.TrimSpace(row.Month); m != "" {
		if n, err := strconv.Atoi(m); err == nil && n >= 1 && n <= 12 {
			return n - 1
		}
		if len(m) >= 3 {
			for i, name := range MonthNames {
				if strings.EqualFold(m[:3], name) {
					return i
				}
			}
		}
	}
	if _, month, ok := parseDateKey(row.DateKey); ok {
		return month - 1
	}
	return -1
}

// parseDateKey splits a YYYY-MM key.
func parseDateKey(key string) (year, month int, ok bool) {
	parts := strings.SplitN(strings.TrimSpace(key), "-", 3)
	if len(parts) < 2 {
		return 0, 0, false
	}
	y, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 1 || m > 12 {
		return 0, 0, false
	}
	return y, m, true
}

type yearCell struct {
	months [12]decimal.Decimal
	total  decimal.Decimal
}

// BuildPivot builds the fund × year × month investment grid from already filtered rows.
//
// Years are the sorted distinct years present in rows. An expanded year renders twelve month columns
// followed by its total; a collapsed year renders the total only. Funds are sorted by name.
//
// Trend colouring walks each fund row left to right. A non-zero cell is positive when it exceeds the
// last non-zero amount seen in that row and negative when it is lower; zero cells are skipped and do not
// move the reference. The year total column of an expanded year is neither coloured nor used as a
// reference.
//
// The grand total row sums every column, and its Total equals the sum of the fund rows' totals.
func BuildPivot(rows []model.PivotRow, v model.ViewState) model.PivotTable {
	cube := make(map[string]map[int]*yearCell)
	var years []int
	var funds []string

	for _, row := range rows {
		byYear, ok := cube[row.FundName]
		if !ok {
			byYear = make(map[int]*yearCell)
			cube[row.FundName] = byYear
			funds = append(funds, row.FundName)
		}
		cell, ok := byYear[row.Year]
		if !ok {
			cell = &yearCell{}
			byYear[row.Year] = cell
		}
		if !slices.Contains(years, row.Year) {
			years = append(years, row.Year)
		}

		amount := decimal.NewFromFloat(row.Amount)
		if m := MonthIndex(row); m >= 0 {
			cell.months[m] = cell.months[m].Add(amount)
		}
		cell.total = cell.total.Add(amount)
	}
	slices.Sort(years)
	slices.Sort(funds)

	table := model.PivotTable{
		Years:   make([]model.PivotYear, 0, len(years)),
		Columns: pivotColumns(years, v),
		Rows:    make([]model.PivotFundRow, 0, len(funds)),
	}
	for _, y := range years {
		table.Years = append(table.Years, model.PivotYear{Year: y, Expanded: v.YearExpanded(y)})
	}

	grandCols := make([]decimal.Decimal, len(table.Columns))
	grandTotal := decimal.Zero

	for _, fund := range funds {
		fundRow := model.PivotFundRow{Fund: fund, Cells: make([]model.PivotCell, 0, len(table.Columns))}
		overall := decimal.Zero
		prev := 0.0

		col := 0
		add := func(amount decimal.Decimal, trend model.TrendClass) {
			fundRow.Cells = append(fundRow.Cells, model.PivotCell{Amount: amount.InexactFloat64(), Trend: trend})
			grandCols[col] = grandCols[col].Add(amount)
			col++
		}

		for _, y := range years {
			cell := cube[fund][y]
			if cell == nil {
				cell = &yearCell{}
			}
			overall = overall.Add(cell.total)

			if v.YearExpanded(y) {
				for m := range MonthNames {
					amt := cell.months[m].InexactFloat64()
					add(cell.months[m], trendOf(amt, prev))
					if amt != 0 {
						prev = amt
					}
				}
				add(cell.total, model.TrendNone)
				continue
			}

			amt := cell.total.InexactFloat64()
			add(cell.total, trendOf(amt, prev))
			if amt != 0 {
				prev = amt
			}
		}

		fundRow.Total = overall.InexactFloat64()
		grandTotal = grandTotal.Add(overall)
		table.Rows = append(table.Rows, fundRow)
	}

	table.GrandTotal = model.PivotFundRow{
		Fund:  "GRAND TOTAL",
		Cells: make([]model.PivotCell, len(grandCols)),
		Total: grandTotal.InexactFloat64(),
	}
	for i, c := range grandCols {
		table.GrandTotal.Cells[i] = model.PivotCell{Amount: c.InexactFloat64()}
	}
	return table
}

func pivotColumns(years []int, v model.ViewState) []model.PivotColumn {
	var cols []model.PivotColumn
	for _, y := range years {
		if v.YearExpanded(y) {
			for _, m := range MonthNames {
				cols = append(cols, model.PivotColumn{Year: y, Month: m})
			}
		}
		cols = append(cols, model.PivotColumn{Year: y})
	}
	return cols
}

func trendOf(amount, prev float64) model.TrendClass {
	switch {
	case amount == 0:
		return model.TrendNone
	case amount > prev:
		return model.TrendPositive
	case amount < prev:
		return model.TrendNegative
	}
	return model.TrendNone
}
