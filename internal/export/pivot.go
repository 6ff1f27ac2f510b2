// Package export renders dashboard views as spreadsheet downloads.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ndewijer/Portfolio-Analytics-Backend/internal/model"
)

// PivotSheet is the worksheet name of the investment export.
const PivotSheet = "Investments"

const (
	fillPositive = "C6EFCE"
	fillNegative = "FFC7CE"
	amountFormat = "#,##0.00"
)

// WritePivot writes table as an XLSX workbook to w.
//
// The sheet mirrors the rendered grid: a year header row, a month header row (the year total column is
// labelled "Total"), one row per fund with its overall total in the last column and the grand total row
// at the bottom. Trend classes are rendered as green and red cell fills.
func WritePivot(w io.Writer, table model.PivotTable) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", PivotSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	styles, err := newStyles(f)
	if err != nil {
		return err
	}

	sw := sheetWriter{f: f, styles: styles}

	// Header rows
	sw.set(1, 1, "Fund Name", styles.header)
	sw.set(1, 2, "", styles.header)
	for i, col := range table.Columns {
		c := i + 2
		sw.set(c, 1, col.Year, styles.header)
		if col.Month == "" {
			sw.set(c, 2, "Total", styles.header)
		} else {
			sw.set(c, 2, col.Month, styles.header)
		}
	}
	totalCol := len(table.Columns) + 2
	sw.set(totalCol, 1, "Total", styles.header)
	sw.set(totalCol, 2, "", styles.header)

	row := 3
	for _, fund := range table.Rows {
		sw.fundRow(row, fund, totalCol, false)
		row++
	}
	sw.fundRow(row, table.GrandTotal, totalCol, true)

	if sw.err != nil {
		return fmt.Errorf("failed to write pivot cells: %w", sw.err)
	}

	if err := f.SetColWidth(PivotSheet, "A", "A", 42); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}
	if err := f.SetPanes(PivotSheet, &excelize.Panes{
		Freeze:      true,
		XSplit:      1,
		YSplit:      2,
		TopLeftCell: "B3",
		ActivePane:  "bottomRight",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// Filename returns the download name for an export produced at stamp (YYYY-MM-DD).
func Filename(stamp string) string {
	if stamp == "" {
		return "investments.xlsx"
	}
	return "investments_" + stamp + ".xlsx"
}

type styles struct {
	header, amount, positive, negative, total int
}

func newStyles(f *excelize.File) (styles, error) {
	var s styles
	var err error
	format := amountFormat

	if s.header, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return s, fmt.Errorf("failed to create header style: %w", err)
	}
	if s.amount, err = f.NewStyle(&excelize.Style{CustomNumFmt: &format}); err != nil {
		return s, fmt.Errorf("failed to create amount style: %w", err)
	}
	if s.positive, err = f.NewStyle(&excelize.Style{
		CustomNumFmt: &format,
		Fill:         excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{fillPositive}},
	}); err != nil {
		return s, fmt.Errorf("failed to create positive style: %w", err)
	}
	if s.negative, err = f.NewStyle(&excelize.Style{
		CustomNumFmt: &format,
		Fill:         excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{fillNegative}},
	}); err != nil {
		return s, fmt.Errorf("failed to create negative style: %w", err)
	}
	if s.total, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, CustomNumFmt: &format}); err != nil {
		return s, fmt.Errorf("failed to create total style: %w", err)
	}
	return s, nil
}

// sheetWriter keeps the first error so cell writes can be chained.
type sheetWriter struct {
	f      *excelize.File
	styles styles
	err    error
}

func (sw *sheetWriter) set(col, row int, value any, style int) {
	if sw.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		sw.err = err
		return
	}
	if sw.err = sw.f.SetCellValue(PivotSheet, cell, value); sw.err != nil {
		return
	}
	sw.err = sw.f.SetCellStyle(PivotSheet, cell, cell, style)
}

func (sw *sheetWriter) fundRow(row int, fund model.PivotFundRow, totalCol int, grand bool) {
	sw.set(1, row, fund.Fund, sw.styles.header)
	for i, cell := range fund.Cells {
		style := sw.styles.amount
		switch {
		case grand:
			style = sw.styles.total
		case cell.Trend == model.TrendPositive:
			style = sw.styles.positive
		case cell.Trend == model.TrendNegative:
			style = sw.styles.negative
		}
		sw.set(i+2, row, cell.Amount, style)
	}
	sw.set(totalCol, row, fund.Total, sw.styles.total)
}
