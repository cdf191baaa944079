// Package derive turns backend responses into the row and bar shapes the
// report templates render. It is pure data shaping: no I/O, no locale
// formatting (see the format package for that).
package derive

import "fmt"

// Bar is one horizontal bar of a chart: a label, the raw value and a
// width percentage relative to the series maximum.
type Bar struct {
	Label    string
	Value    float64
	WidthPct float64
}

// Bars computes bar widths against the series maximum. The denominator
// is floored at 1 so an all-zero series yields zero-width bars instead
// of dividing by zero, and widths are clamped to 100.
func Bars(labels []string, values []float64) []Bar {
	max := 1.0
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	bars := make([]Bar, 0, len(values))
	for i, v := range values {
		w := v / max * 100
		if w > 100 {
			w = 100
		}
		if w < 0 {
			w = 0
		}
		label := ""
		if i < len(labels) {
			label = labels[i]
		}
		bars = append(bars, Bar{Label: label, Value: v, WidthPct: w})
	}
	return bars
}

// MonthLabel renders a period as "MM/YYYY" with a zero-padded month.
func MonthLabel(year, month int) string {
	return fmt.Sprintf("%02d/%04d", month, year)
}

// DayLabel renders a daily period as "DD/MM/YYYY".
func DayLabel(year, month, day int) string {
	return fmt.Sprintf("%02d/%02d/%04d", day, month, year)
}

// PeriodLabel picks the daily or monthly rendering depending on whether
// the item carries a day.
func PeriodLabel(year, month, day int) string {
	if day > 0 {
		return DayLabel(year, month, day)
	}
	return MonthLabel(year, month)
}

// PivotPoint is one (period, category, value) observation feeding a
// multi-series pivot.
type PivotPoint struct {
	Year     int
	Month    int
	Category string
	Value    float64
}

// PivotTable is a periods-by-categories matrix. Columns appear in first-
// appearance order of their category; Cells is indexed [row][col] and
// holds nil where the category has no observation in that period.
type PivotTable struct {
	Columns []string
	Rows    []PivotRow
}

type PivotRow struct {
	Label string
	Cells []*float64
}

// Pivot groups points by period (in input order of first appearance) and
// spreads categories across columns, also in first-appearance order.
// Duplicate (period, category) pairs keep the last value.
func Pivot(points []PivotPoint) PivotTable {
	type periodKey struct{ year, month int }

	colIndex := make(map[string]int)
	rowIndex := make(map[periodKey]int)
	var table PivotTable

	for _, p := range points {
		if _, ok := colIndex[p.Category]; !ok {
			colIndex[p.Category] = len(table.Columns)
			table.Columns = append(table.Columns, p.Category)
			for i := range table.Rows {
				table.Rows[i].Cells = append(table.Rows[i].Cells, nil)
			}
		}
		key := periodKey{p.Year, p.Month}
		if _, ok := rowIndex[key]; !ok {
			rowIndex[key] = len(table.Rows)
			table.Rows = append(table.Rows, PivotRow{
				Label: MonthLabel(p.Year, p.Month),
				Cells: make([]*float64, len(table.Columns)),
			})
		}
		v := p.Value
		table.Rows[rowIndex[key]].Cells[colIndex[p.Category]] = &v
	}
	return table
}
