// Package export writes the dashboard table and summary to spreadsheets.
package export

import (
	"context"

	"budgetboard/internal/view"
)

// Exporter writes one dashboard somewhere.
type Exporter interface {
	Export(ctx context.Context, d view.Dashboard) error
}

// Header is the first row of every export.
var Header = []any{"Date", "Description", "Category", "Amount"}

// Rows lays out a dashboard as a header, one row per expense, then the summary rows.
// Dates are ISO and amounts are plain numbers so spreadsheets can compute on them.
func Rows(d view.Dashboard) [][]any {
	rows := make([][]any, 0, len(d.Table)+4)
	rows = append(rows, append([]any(nil), Header...))
	for _, r := range d.Table {
		rows = append(rows, []any{r.ISODate, r.Description, r.CategoryName, centsToUnits(r.AmountCents)})
	}
	rows = append(rows,
		[]any{"", "Budget", "", centsToUnits(d.Summary.BudgetCents)},
		[]any{"", "Total", "", centsToUnits(d.Summary.TotalCents)},
		[]any{"", "Balance", "", centsToUnits(d.Summary.BalanceCents)},
	)
	return rows
}

func centsToUnits(c int64) float64 {
	return float64(c) / 100
}
