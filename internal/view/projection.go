// Package view turns ledger snapshots into display models.
//
// Every projection is a pure function of the snapshot: the same snapshot always yields
// the same output, and nothing here mutates ledger state.
package view

import (
	"net/url"
	"sort"

	"budgetboard/internal/core"
	"budgetboard/internal/ledger"
)

// BalanceStyle is the binary style flag of the remaining balance.
type BalanceStyle string

const (
	BalancePositive BalanceStyle = "positive"
	BalanceNegative BalanceStyle = "negative"
)

// Tier is the three-level style flag of the progress bar.
type Tier string

const (
	TierNormal   Tier = "normal"
	TierWarning  Tier = "warning"
	TierCritical Tier = "critical"
)

// ChartDataset replaces the chart widget's data wholesale.
type ChartDataset struct {
	Labels  []string  `json:"labels"`
	Values  []float64 `json:"data"`
	Colors  []string  `json:"backgroundColor"`
	Borders []string  `json:"borderColor"`
}

// TableRow is one formatted expense row.
type TableRow struct {
	ID           string
	Description  string
	Category     core.Category
	CategoryName string
	Date         string
	ISODate      string
	Amount       string
	AmountCents  int64
	DeletePath   string
}

// Summary holds the formatted headline figures.
type Summary struct {
	Budget       string
	Total        string
	Balance      string
	BalanceStyle BalanceStyle
	BudgetCents  int64
	TotalCents   int64
	BalanceCents int64
}

// Progress is the budget consumption indicator.
type Progress struct {
	Percent float64
	Label   string
	Tier    Tier
}

// Dashboard bundles the four projections of one snapshot.
type Dashboard struct {
	Revision uint64
	Chart    ChartDataset
	Table    []TableRow
	Summary  Summary
	Progress Progress
}

// Project computes every projection for snap.
func Project(snap ledger.Snapshot, f *Formatter) Dashboard {
	return Dashboard{
		Revision: snap.Revision,
		Chart:    ProjectChart(snap),
		Table:    ProjectTable(snap, f),
		Summary:  ProjectSummary(snap, f),
		Progress: ProjectProgress(snap, f),
	}
}

// ProjectChart keeps registry order and only categories with a positive sum.
func ProjectChart(snap ledger.Snapshot) ChartDataset {
	buckets := snap.ExpensesByCategory()
	ds := ChartDataset{
		Labels:  []string{},
		Values:  []float64{},
		Colors:  []string{},
		Borders: []string{},
	}
	for _, info := range core.Categories() {
		sum := buckets[info.ID]
		if sum.Cents <= 0 {
			continue
		}
		ds.Labels = append(ds.Labels, info.Name)
		ds.Values = append(ds.Values, sum.Float())
		ds.Colors = append(ds.Colors, info.Color)
		ds.Borders = append(ds.Borders, info.Border())
	}
	return ds
}

// ProjectTable sorts by date, newest first; equal dates keep insertion order.
func ProjectTable(snap ledger.Snapshot, f *Formatter) []TableRow {
	sorted := append([]core.Expense(nil), snap.Expenses...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date.Time)
	})

	rows := make([]TableRow, 0, len(sorted))
	for _, e := range sorted {
		rows = append(rows, TableRow{
			ID:           e.ID,
			Description:  e.Description,
			Category:     core.Lookup(e.Category).ID,
			CategoryName: core.Lookup(e.Category).Name,
			Date:         f.Date(e.Date),
			ISODate:      e.Date.String(),
			Amount:       f.Currency(e.Amount),
			AmountCents:  e.Amount.Cents,
			DeletePath:   "/expenses/" + url.PathEscape(e.ID) + "/delete",
		})
	}
	return rows
}

// ProjectSummary formats budget, total and balance.
func ProjectSummary(snap ledger.Snapshot, f *Formatter) Summary {
	total := snap.TotalExpenses()
	balance := snap.RemainingBalance()
	style := BalancePositive
	if balance.Cents < 0 {
		style = BalanceNegative
	}
	return Summary{
		Budget:       f.Currency(snap.Budget),
		Total:        f.Currency(total),
		Balance:      f.Currency(balance),
		BalanceStyle: style,
		BudgetCents:  snap.Budget.Cents,
		TotalCents:   total.Cents,
		BalanceCents: balance.Cents,
	}
}

// ProjectProgress computes the capped spend percentage and its tier.
func ProjectProgress(snap ledger.Snapshot, f *Formatter) Progress {
	pct := ProgressPercent(snap.TotalExpenses(), snap.Budget)
	return Progress{
		Percent: pct,
		Label:   f.Percent(pct),
		Tier:    TierFor(pct),
	}
}

// ProgressPercent is 0 for a non-positive budget, else min(100, 100*total/budget).
func ProgressPercent(total, budget core.Money) float64 {
	if budget.Cents <= 0 {
		return 0
	}
	pct := float64(total.Cents) * 100 / float64(budget.Cents)
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}

// TierFor maps a percentage to its style tier.
func TierFor(pct float64) Tier {
	switch {
	case pct >= 90:
		return TierCritical
	case pct >= 70:
		return TierWarning
	default:
		return TierNormal
	}
}
