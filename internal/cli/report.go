package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"budgetboard/internal/view"
)

// Styles holds the terminal styles of budgetctl reports.
type Styles struct {
	Positive lipgloss.Style
	Negative lipgloss.Style
	Normal   lipgloss.Style
	Warning  lipgloss.Style
	Critical lipgloss.Style
	Header   lipgloss.Style
	Summary  lipgloss.Style
}

// DefaultStyles mirrors the dashboard palette.
func DefaultStyles() Styles {
	return Styles{
		Positive: lipgloss.NewStyle().Foreground(lipgloss.Color("#2ecc71")),
		Negative: lipgloss.NewStyle().Foreground(lipgloss.Color("#e74c3c")),
		Normal:   lipgloss.NewStyle().Foreground(lipgloss.Color("#2ecc71")),
		Warning:  lipgloss.NewStyle().Foreground(lipgloss.Color("#f39c12")),
		Critical: lipgloss.NewStyle().Foreground(lipgloss.Color("#e74c3c")),
		Header:   lipgloss.NewStyle().Bold(true).Padding(0, 1),
		Summary:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 2),
	}
}

// RenderTable lists the table projection, newest first.
func RenderTable(d view.Dashboard, s Styles) string {
	if len(d.Table) == 0 {
		return "No expenses recorded yet."
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "Description", "Category", "Date", "Amount").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.Header
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	for _, r := range d.Table {
		t.Row(r.ID, r.Description, r.CategoryName, r.Date, r.Amount)
	}
	return t.Render()
}

// RenderSummary shows budget, total, balance and progress in a bordered box.
func RenderSummary(d view.Dashboard, s Styles) string {
	balance := s.Positive
	if d.Summary.BalanceStyle == view.BalanceNegative {
		balance = s.Negative
	}
	tier := s.Normal
	switch d.Progress.Tier {
	case view.TierWarning:
		tier = s.Warning
	case view.TierCritical:
		tier = s.Critical
	}

	lines := []string{
		"Budget:   " + d.Summary.Budget,
		"Expenses: " + d.Summary.Total,
		"Balance:  " + balance.Render(d.Summary.Balance),
		"Progress: " + tier.Render(progressBar(d.Progress.Percent, 20)+" "+d.Progress.Label),
	}
	return s.Summary.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func progressBar(pct float64, width int) string {
	filled := int(pct / 100 * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}
