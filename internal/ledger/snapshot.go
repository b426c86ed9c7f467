package ledger

import "budgetboard/internal/core"

// Snapshot is an immutable view of ledger state at one revision.
type Snapshot struct {
	Expenses []core.Expense
	Budget   core.Money
	Revision uint64
}

// TotalExpenses sums every record amount.
func (s Snapshot) TotalExpenses() core.Money {
	var total core.Money
	for _, e := range s.Expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// RemainingBalance is budget minus total; it may be negative.
func (s Snapshot) RemainingBalance() core.Money {
	return s.Budget.Sub(s.TotalExpenses())
}

// ExpensesByCategory returns one bucket per registry category, zero when unused.
// Records carrying an unknown identifier are attributed to others.
func (s Snapshot) ExpensesByCategory() map[core.Category]core.Money {
	buckets := make(map[core.Category]core.Money, len(core.Categories()))
	for _, info := range core.Categories() {
		buckets[info.ID] = core.Money{}
	}
	for _, e := range s.Expenses {
		c := e.Category
		if !c.IsKnown() {
			c = core.Others
		}
		buckets[c] = buckets[c].Add(e.Amount)
	}
	return buckets
}
