// Package ledger owns the expense records and the budget.
//
// Every mutation runs persist-then-notify while holding the ledger lock, so observers see
// mutations in order and one at a time. Observers must not mutate the ledger.
package ledger

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"budgetboard/internal/core"
	applog "budgetboard/internal/log"
)

// Op names the mutation that produced an Event.
type Op string

const (
	OpAdd       Op = "add"
	OpRemove    Op = "remove"
	OpSetBudget Op = "set_budget"
	OpRefresh   Op = "refresh"
)

// Event is delivered to observers after every mutation.
type Event struct {
	Op Op
	// ExpenseID is set for add and remove.
	ExpenseID string
	Snapshot  Snapshot
}

// Observer receives ledger events.
type Observer interface {
	LedgerChanged(ctx context.Context, ev Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, ev Event)

func (f ObserverFunc) LedgerChanged(ctx context.Context, ev Event) { f(ctx, ev) }

// Persister is the write-through target. Errors are the persister's to report.
type Persister interface {
	Save(ctx context.Context, records []core.Expense, budget core.Money) error
}

// IDFunc generates record identifiers.
type IDFunc func() string

// NewID returns a random UUID string.
func NewID() string {
	return uuid.NewString()
}

// Ledger is the authoritative in-memory collection of records plus the budget.
type Ledger struct {
	mu        sync.Mutex
	expenses  []core.Expense
	budget    core.Money
	revision  uint64
	persister Persister
	observers []Observer
	newID     IDFunc
	logger    *applog.Logger
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithIDFunc overrides identifier generation.
func WithIDFunc(f IDFunc) Option {
	return func(l *Ledger) { l.newID = f }
}

// WithLogger sets the ledger logger.
func WithLogger(logger *applog.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

// New creates a ledger hydrated with records and budget. Categories are normalized on the way in.
func New(persister Persister, records []core.Expense, budget core.Money, opts ...Option) *Ledger {
	l := &Ledger{
		budget:    budget,
		persister: persister,
		newID:     NewID,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = applog.Default(applog.ComponentLedger)
	}
	l.expenses = make([]core.Expense, 0, len(records))
	for _, e := range records {
		e.Category = core.Normalize(string(e.Category))
		l.expenses = append(l.expenses, e)
	}
	return l
}

// Subscribe registers an observer for subsequent events.
func (l *Ledger) Subscribe(o Observer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.observers = append(l.observers, o)
}

// Add records a new expense. The amount must be positive; the category is normalized.
func (l *Ledger) Add(ctx context.Context, description string, amount core.Money, category string, date core.Date) (core.Expense, error) {
	e := core.Expense{
		Description: strings.TrimSpace(description),
		Amount:      amount,
		Category:    core.Normalize(category),
		Date:        date,
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, fmt.Errorf("add expense: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	e.ID = l.newID()
	l.expenses = append(l.expenses, e)
	l.commit(ctx, OpAdd, e.ID)

	l.logger.InfoContext(ctx, "Expense added",
		applog.NewFields().WithExpense(e.ID, e.Description, e.Amount.Cents, string(e.Category)).ToSlice()...)
	return e, nil
}

// Remove deletes the record with id. An unknown id is not an error; the ledger still
// persists and notifies.
func (l *Ledger) Remove(ctx context.Context, id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	kept := make([]core.Expense, 0, len(l.expenses))
	for _, e := range l.expenses {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	removed := len(kept) != len(l.expenses)
	l.expenses = kept
	l.commit(ctx, OpRemove, id)

	l.logger.InfoContext(ctx, "Expense removed",
		applog.FieldExpenseID, id,
		"found", removed)
}

// SetBudget replaces the budget. No bound is enforced here.
func (l *Ledger) SetBudget(ctx context.Context, amount core.Money) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.budget = amount
	l.commit(ctx, OpSetBudget, "")

	l.logger.InfoContext(ctx, "Budget set", applog.FieldBudgetCents, amount.Cents)
}

// Refresh notifies observers of the current state without mutating it.
func (l *Ledger) Refresh(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.notify(ctx, Event{Op: OpRefresh, Snapshot: l.snapshotLocked()})
}

// commit bumps the revision, writes through and notifies. Caller holds l.mu.
func (l *Ledger) commit(ctx context.Context, op Op, id string) {
	l.revision++
	snap := l.snapshotLocked()
	if l.persister != nil {
		// Failure is reported by the persister; the in-memory state stays authoritative.
		_ = l.persister.Save(ctx, snap.Expenses, snap.Budget)
	}
	l.notify(ctx, Event{Op: op, ExpenseID: id, Snapshot: snap})
}

func (l *Ledger) notify(ctx context.Context, ev Event) {
	for _, o := range l.observers {
		o.LedgerChanged(ctx, ev)
	}
}

func (l *Ledger) snapshotLocked() Snapshot {
	return Snapshot{
		Expenses: append([]core.Expense(nil), l.expenses...),
		Budget:   l.budget,
		Revision: l.revision,
	}
}

// Snapshot returns a copy of the current state.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

// Expenses returns the records in insertion order.
func (l *Ledger) Expenses() []core.Expense {
	return l.Snapshot().Expenses
}

// Budget returns the current budget.
func (l *Ledger) Budget() core.Money {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.budget
}

// Revision returns the number of mutations applied since construction.
func (l *Ledger) Revision() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.revision
}

// TotalExpenses sums every record amount.
func (l *Ledger) TotalExpenses() core.Money {
	return l.Snapshot().TotalExpenses()
}

// RemainingBalance is budget minus total expenses.
func (l *Ledger) RemainingBalance() core.Money {
	return l.Snapshot().RemainingBalance()
}

// ExpensesByCategory returns per-category sums over the registry.
func (l *Ledger) ExpensesByCategory() map[core.Category]core.Money {
	return l.Snapshot().ExpensesByCategory()
}
