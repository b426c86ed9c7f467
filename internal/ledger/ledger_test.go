package ledger

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetboard/internal/core"
	applog "budgetboard/internal/log"
)

type fakePersister struct {
	calls   []Snapshot
	err     error
	journal *[]string
}

func (p *fakePersister) Save(_ context.Context, records []core.Expense, budget core.Money) error {
	p.calls = append(p.calls, Snapshot{Expenses: records, Budget: budget})
	if p.journal != nil {
		*p.journal = append(*p.journal, "save")
	}
	return p.err
}

func newTestLedger(p Persister) *Ledger {
	n := 0
	return New(p, nil, core.Money{}, WithLogger(applog.Discard()), WithIDFunc(func() string {
		n++
		return "id-" + strconv.Itoa(n)
	}))
}

func cents(c int64) core.Money { return core.Money{Cents: c} }

func TestAddCoffeeScenario(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(&fakePersister{})
	l.SetBudget(ctx, cents(10000))

	e, err := l.Add(ctx, "Coffee", cents(450), "food", core.NewDate(2024, 1, 10))
	require.NoError(t, err)
	assert.Equal(t, "id-1", e.ID)
	assert.Equal(t, core.Food, e.Category)

	assert.Equal(t, cents(450), l.TotalExpenses())
	assert.Equal(t, cents(9550), l.RemainingBalance())
	assert.Equal(t, cents(450), l.ExpensesByCategory()[core.Food])
}

func TestAddRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	p := &fakePersister{}
	l := newTestLedger(p)

	_, err := l.Add(ctx, "Coffee", cents(0), "food", core.NewDate(2024, 1, 10))
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
	_, err = l.Add(ctx, "Coffee", cents(-5), "food", core.NewDate(2024, 1, 10))
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
	_, err = l.Add(ctx, "   ", cents(5), "food", core.NewDate(2024, 1, 10))
	assert.ErrorIs(t, err, core.ErrEmptyDescription)

	assert.Empty(t, l.Expenses())
	assert.Empty(t, p.calls, "rejected adds must not persist")
	assert.Zero(t, l.Revision())
}

func TestUnknownCategoryFoldsIntoOthers(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(nil)

	e, err := l.Add(ctx, "Vet", cents(3000), "pets", core.NewDate(2024, 1, 10))
	require.NoError(t, err)
	assert.Equal(t, core.Others, e.Category)
	assert.Equal(t, cents(3000), l.ExpensesByCategory()[core.Others])

	hydrated := New(nil, []core.Expense{{ID: "x", Description: "Toy", Amount: cents(100), Category: "pets", Date: core.NewDate(2024, 1, 1)}}, core.Money{})
	assert.Equal(t, core.Others, hydrated.Expenses()[0].Category)
}

func TestRemoveMissingIDStillPersists(t *testing.T) {
	ctx := context.Background()
	p := &fakePersister{}
	l := newTestLedger(p)
	_, err := l.Add(ctx, "Coffee", cents(450), "food", core.NewDate(2024, 1, 10))
	require.NoError(t, err)
	before := l.Expenses()

	var events []Event
	l.Subscribe(ObserverFunc(func(_ context.Context, ev Event) { events = append(events, ev) }))

	l.Remove(ctx, "does-not-exist")

	assert.Equal(t, before, l.Expenses())
	require.Len(t, p.calls, 2)
	assert.Equal(t, before, p.calls[1].Expenses)
	require.Len(t, events, 1)
	assert.Equal(t, OpRemove, events[0].Op)
}

func TestRemoveDeletesMatchingRecord(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(nil)
	a, _ := l.Add(ctx, "A", cents(100), "food", core.NewDate(2024, 1, 1))
	b, _ := l.Add(ctx, "B", cents(200), "health", core.NewDate(2024, 1, 2))

	l.Remove(ctx, a.ID)

	require.Len(t, l.Expenses(), 1)
	assert.Equal(t, b.ID, l.Expenses()[0].ID)
	assert.Equal(t, cents(200), l.TotalExpenses())
}

func TestNegativeBalance(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(nil)
	l.SetBudget(ctx, cents(1000))
	_, err := l.Add(ctx, "TV", cents(1500), "entertainment", core.NewDate(2024, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, cents(-500), l.RemainingBalance())
}

func TestPersistThenNotifyAndFailureDoesNotRollBack(t *testing.T) {
	ctx := context.Background()
	var journal []string
	p := &fakePersister{err: errors.New("quota exceeded"), journal: &journal}
	l := newTestLedger(p)
	l.Subscribe(ObserverFunc(func(_ context.Context, ev Event) {
		journal = append(journal, "notify:"+string(ev.Op))
	}))

	_, err := l.Add(ctx, "Coffee", cents(450), "food", core.NewDate(2024, 1, 10))
	require.NoError(t, err, "persistence failure must not propagate")
	l.SetBudget(ctx, cents(100))

	assert.Equal(t, []string{"save", "notify:add", "save", "notify:set_budget"}, journal)
	assert.Len(t, l.Expenses(), 1)
	assert.Equal(t, cents(100), l.Budget())
}

func TestSnapshotsAreIsolated(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(nil)
	var seen Snapshot
	l.Subscribe(ObserverFunc(func(_ context.Context, ev Event) { seen = ev.Snapshot }))

	_, _ = l.Add(ctx, "A", cents(100), "food", core.NewDate(2024, 1, 1))
	seen.Expenses[0].Description = "mutated"

	assert.Equal(t, "A", l.Expenses()[0].Description)
	assert.Equal(t, uint64(1), seen.Revision)
}

func TestRefreshDoesNotMutate(t *testing.T) {
	ctx := context.Background()
	p := &fakePersister{}
	l := newTestLedger(p)
	var ops []Op
	l.Subscribe(ObserverFunc(func(_ context.Context, ev Event) { ops = append(ops, ev.Op) }))

	l.Refresh(ctx)

	assert.Equal(t, []Op{OpRefresh}, ops)
	assert.Empty(t, p.calls)
	assert.Zero(t, l.Revision())
}

func TestDefaultIDsAreUnique(t *testing.T) {
	ctx := context.Background()
	l := New(nil, nil, core.Money{}, WithLogger(applog.Discard()))
	seen := map[string]bool{}
	for i := 0; i < 500; i++ {
		e, err := l.Add(ctx, "x", cents(1), "food", core.NewDate(2024, 1, 1))
		require.NoError(t, err)
		require.False(t, seen[e.ID], "duplicate id %s", e.ID)
		seen[e.ID] = true
	}
}

func TestAggregateProperties(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(7))
	categories := []string{"food", "transportation", "entertainment", "housing", "health", "education", "others", "unknown"}

	for round := 0; round < 20; round++ {
		l := newTestLedger(nil)
		l.SetBudget(ctx, cents(rng.Int63n(100000)))
		var ids []string

		for step := 0; step < 60; step++ {
			if len(ids) > 0 && rng.Intn(3) == 0 {
				i := rng.Intn(len(ids))
				l.Remove(ctx, ids[i])
				ids = append(ids[:i], ids[i+1:]...)
				continue
			}
			e, err := l.Add(ctx, "item", cents(1+rng.Int63n(50000)), categories[rng.Intn(len(categories))], core.NewDate(2024, 1, 1+rng.Intn(28)))
			require.NoError(t, err)
			ids = append(ids, e.ID)
		}

		snap := l.Snapshot()
		var sum core.Money
		for _, e := range snap.Expenses {
			sum = sum.Add(e.Amount)
		}
		assert.Equal(t, sum, snap.TotalExpenses())

		var bucketSum core.Money
		buckets := snap.ExpensesByCategory()
		assert.Len(t, buckets, len(core.Categories()))
		for _, v := range buckets {
			bucketSum = bucketSum.Add(v)
		}
		assert.Equal(t, snap.TotalExpenses(), bucketSum)
		assert.Equal(t, snap.Budget.Sub(snap.TotalExpenses()), snap.RemainingBalance())
	}
}

func TestEmptyLedgerTotals(t *testing.T) {
	l := newTestLedger(nil)
	assert.Zero(t, l.TotalExpenses().Cents)
	assert.Zero(t, l.RemainingBalance().Cents)
	for _, v := range l.ExpensesByCategory() {
		assert.Zero(t, v.Cents)
	}
}
