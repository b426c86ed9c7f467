package controller

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"budgetboard/internal/core"
	"budgetboard/internal/ledger"
	applog "budgetboard/internal/log"
	"budgetboard/internal/schedule"
)

type countingPersister struct{ saves int }

func (p *countingPersister) Save(context.Context, []core.Expense, core.Money) error {
	p.saves++
	return nil
}

func TestBudgetSet(t *testing.T) {
	clock := schedule.NewManual()
	p := &countingPersister{}
	l := ledger.New(p, nil, core.Money{}, ledger.WithLogger(applog.Discard()))
	c := NewBudgetController(l, NewBanner(clock, 3*time.Second), applog.Discard())

	assert.Equal(t, "", c.Current())

	res := c.Set(context.Background(), "100")
	assert.True(t, res.OK)
	assert.Equal(t, MsgBudgetSet, res.Message)
	assert.Equal(t, int64(10000), l.Budget().Cents)
	assert.Equal(t, "100", c.Current())
	assert.Equal(t, 1, p.saves)
	assert.Equal(t, Notice{Text: MsgBudgetSet, Kind: KindSuccess, Visible: true}, c.Banner().Current())

	clock.Advance(3 * time.Second)
	assert.Equal(t, Notice{Text: MsgBudgetSet, Kind: KindSuccess}, c.Banner().Current())
}

func TestBudgetRejectsInvalidInput(t *testing.T) {
	for _, input := range []string{"-50", "abc", "", "0", "NaN"} {
		t.Run(input, func(t *testing.T) {
			clock := schedule.NewManual()
			p := &countingPersister{}
			l := ledger.New(p, nil, core.Money{Cents: 5000}, ledger.WithLogger(applog.Discard()))
			c := NewBudgetController(l, NewBanner(clock, 3*time.Second), applog.Discard())

			res := c.Set(context.Background(), input)
			assert.False(t, res.OK)
			assert.Equal(t, MsgBudgetInvalid, res.Message)
			assert.Equal(t, int64(5000), l.Budget().Cents)
			assert.Equal(t, 0, p.saves, "rejected before reaching the ledger")
			assert.Equal(t, Notice{Text: MsgBudgetInvalid, Kind: KindError, Visible: true}, c.Banner().Current())

			clock.Advance(3 * time.Second)
			assert.False(t, c.Banner().Current().Visible)
		})
	}
}
