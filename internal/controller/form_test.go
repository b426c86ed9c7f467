package controller

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetboard/internal/core"
	"budgetboard/internal/ledger"
	applog "budgetboard/internal/log"
	"budgetboard/internal/schedule"
)

func fixedClock() time.Time {
	return time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC)
}

func newForm(t *testing.T) (*FormController, *ledger.Ledger, *schedule.Manual) {
	t.Helper()
	clock := schedule.NewManual()
	l := ledger.New(nil, nil, core.Money{}, ledger.WithLogger(applog.Discard()))
	c := NewFormController(l, NewBanner(clock, 3*time.Second), fixedClock, applog.Discard())
	return c, l, clock
}

func TestFormSubmitSuccess(t *testing.T) {
	c, l, clock := newForm(t)

	res := c.Submit(context.Background(), FormInput{
		Description: "  Coffee ",
		Amount:      "4.50",
		Category:    "food",
		Date:        "2024-01-10",
	})

	require.True(t, res.OK)
	assert.False(t, res.Errors.Any())
	assert.Equal(t, "Coffee", res.Expense.Description)
	assert.Equal(t, int64(450), res.Expense.Amount.Cents)
	assert.Equal(t, FormInput{Date: "2024-03-15"}, res.Values, "fields cleared, date reset to today")
	assert.Equal(t, StateEditing, c.State())
	assert.Len(t, l.Expenses(), 1)

	assert.Equal(t, Notice{Text: MsgExpenseAdded, Kind: KindSuccess, Visible: true}, c.Banner().Current())
	clock.Advance(3 * time.Second)
	assert.False(t, c.Banner().Current().Visible)
}

func TestFormReportsEveryFailingField(t *testing.T) {
	c, l, clock := newForm(t)
	in := FormInput{Description: "   ", Amount: "-3", Category: "", Date: ""}

	res := c.Submit(context.Background(), in)

	assert.False(t, res.OK)
	assert.Equal(t, FormErrors{
		Description: MsgDescriptionRequired,
		Amount:      MsgAmountInvalid,
		Category:    MsgCategoryRequired,
		Date:        MsgDateRequired,
	}, res.Errors)
	assert.Equal(t, in, res.Values, "input is kept for correction")
	assert.Empty(t, l.Expenses())
	assert.Equal(t, uint64(0), l.Revision())
	assert.False(t, c.Banner().Current().Visible)
	assert.Equal(t, 0, clock.Pending())
}

func TestFormFieldRules(t *testing.T) {
	cases := []struct {
		name string
		in   FormInput
		want FormErrors
	}{
		{"zero amount", FormInput{"a", "0", "food", "2024-01-01"}, FormErrors{Amount: MsgAmountInvalid}},
		{"text amount", FormInput{"a", "abc", "food", "2024-01-01"}, FormErrors{Amount: MsgAmountInvalid}},
		{"bad date", FormInput{"a", "1", "food", "2024-02-30"}, FormErrors{Date: MsgDateInvalid}},
		{"long multibyte description", FormInput{strings.Repeat("日", 300), "1", "food", "2024-01-01"}, FormErrors{}},
		{"unknown category accepted", FormInput{"a", "1", "pets", "2024-01-01"}, FormErrors{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _, _ := newForm(t)
			res := c.Submit(context.Background(), tc.in)
			assert.Equal(t, tc.want, res.Errors)
			assert.Equal(t, !tc.want.Any(), res.OK)
		})
	}
}

func TestFormUnknownCategoryBecomesOthers(t *testing.T) {
	c, _, _ := newForm(t)
	res := c.Submit(context.Background(), FormInput{"Vet", "20", "Pets", "2024-01-01"})
	require.True(t, res.OK)
	assert.Equal(t, core.Others, res.Expense.Category)
}

func TestFormBlankUsesToday(t *testing.T) {
	c, _, _ := newForm(t)
	assert.Equal(t, FormInput{Date: "2024-03-15"}, c.Blank())
}
