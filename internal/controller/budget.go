package controller

import (
	"context"

	"budgetboard/internal/core"
	applog "budgetboard/internal/log"
)

// Budget banner texts.
const (
	MsgBudgetSet     = "Budget set successfully!"
	MsgBudgetInvalid = "Please enter a valid amount greater than zero."
)

// BudgetSetter is the ledger surface the budget controller needs.
type BudgetSetter interface {
	SetBudget(ctx context.Context, amount core.Money)
	Budget() core.Money
}

// BudgetResult is the outcome of one Set.
type BudgetResult struct {
	OK      bool
	Message string
	Budget  core.Money
}

// BudgetController sets the monthly budget from free-text input.
type BudgetController struct {
	ledger BudgetSetter
	banner *Banner
	logger *applog.Logger
}

func NewBudgetController(ledger BudgetSetter, banner *Banner, logger *applog.Logger) *BudgetController {
	if logger == nil {
		logger = applog.Default(applog.ComponentController)
	}
	return &BudgetController{ledger: ledger, banner: banner, logger: logger}
}

// Banner returns the feedback banner of the budget input.
func (c *BudgetController) Banner() *Banner {
	return c.banner
}

// Current is the input pre-fill: the budget when positive, else empty.
func (c *BudgetController) Current() string {
	b := c.ledger.Budget()
	if b.Cents <= 0 {
		return ""
	}
	return b.String()
}

// Set parses input and forwards a positive amount to the ledger. Both outcomes show a
// self-dismissing notice.
func (c *BudgetController) Set(ctx context.Context, input string) BudgetResult {
	amount, err := core.ParseAmount(input)
	if err != nil {
		c.logger.DebugContext(ctx, "Budget rejected",
			applog.FieldErrorType, applog.ErrorTypeValidation,
			"input", input)
		c.show(MsgBudgetInvalid, KindError)
		return BudgetResult{Message: MsgBudgetInvalid, Budget: c.ledger.Budget()}
	}

	c.ledger.SetBudget(ctx, amount)
	c.show(MsgBudgetSet, KindSuccess)
	return BudgetResult{OK: true, Message: MsgBudgetSet, Budget: amount}
}

func (c *BudgetController) show(text string, kind Kind) {
	if c.banner != nil {
		c.banner.Show(text, kind)
	}
}
