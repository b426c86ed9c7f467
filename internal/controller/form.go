package controller

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"budgetboard/internal/core"
	applog "budgetboard/internal/log"
)

// Field error and banner texts of the entry form.
const (
	MsgDescriptionRequired = "Description is required"
	MsgAmountInvalid       = "Please enter a valid amount greater than zero"
	MsgCategoryRequired    = "Please select a category"
	MsgDateRequired        = "Date is required"
	MsgDateInvalid         = "Please enter a valid date"
	MsgExpenseAdded        = "Expense added successfully!"
)

// FormState is the entry form state machine.
type FormState string

const (
	StateEditing    FormState = "editing"
	StateSubmitting FormState = "submitting"
)

// FormInput holds the raw field values.
type FormInput struct {
	Description string
	Amount      string
	Category    string
	Date        string
}

// FormErrors holds one message per failing field; empty means valid.
type FormErrors struct {
	Description string
	Amount      string
	Category    string
	Date        string
}

// Any reports whether at least one field failed.
func (e FormErrors) Any() bool {
	return e.Description != "" || e.Amount != "" || e.Category != "" || e.Date != ""
}

// FormResult is the outcome of one submit. Values is what the form should show next.
type FormResult struct {
	OK      bool
	Expense core.Expense
	Errors  FormErrors
	Values  FormInput
}

// ExpenseAdder is the ledger operation the form needs.
type ExpenseAdder interface {
	Add(ctx context.Context, description string, amount core.Money, category string, date core.Date) (core.Expense, error)
}

// FormController validates entries and forwards them to the ledger.
type FormController struct {
	mu     sync.Mutex
	state  FormState
	ledger ExpenseAdder
	banner *Banner
	now    func() time.Time
	logger *applog.Logger
}

// NewFormController creates a controller in the editing state. A nil clock uses time.Now.
func NewFormController(ledger ExpenseAdder, banner *Banner, now func() time.Time, logger *applog.Logger) *FormController {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = applog.Default(applog.ComponentController)
	}
	return &FormController{
		state:  StateEditing,
		ledger: ledger,
		banner: banner,
		now:    now,
		logger: logger,
	}
}

// State returns the current form state.
func (c *FormController) State() FormState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Banner returns the success banner of the form.
func (c *FormController) Banner() *Banner {
	return c.banner
}

// Blank returns empty fields with the date set to today.
func (c *FormController) Blank() FormInput {
	return FormInput{Date: core.DateOf(c.now()).String()}
}

// Submit validates every field independently and adds the expense when all pass.
func (c *FormController) Submit(ctx context.Context, in FormInput) FormResult {
	c.mu.Lock()
	c.state = StateSubmitting
	defer func() {
		c.state = StateEditing
		c.mu.Unlock()
	}()

	amount, date, errs := validateForm(in)
	if errs.Any() {
		c.logger.DebugContext(ctx, "Form rejected",
			applog.FieldErrorType, applog.ErrorTypeValidation)
		return FormResult{Errors: errs, Values: in}
	}

	e, err := c.ledger.Add(ctx, in.Description, amount, in.Category, date)
	if err != nil {
		c.logger.ErrorType(ctx, "Ledger rejected validated entry", applog.ErrorTypeValidation, err)
		return FormResult{Errors: errorsFromLedger(err), Values: in}
	}

	if c.banner != nil {
		c.banner.Show(MsgExpenseAdded, KindSuccess)
	}
	return FormResult{OK: true, Expense: e, Values: c.Blank()}
}

func validateForm(in FormInput) (core.Money, core.Date, FormErrors) {
	var errs FormErrors

	if strings.TrimSpace(in.Description) == "" {
		errs.Description = MsgDescriptionRequired
	}

	amount, err := core.ParseAmount(in.Amount)
	if err != nil {
		errs.Amount = MsgAmountInvalid
	}

	if strings.TrimSpace(in.Category) == "" {
		errs.Category = MsgCategoryRequired
	}

	var date core.Date
	if strings.TrimSpace(in.Date) == "" {
		errs.Date = MsgDateRequired
	} else if date, err = core.ParseDate(in.Date); err != nil {
		errs.Date = MsgDateInvalid
	}

	return amount, date, errs
}

func errorsFromLedger(err error) FormErrors {
	var errs FormErrors
	switch {
	case errors.Is(err, core.ErrEmptyDescription):
		errs.Description = MsgDescriptionRequired
	case errors.Is(err, core.ErrInvalidAmount):
		errs.Amount = MsgAmountInvalid
	case errors.Is(err, core.ErrEmptyCategory):
		errs.Category = MsgCategoryRequired
	default:
		errs.Date = MsgDateInvalid
	}
	return errs
}
