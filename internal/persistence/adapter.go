// Package persistence serializes the ledger to a key-value store.
//
// Expenses and budget are independent entries: a corrupt expense list never prevents a
// valid budget from loading and vice versa. Write failures are reported to the user
// through a Warner and never undo the in-memory state.
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"budgetboard/internal/core"
	"budgetboard/internal/kv"
	applog "budgetboard/internal/log"
)

// SaveWarning is the user-visible text raised when a write fails.
const SaveWarning = "Could not save data. Please check that storage is available."

// LoadWarning is the user-visible text raised when the store cannot be read.
const LoadWarning = "Could not read saved data. Starting with an empty ledger."

// Warner surfaces non-fatal persistence problems to the user.
type Warner interface {
	Warn(msg string)
}

// WarnerFunc adapts a function to Warner.
type WarnerFunc func(msg string)

func (f WarnerFunc) Warn(msg string) { f(msg) }

// record is the persisted shape of one expense.
type record struct {
	ID          string      `json:"id"`
	Description string      `json:"description"`
	Amount      json.Number `json:"amount"`
	Category    string      `json:"category"`
	Date        string      `json:"date"`
}

// Adapter reads and writes ledger state through a kv.Store.
type Adapter struct {
	store  kv.Store
	warner Warner
	logger *applog.Logger
}

// New creates an adapter. A nil warner discards warnings; a nil logger uses the default.
func New(store kv.Store, warner Warner, logger *applog.Logger) *Adapter {
	if warner == nil {
		warner = WarnerFunc(func(string) {})
	}
	if logger == nil {
		logger = applog.Default(applog.ComponentPersistence)
	}
	return &Adapter{store: store, warner: warner, logger: logger}
}

// Load returns the stored records and budget, substituting empty/zero defaults per entry.
func (a *Adapter) Load(ctx context.Context) ([]core.Expense, core.Money) {
	return a.loadExpenses(ctx), a.loadBudget(ctx)
}

func (a *Adapter) loadExpenses(ctx context.Context) []core.Expense {
	raw, found, err := a.store.Get(ctx, kv.KeyExpenses)
	if err != nil {
		a.logger.ErrorType(ctx, "Failed to read expenses", applog.ErrorTypeDatabase, err)
		a.warner.Warn(LoadWarning)
		return nil
	}
	if !found || strings.TrimSpace(raw) == "" {
		return nil
	}
	records, err := DecodeExpenses(raw)
	if err != nil {
		a.logger.DebugContext(ctx, "Discarding malformed expenses entry",
			applog.FieldErrorType, applog.ErrorTypeMalformed, applog.FieldError, err)
		return nil
	}
	return records
}

func (a *Adapter) loadBudget(ctx context.Context) core.Money {
	raw, found, err := a.store.Get(ctx, kv.KeyBudget)
	if err != nil {
		a.logger.ErrorType(ctx, "Failed to read budget", applog.ErrorTypeDatabase, err)
		a.warner.Warn(LoadWarning)
		return core.Money{}
	}
	if !found {
		return core.Money{}
	}
	budget, err := DecodeBudget(raw)
	if err != nil {
		a.logger.DebugContext(ctx, "Discarding malformed budget entry",
			applog.FieldErrorType, applog.ErrorTypeMalformed, applog.FieldError, err)
		return core.Money{}
	}
	return budget
}

// Save writes both entries. A failure raises SaveWarning once and is returned for logging only.
func (a *Adapter) Save(ctx context.Context, records []core.Expense, budget core.Money) error {
	payload, err := EncodeExpenses(records)
	if err != nil {
		a.logger.ErrorType(ctx, "Failed to encode expenses", applog.ErrorTypeInternal, err)
		a.warner.Warn(SaveWarning)
		return err
	}

	var errs []error
	if err := a.store.Set(ctx, kv.KeyExpenses, payload); err != nil {
		errs = append(errs, fmt.Errorf("save expenses: %w", err))
	}
	if err := a.store.Set(ctx, kv.KeyBudget, EncodeBudget(budget)); err != nil {
		errs = append(errs, fmt.Errorf("save budget: %w", err))
	}
	if err := errors.Join(errs...); err != nil {
		a.logger.ErrorType(ctx, "Failed to save ledger", applog.ErrorTypeDatabase, err,
			applog.FieldCount, len(records))
		a.warner.Warn(SaveWarning)
		return err
	}

	a.logger.DebugContext(ctx, "Ledger saved",
		applog.FieldCount, len(records),
		applog.FieldBudgetCents, budget.Cents)
	return nil
}

// EncodeExpenses renders records in the persisted JSON format.
func EncodeExpenses(records []core.Expense) (string, error) {
	out := make([]record, len(records))
	for i, e := range records {
		out[i] = record{
			ID:          e.ID,
			Description: e.Description,
			Amount:      json.Number(e.Amount.String()),
			Category:    string(e.Category),
			Date:        e.Date.String(),
		}
	}
	b, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("marshal expenses: %w", err)
	}
	return string(b), nil
}

// DecodeExpenses parses the persisted JSON format. A structurally invalid payload is an
// error; individual invalid records are skipped and unknown categories become others.
func DecodeExpenses(raw string) ([]core.Expense, error) {
	var in []record
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&in); err != nil {
		return nil, fmt.Errorf("unmarshal expenses: %w", err)
	}

	out := make([]core.Expense, 0, len(in))
	for _, r := range in {
		e, err := r.expense()
		if err != nil {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (r record) expense() (core.Expense, error) {
	amount, err := decimal.NewFromString(r.Amount.String())
	if err != nil {
		return core.Expense{}, core.ErrInvalidAmount
	}
	money, err := core.MoneyFromDecimal(amount)
	if err != nil {
		return core.Expense{}, err
	}
	// Positive sub-cent amounts stay positive.
	if money.Cents == 0 && amount.IsPositive() {
		money.Cents = 1
	}
	date, err := core.ParseDate(r.Date)
	if err != nil {
		return core.Expense{}, err
	}
	e := core.Expense{
		ID:          r.ID,
		Description: r.Description,
		Amount:      money,
		Category:    core.Normalize(r.Category),
		Date:        date,
	}
	if strings.TrimSpace(e.ID) == "" {
		return core.Expense{}, errors.New("missing id")
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	return e, nil
}

// EncodeBudget renders the budget as decimal text.
func EncodeBudget(budget core.Money) string {
	return budget.String()
}

// DecodeBudget parses decimal budget text. Negative values are kept as stored.
func DecodeBudget(raw string) (core.Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return core.Money{}, fmt.Errorf("parse budget: %w", err)
	}
	return core.MoneyFromDecimal(d)
}
