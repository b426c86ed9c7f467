package amqp

import (
	"encoding/json"
	"time"

	"budgetboard/internal/ledger"
)

// LedgerEvent is the broker message published after every ledger mutation.
// It carries aggregates only; consumers needing records read the store.
type LedgerEvent struct {
	Op           string    `json:"op"`
	ExpenseID    string    `json:"expense_id,omitempty"`
	Revision     uint64    `json:"revision"`
	ExpenseCount int       `json:"expense_count"`
	TotalCents   int64     `json:"total_cents"`
	BudgetCents  int64     `json:"budget_cents"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewLedgerEvent summarizes ev at time now.
func NewLedgerEvent(ev ledger.Event, now time.Time) LedgerEvent {
	return LedgerEvent{
		Op:           string(ev.Op),
		ExpenseID:    ev.ExpenseID,
		Revision:     ev.Snapshot.Revision,
		ExpenseCount: len(ev.Snapshot.Expenses),
		TotalCents:   ev.Snapshot.TotalExpenses().Cents,
		BudgetCents:  ev.Snapshot.Budget.Cents,
		Timestamp:    now.UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventFromJSON decodes a message body.
func LedgerEventFromJSON(data []byte) (LedgerEvent, error) {
	var msg LedgerEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return LedgerEvent{}, err
	}
	return msg, nil
}
