package events

import (
	"encoding/json"
	"time"

	"tally/internal/core"
)

// Kind discriminates ledger event payloads on the shared queue.
type Kind string

const (
	KindExpenseAdded   Kind = "expense_added"
	KindBudgetUpserted Kind = "budget_upserted"
	KindLedgerReset    Kind = "ledger_reset"
)

// LedgerEvent is the wire form of a ledger mutation. One struct covers
// all kinds; fields not meaningful for a kind are left zero.
type LedgerEvent struct {
	Kind        Kind      `json:"kind"`
	TenantID    string    `json:"tenantId"`
	EntityID    string    `json:"entityId,omitempty"`
	Category    string    `json:"category,omitempty"`
	AmountCents int64     `json:"amountCents,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewExpenseAdded builds the event for a freshly appended expense.
func NewExpenseAdded(e core.Expense) *LedgerEvent {
	return &LedgerEvent{
		Kind:        KindExpenseAdded,
		TenantID:    e.TenantID,
		EntityID:    e.ID,
		Category:    e.Category,
		AmountCents: e.Amount.Cents,
		Timestamp:   time.Now(),
	}
}

// NewBudgetUpserted builds the event for a created or replaced budget.
func NewBudgetUpserted(b core.Budget) *LedgerEvent {
	return &LedgerEvent{
		Kind:        KindBudgetUpserted,
		TenantID:    b.TenantID,
		EntityID:    b.ID,
		Category:    b.Category,
		AmountCents: b.Amount.Cents,
		Timestamp:   time.Now(),
	}
}

// NewLedgerReset builds the event emitted when mock generation replaces
// a tenant's collections.
func NewLedgerReset(tenantID string) *LedgerEvent {
	return &LedgerEvent{
		Kind:      KindLedgerReset,
		TenantID:  tenantID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON parses an event from JSON bytes.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
