// Package worker consumes the ledger event feed and keeps a running
// per-tenant spend tally, reported periodically.
package worker

import (
	"context"
	"sync"
	"time"

	"tally/internal/events"
	applog "tally/internal/log"
)

// Tally is the running count of activity seen for one tenant.
type Tally struct {
	ExpenseCents int64
	Expenses     int
	Budgets      int
	Resets       int
}

// TallyWorker aggregates ledger events by tenant.
type TallyWorker struct {
	mu     sync.Mutex
	totals map[string]*Tally
	logger *applog.Logger
}

func New(logger *applog.Logger) *TallyWorker {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &TallyWorker{
		totals: make(map[string]*Tally),
		logger: logger.WithComponent(applog.ComponentWorker),
	}
}

// Handle folds one event into the tenant's tally. Unknown kinds are
// dropped rather than requeued.
func (w *TallyWorker) Handle(event *events.LedgerEvent) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	tally := w.totals[event.TenantID]
	if tally == nil {
		tally = &Tally{}
		w.totals[event.TenantID] = tally
	}

	switch event.Kind {
	case events.KindExpenseAdded:
		tally.Expenses++
		tally.ExpenseCents += event.AmountCents
	case events.KindBudgetUpserted:
		tally.Budgets++
	case events.KindLedgerReset:
		// The tenant's collections were replaced wholesale; the running
		// expense figures no longer correspond to anything.
		tally.Resets++
		tally.Expenses = 0
		tally.ExpenseCents = 0
	default:
		w.logger.Warn("Dropping event of unknown kind",
			"kind", string(event.Kind),
			applog.FieldTenantID, event.TenantID)
	}

	return nil
}

// Snapshot returns a copy of every tenant's tally.
func (w *TallyWorker) Snapshot() map[string]Tally {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make(map[string]Tally, len(w.totals))
	for tenant, tally := range w.totals {
		out[tenant] = *tally
	}
	return out
}

// Report logs the current tallies every interval until the context ends.
func (w *TallyWorker) Report(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			for tenant, tally := range w.Snapshot() {
				w.logger.Info("Tenant tally",
					applog.FieldTenantID, tenant,
					applog.FieldAmountCents, tally.ExpenseCents,
					"expenses", tally.Expenses,
					"budgets", tally.Budgets,
					"resets", tally.Resets)
			}
		}
	}
}
