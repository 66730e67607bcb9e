package ledger

import (
	"context"
	"strconv"

	"tally/internal/core"
	"tally/internal/events"
	applog "tally/internal/log"
)

// DefaultMockExpenseCount is how many expenses GenerateMockData produces
// when the count is not configured.
const DefaultMockExpenseCount = 50

// MockCategories is the fixed category set mock data draws from. Exactly
// one budget per entry is generated.
var MockCategories = []string{
	"Food",
	"Transportation",
	"Entertainment",
	"Shopping",
	"Bills",
	"Healthcare",
}

// Mock amount bounds, in whole currency units.
const (
	mockExpenseMinUnits = 10
	mockExpenseMaxUnits = 509
	mockBudgetMinUnits  = 500
	mockBudgetMaxUnits  = 2499
	mockDateWindowDays  = 90
)

// GenerateMockData replaces both collections with fresh random data for
// the active tenant: the configured number of expenses with bounded
// random amounts, categories from MockCategories and dates inside the
// trailing 90 days, plus exactly one budget per category. Signed out, it
// is a no-op.
func (l *Ledger) GenerateMockData(ctx context.Context) {
	tenant, ok := l.session.ActiveTenant()
	if !ok {
		l.logger.Debug("Skipping mock generation, signed out")
		return
	}
	user, _ := l.session.CurrentUser()
	today := l.now()

	expenses := make([]core.Expense, 0, l.mockCount)
	for i := 0; i < l.mockCount; i++ {
		day := today.AddDate(0, 0, -l.rng.Intn(mockDateWindowDays))
		expenses = append(expenses, core.Expense{
			ID:          l.newID(),
			Amount:      core.FromUnits(int64(l.rng.Intn(mockExpenseMaxUnits-mockExpenseMinUnits+1) + mockExpenseMinUnits)),
			Description: "Expense " + strconv.Itoa(i+1),
			Category:    MockCategories[l.rng.Intn(len(MockCategories))],
			Date:        core.NewDate(day.Year(), int(day.Month()), day.Day()),
			TenantID:    tenant,
			UserID:      user.ID,
		})
	}

	budgets := make([]core.Budget, 0, len(MockCategories))
	for _, category := range MockCategories {
		budgets = append(budgets, core.Budget{
			ID:       l.newID(),
			Category: category,
			Amount:   core.FromUnits(int64(l.rng.Intn(mockBudgetMaxUnits-mockBudgetMinUnits+1) + mockBudgetMinUnits)),
			Period:   core.Monthly,
			TenantID: tenant,
		})
	}

	l.mu.Lock()
	l.expenses = expenses
	l.budgets = budgets
	l.mu.Unlock()
	// Replacing the collections drops every tenant's records, so every
	// cached snapshot is stale.
	l.snapshots.Clear()

	l.publish(ctx, events.NewLedgerReset(tenant))

	l.logger.InfoContext(ctx, "Generated mock ledger data",
		applog.FieldTenantID, tenant,
		"expenses", len(expenses),
		"budgets", len(budgets))
}
