// Package ledger holds the expense and budget collections and derives
// the tenant-scoped aggregates the dashboard views render.
//
// Both collections are unscoped at rest: records of every tenant sit in
// the same slices, and isolation happens only at read time by filtering
// on the session's active tenant. That is a deliberate simplification of
// the mock, not a security boundary.
package ledger

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"tally/internal/cache"
	"tally/internal/core"
	"tally/internal/events"
	applog "tally/internal/log"
)

// ErrNoActiveTenant is returned by mutations attempted while signed out.
// Writes without a tenant would otherwise corrupt the collections with
// unscoped records.
var ErrNoActiveTenant = errors.New("no active tenant")

// SessionState is the slice of the session the ledger reads: the tenant
// that scopes every operation and the user that stamps new expenses.
type SessionState interface {
	ActiveTenant() (string, bool)
	CurrentUser() (core.User, bool)
}

// ExpenseInput is the caller-supplied part of a new expense; the ledger
// stamps the rest.
type ExpenseInput struct {
	Amount      core.Money
	Description string
	Category    string
	Date        core.Date
}

// BudgetInput is the caller-supplied part of a budget upsert.
type BudgetInput struct {
	Category string
	Amount   core.Money
	Period   core.Period
}

// Snapshot bundles the derived aggregates for one tenant.
type Snapshot struct {
	ByCategory map[string]core.Money
	ByMonth    map[string]core.Money
	GrandTotal core.Money
}

const (
	snapshotCacheSize = 16
	snapshotCacheTTL  = 30 * time.Second
)

// Config configures a Ledger. Session is required.
type Config struct {
	Session SessionState

	// Publisher receives a ledger event per mutation; nil disables
	// publishing.
	Publisher events.Publisher

	Logger *applog.Logger

	// MockExpenseCount is the number of expenses GenerateMockData
	// produces. Zero means DefaultMockExpenseCount.
	MockExpenseCount int

	// Rand drives mock generation; inject a seeded source for
	// deterministic output. Nil means time-seeded.
	Rand *rand.Rand

	// NewID and Now are injectable for deterministic tests.
	NewID func() string
	Now   func() time.Time
}

// Ledger is safe for concurrent use.
type Ledger struct {
	mu       sync.Mutex
	expenses []core.Expense
	budgets  []core.Budget

	session   SessionState
	publisher events.Publisher
	logger    *applog.Logger
	mockCount int
	rng       *rand.Rand
	newID     func() string
	now       func() time.Time
	snapshots *cache.LRU[Snapshot]
}

// New creates an empty ledger.
func New(cfg Config) *Ledger {
	if cfg.Logger == nil {
		cfg.Logger = applog.New(applog.DefaultConfig())
	}
	if cfg.MockExpenseCount == 0 {
		cfg.MockExpenseCount = DefaultMockExpenseCount
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Ledger{
		session:   cfg.Session,
		publisher: cfg.Publisher,
		logger:    cfg.Logger.WithComponent(applog.ComponentLedger),
		mockCount: cfg.MockExpenseCount,
		rng:       cfg.Rand,
		newID:     cfg.NewID,
		now:       cfg.Now,
		snapshots: cache.NewLRU[Snapshot](snapshotCacheSize, snapshotCacheTTL),
	}
}

// ListExpenses returns the active tenant's expenses in insertion order.
// Signed out, it returns nothing.
func (l *Ledger) ListExpenses() []core.Expense {
	tenant, ok := l.session.ActiveTenant()
	if !ok {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	var out []core.Expense
	for _, e := range l.expenses {
		if e.TenantID == tenant {
			out = append(out, e)
		}
	}
	return out
}

// ListBudgets returns the active tenant's budgets.
func (l *Ledger) ListBudgets() []core.Budget {
	tenant, ok := l.session.ActiveTenant()
	if !ok {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	var out []core.Budget
	for _, b := range l.budgets {
		if b.TenantID == tenant {
			out = append(out, b)
		}
	}
	return out
}

// TotalsByCategory sums the active tenant's expense amounts per category.
func (l *Ledger) TotalsByCategory() map[string]core.Money {
	return l.snapshot().ByCategory
}

// TotalsByMonth sums the active tenant's expense amounts per calendar
// month, keyed "YYYY-MM".
func (l *Ledger) TotalsByMonth() map[string]core.Money {
	return l.snapshot().ByMonth
}

// GrandTotal sums every expense amount of the active tenant.
func (l *Ledger) GrandTotal() core.Money {
	return l.snapshot().GrandTotal
}

// snapshot returns the tenant's aggregates, recomputing them in a single
// pass when no fresh cached copy exists.
func (l *Ledger) snapshot() Snapshot {
	tenant, ok := l.session.ActiveTenant()
	if !ok {
		return Snapshot{
			ByCategory: map[string]core.Money{},
			ByMonth:    map[string]core.Money{},
		}
	}

	if snap, ok := l.snapshots.Get(tenant); ok {
		return snap
	}

	l.mu.Lock()
	snap := Snapshot{
		ByCategory: make(map[string]core.Money),
		ByMonth:    make(map[string]core.Money),
	}
	for _, e := range l.expenses {
		if e.TenantID != tenant {
			continue
		}
		snap.ByCategory[e.Category] = snap.ByCategory[e.Category].Add(e.Amount)
		snap.ByMonth[e.Date.MonthKey()] = snap.ByMonth[e.Date.MonthKey()].Add(e.Amount)
		snap.GrandTotal = snap.GrandTotal.Add(e.Amount)
	}
	l.mu.Unlock()

	l.snapshots.Set(tenant, snap)
	return snap
}

// AddExpense stamps a fresh id, the active tenant and the current user
// onto the input, appends the expense and returns it. It fails with
// ErrNoActiveTenant while signed out.
func (l *Ledger) AddExpense(ctx context.Context, input ExpenseInput) (core.Expense, error) {
	tenant, ok := l.session.ActiveTenant()
	if !ok {
		return core.Expense{}, ErrNoActiveTenant
	}
	user, _ := l.session.CurrentUser()

	expense := core.Expense{
		ID:          l.newID(),
		Amount:      input.Amount,
		Description: input.Description,
		Category:    input.Category,
		Date:        input.Date,
		TenantID:    tenant,
		UserID:      user.ID,
	}
	if err := expense.Validate(); err != nil {
		return core.Expense{}, err
	}

	l.mu.Lock()
	l.expenses = append(l.expenses, expense)
	l.mu.Unlock()
	l.snapshots.Delete(tenant)

	l.publish(ctx, events.NewExpenseAdded(expense))

	l.logger.InfoContext(ctx, "Expense added",
		applog.FieldExpenseID, expense.ID,
		applog.FieldTenantID, expense.TenantID,
		applog.FieldUserID, expense.UserID,
		applog.FieldCategory, expense.Category,
		applog.FieldAmountCents, expense.Amount.Cents)

	return expense, nil
}

// UpsertBudget keeps at most one budget per (category, tenant): an
// existing budget has its amount and period replaced in place, keeping
// its id; otherwise a fresh budget is created. It fails with
// ErrNoActiveTenant while signed out.
func (l *Ledger) UpsertBudget(ctx context.Context, input BudgetInput) (core.Budget, error) {
	tenant, ok := l.session.ActiveTenant()
	if !ok {
		return core.Budget{}, ErrNoActiveTenant
	}

	budget := core.Budget{
		Category: input.Category,
		Amount:   input.Amount,
		Period:   input.Period,
		TenantID: tenant,
	}

	l.mu.Lock()
	idx := -1
	for i, b := range l.budgets {
		if b.Category == input.Category && b.TenantID == tenant {
			idx = i
			break
		}
	}
	if idx >= 0 {
		budget.ID = l.budgets[idx].ID
	} else {
		budget.ID = l.newID()
	}
	if err := budget.Validate(); err != nil {
		l.mu.Unlock()
		return core.Budget{}, err
	}
	if idx >= 0 {
		l.budgets[idx] = budget
	} else {
		l.budgets = append(l.budgets, budget)
	}
	l.mu.Unlock()
	l.snapshots.Delete(tenant)

	l.publish(ctx, events.NewBudgetUpserted(budget))

	l.logger.InfoContext(ctx, "Budget upserted",
		applog.FieldBudgetID, budget.ID,
		applog.FieldTenantID, budget.TenantID,
		applog.FieldCategory, budget.Category,
		applog.FieldAmountCents, budget.Amount.Cents)

	return budget, nil
}

func (l *Ledger) publish(ctx context.Context, event *events.LedgerEvent) {
	if l.publisher == nil {
		return
	}
	if err := l.publisher.Publish(ctx, event); err != nil {
		// The ledger mutation already happened; the feed is best-effort.
		l.logger.WarnContext(ctx, "Failed to publish ledger event",
			applog.FieldError, err,
			"kind", string(event.Kind))
	}
}
