package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"tally/internal/core"
	"tally/internal/events"
)

// fakeSession lets tests switch tenants without driving a real login.
type fakeSession struct {
	user *core.User
}

func (f *fakeSession) ActiveTenant() (string, bool) {
	if f.user == nil {
		return "", false
	}
	return f.user.TenantID, true
}

func (f *fakeSession) CurrentUser() (core.User, bool) {
	if f.user == nil {
		return core.User{}, false
	}
	return *f.user, true
}

func (f *fakeSession) signIn(tenantID, userID string) {
	f.user = &core.User{
		ID:       userID,
		Email:    userID + "@" + tenantID + ".example",
		TenantID: tenantID,
		Role:     core.RoleUser,
	}
}

type recordingPublisher struct {
	events []*events.LedgerEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event *events.LedgerEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func newTestLedger(session SessionState, publisher events.Publisher) *Ledger {
	ids := 0
	return New(Config{
		Session:   session,
		Publisher: publisher,
		Rand:      rand.New(rand.NewSource(1)),
		NewID: func() string {
			ids++
			return fmt.Sprintf("id-%d", ids)
		},
		Now: func() time.Time { return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC) },
	})
}

func mustAdd(t *testing.T, l *Ledger, input ExpenseInput) core.Expense {
	t.Helper()
	e, err := l.AddExpense(context.Background(), input)
	if err != nil {
		t.Fatalf("AddExpense returned error: %v", err)
	}
	return e
}

func TestAddExpenseStampsSessionState(t *testing.T) {
	session := &fakeSession{}
	session.signIn("tenant-1", "user-1")
	l := newTestLedger(session, nil)

	date, _ := core.ParseDate("2024-03-01")
	got := mustAdd(t, l, ExpenseInput{
		Amount:      core.FromUnits(42),
		Description: "Lunch",
		Category:    "Food",
		Date:        date,
	})

	if got.ID == "" {
		t.Error("AddExpense left the id empty")
	}
	if got.TenantID != "tenant-1" {
		t.Errorf("TenantID = %q, want tenant-1", got.TenantID)
	}
	if got.UserID != "user-1" {
		t.Errorf("UserID = %q, want user-1", got.UserID)
	}

	list := l.ListExpenses()
	if len(list) != 1 || list[0].ID != got.ID {
		t.Errorf("ListExpenses = %+v, want the created expense", list)
	}
}

func TestAddExpenseRequiresTenant(t *testing.T) {
	l := newTestLedger(&fakeSession{}, nil)

	_, err := l.AddExpense(context.Background(), ExpenseInput{
		Amount:      core.FromUnits(10),
		Description: "Coffee",
		Category:    "Food",
		Date:        core.NewDate(2024, 3, 1),
	})
	if !errors.Is(err, ErrNoActiveTenant) {
		t.Fatalf("AddExpense error = %v, want ErrNoActiveTenant", err)
	}
	if got := l.ListExpenses(); got != nil {
		t.Errorf("ListExpenses after failed add = %+v, want none", got)
	}
}

func TestAddExpenseRejectsInvalidInput(t *testing.T) {
	session := &fakeSession{}
	session.signIn("tenant-1", "user-1")
	l := newTestLedger(session, nil)

	_, err := l.AddExpense(context.Background(), ExpenseInput{
		Amount:      core.FromUnits(10),
		Description: "  ",
		Category:    "Food",
		Date:        core.NewDate(2024, 3, 1),
	})
	if !errors.Is(err, core.ErrEmptyDescription) {
		t.Errorf("AddExpense error = %v, want ErrEmptyDescription", err)
	}
}

func TestTenantSwitchScopesReads(t *testing.T) {
	session := &fakeSession{}
	session.signIn("tenant-1", "user-1")
	l := newTestLedger(session, nil)

	mustAdd(t, l, ExpenseInput{
		Amount:      core.FromUnits(42),
		Description: "Lunch",
		Category:    "Food",
		Date:        core.NewDate(2024, 3, 1),
	})

	// Same collections, different tenant: nothing visible.
	session.signIn("tenant-2", "user-2")
	if got := l.ListExpenses(); len(got) != 0 {
		t.Errorf("ListExpenses after tenant switch = %+v, want none", got)
	}
	if got := l.GrandTotal(); got.Cents != 0 {
		t.Errorf("GrandTotal after tenant switch = %v, want 0", got)
	}

	added := mustAdd(t, l, ExpenseInput{
		Amount:      core.FromUnits(7),
		Description: "Bus",
		Category:    "Transportation",
		Date:        core.NewDate(2024, 3, 2),
	})
	if added.TenantID != "tenant-2" {
		t.Errorf("TenantID = %q, want the tenant active at call time", added.TenantID)
	}

	// Switching back, the original record is still there and the other
	// tenant's is not.
	session.signIn("tenant-1", "user-1")
	list := l.ListExpenses()
	if len(list) != 1 || list[0].Description != "Lunch" {
		t.Errorf("ListExpenses for tenant-1 = %+v, want only Lunch", list)
	}
}

func TestAggregates(t *testing.T) {
	session := &fakeSession{}
	session.signIn("tenant-1", "user-1")
	l := newTestLedger(session, nil)

	mustAdd(t, l, ExpenseInput{Amount: core.FromUnits(10), Description: "Groceries", Category: "Food", Date: core.NewDate(2024, 1, 5)})
	mustAdd(t, l, ExpenseInput{Amount: core.FromUnits(20), Description: "Dinner", Category: "Food", Date: core.NewDate(2024, 2, 10)})
	mustAdd(t, l, ExpenseInput{Amount: core.FromUnits(5), Description: "Bus", Category: "Transportation", Date: core.NewDate(2024, 2, 20)})

	byCategory := l.TotalsByCategory()
	if got := byCategory["Food"]; got.Cents != 3000 {
		t.Errorf("TotalsByCategory[Food] = %v, want 30.00", got)
	}
	if got := byCategory["Transportation"]; got.Cents != 500 {
		t.Errorf("TotalsByCategory[Transportation] = %v, want 5.00", got)
	}

	byMonth := l.TotalsByMonth()
	if got := byMonth["2024-01"]; got.Cents != 1000 {
		t.Errorf("TotalsByMonth[2024-01] = %v, want 10.00", got)
	}
	if got := byMonth["2024-02"]; got.Cents != 2500 {
		t.Errorf("TotalsByMonth[2024-02] = %v, want 25.00", got)
	}

	if got := l.GrandTotal(); got.Cents != 3500 {
		t.Errorf("GrandTotal = %v, want 35.00", got)
	}
}

func TestCategoryTotalsSumToGrandTotal(t *testing.T) {
	session := &fakeSession{}
	session.signIn("demo", "user-1")
	l := newTestLedger(session, nil)
	l.GenerateMockData(context.Background())

	var sum core.Money
	for _, amount := range l.TotalsByCategory() {
		sum = sum.Add(amount)
	}
	if grand := l.GrandTotal(); sum != grand {
		t.Errorf("category totals sum to %v, grand total is %v", sum, grand)
	}

	sum = core.Money{}
	for _, amount := range l.TotalsByMonth() {
		sum = sum.Add(amount)
	}
	if grand := l.GrandTotal(); sum != grand {
		t.Errorf("month totals sum to %v, grand total is %v", sum, grand)
	}
}

func TestAggregatesRecomputeAfterMutation(t *testing.T) {
	session := &fakeSession{}
	session.signIn("tenant-1", "user-1")
	l := newTestLedger(session, nil)

	mustAdd(t, l, ExpenseInput{Amount: core.FromUnits(10), Description: "First", Category: "Food", Date: core.NewDate(2024, 3, 1)})
	if got := l.GrandTotal(); got.Cents != 1000 {
		t.Fatalf("GrandTotal = %v, want 10.00", got)
	}

	// A second write must invalidate the cached snapshot.
	mustAdd(t, l, ExpenseInput{Amount: core.FromUnits(15), Description: "Second", Category: "Food", Date: core.NewDate(2024, 3, 2)})
	if got := l.GrandTotal(); got.Cents != 2500 {
		t.Errorf("GrandTotal after second add = %v, want 25.00", got)
	}
}

func TestUpsertBudget(t *testing.T) {
	session := &fakeSession{}
	session.signIn("tenant-1", "user-1")
	l := newTestLedger(session, nil)

	first, err := l.UpsertBudget(context.Background(), BudgetInput{
		Category: "Food",
		Amount:   core.FromUnits(300),
		Period:   core.Monthly,
	})
	if err != nil {
		t.Fatalf("first UpsertBudget returned error: %v", err)
	}

	second, err := l.UpsertBudget(context.Background(), BudgetInput{
		Category: "Food",
		Amount:   core.FromUnits(500),
		Period:   core.Monthly,
	})
	if err != nil {
		t.Fatalf("second UpsertBudget returned error: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("replace changed the budget id: %q -> %q", first.ID, second.ID)
	}

	budgets := l.ListBudgets()
	if len(budgets) != 1 {
		t.Fatalf("ListBudgets returned %d entries, want exactly 1", len(budgets))
	}
	if budgets[0].Amount.Cents != 50000 {
		t.Errorf("budget amount = %v, want the latest 500.00", budgets[0].Amount)
	}
}

func TestUpsertBudgetScopedPerTenant(t *testing.T) {
	session := &fakeSession{}
	session.signIn("tenant-1", "user-1")
	l := newTestLedger(session, nil)

	if _, err := l.UpsertBudget(context.Background(), BudgetInput{Category: "Food", Amount: core.FromUnits(300), Period: core.Monthly}); err != nil {
		t.Fatalf("UpsertBudget returned error: %v", err)
	}

	// Same category under another tenant creates a separate budget.
	session.signIn("tenant-2", "user-2")
	if _, err := l.UpsertBudget(context.Background(), BudgetInput{Category: "Food", Amount: core.FromUnits(100), Period: core.Yearly}); err != nil {
		t.Fatalf("UpsertBudget returned error: %v", err)
	}

	if got := l.ListBudgets(); len(got) != 1 || got[0].Amount.Cents != 10000 {
		t.Errorf("tenant-2 budgets = %+v, want one 100.00 budget", got)
	}

	session.signIn("tenant-1", "user-1")
	if got := l.ListBudgets(); len(got) != 1 || got[0].Amount.Cents != 30000 {
		t.Errorf("tenant-1 budgets = %+v, want one 300.00 budget", got)
	}
}

func TestUpsertBudgetRequiresTenant(t *testing.T) {
	l := newTestLedger(&fakeSession{}, nil)
	_, err := l.UpsertBudget(context.Background(), BudgetInput{
		Category: "Food",
		Amount:   core.FromUnits(300),
		Period:   core.Monthly,
	})
	if !errors.Is(err, ErrNoActiveTenant) {
		t.Errorf("UpsertBudget error = %v, want ErrNoActiveTenant", err)
	}
}

func TestMutationsPublishEvents(t *testing.T) {
	session := &fakeSession{}
	session.signIn("tenant-1", "user-1")
	pub := &recordingPublisher{}
	l := newTestLedger(session, pub)

	mustAdd(t, l, ExpenseInput{Amount: core.FromUnits(42), Description: "Lunch", Category: "Food", Date: core.NewDate(2024, 3, 1)})
	if _, err := l.UpsertBudget(context.Background(), BudgetInput{Category: "Food", Amount: core.FromUnits(300), Period: core.Monthly}); err != nil {
		t.Fatalf("UpsertBudget returned error: %v", err)
	}
	l.GenerateMockData(context.Background())

	if len(pub.events) != 3 {
		t.Fatalf("published %d events, want 3", len(pub.events))
	}
	wantKinds := []events.Kind{events.KindExpenseAdded, events.KindBudgetUpserted, events.KindLedgerReset}
	for i, want := range wantKinds {
		if pub.events[i].Kind != want {
			t.Errorf("event %d kind = %q, want %q", i, pub.events[i].Kind, want)
		}
		if pub.events[i].TenantID != "tenant-1" {
			t.Errorf("event %d tenant = %q, want tenant-1", i, pub.events[i].TenantID)
		}
	}
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	session := &fakeSession{}
	session.signIn("tenant-1", "user-1")
	pub := &recordingPublisher{err: errors.New("broker down")}
	l := newTestLedger(session, pub)

	got := mustAdd(t, l, ExpenseInput{Amount: core.FromUnits(42), Description: "Lunch", Category: "Food", Date: core.NewDate(2024, 3, 1)})
	if list := l.ListExpenses(); len(list) != 1 || list[0].ID != got.ID {
		t.Error("expense was lost when publishing failed")
	}
}
