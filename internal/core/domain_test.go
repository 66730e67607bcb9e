package core

import (
	"errors"
	"testing"
)

func TestDateMonthKey(t *testing.T) {
	tests := []struct {
		name string
		date Date
		want string
	}{
		{name: "mid month", date: NewDate(2024, 3, 15), want: "2024-03"},
		{name: "first of month", date: NewDate(2024, 12, 1), want: "2024-12"},
		{name: "single digit month", date: NewDate(2023, 1, 31), want: "2023-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.date.MonthKey(); got != tt.want {
				t.Errorf("MonthKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-01")
	if err != nil {
		t.Fatalf("ParseDate returned error: %v", err)
	}
	if d.Year() != 2024 || d.Month() != 3 || d.Day() != 1 {
		t.Errorf("ParseDate = %v, want 2024-03-01", d)
	}

	if _, err := ParseDate("01/03/2024"); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("ParseDate with wrong layout: error = %v, want ErrInvalidDate", err)
	}
}

func TestExpenseValidate(t *testing.T) {
	valid := Expense{
		ID:          "exp-1",
		Amount:      FromUnits(42),
		Description: "Lunch",
		Category:    "Food",
		Date:        NewDate(2024, 3, 1),
		TenantID:    "tenant-1",
		UserID:      "user-1",
	}

	tests := []struct {
		name    string
		mutate  func(e *Expense)
		wantErr error
	}{
		{name: "valid", mutate: func(e *Expense) {}},
		{name: "zero date", mutate: func(e *Expense) { e.Date = Date{} }, wantErr: ErrInvalidDate},
		{name: "empty description", mutate: func(e *Expense) { e.Description = "  " }, wantErr: ErrEmptyDescription},
		{name: "negative amount", mutate: func(e *Expense) { e.Amount = Money{Cents: -1} }, wantErr: ErrInvalidAmount},
		{name: "empty category", mutate: func(e *Expense) { e.Category = "" }, wantErr: ErrEmptyCategory},
		{name: "empty tenant", mutate: func(e *Expense) { e.TenantID = "" }, wantErr: ErrEmptyTenant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid
			tt.mutate(&e)
			err := e.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate returned unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBudgetValidate(t *testing.T) {
	valid := Budget{
		ID:       "budget-1",
		Category: "Food",
		Amount:   FromUnits(300),
		Period:   Monthly,
		TenantID: "tenant-1",
	}

	if err := valid.Validate(); err != nil {
		t.Fatalf("valid budget rejected: %v", err)
	}

	bad := valid
	bad.Period = "weekly"
	if err := bad.Validate(); !errors.Is(err, ErrInvalidPeriod) {
		t.Errorf("invalid period: error = %v, want ErrInvalidPeriod", err)
	}
}

func TestUserValidate(t *testing.T) {
	valid := User{
		ID:          "user-1",
		Email:       "alice@company1.com",
		DisplayName: "admin",
		TenantID:    "tenant-1",
		TenantName:  "Company 1",
		Role:        RoleAdmin,
	}

	if err := valid.Validate(); err != nil {
		t.Fatalf("valid user rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(u *User)
	}{
		{name: "empty id", mutate: func(u *User) { u.ID = "" }},
		{name: "email without at sign", mutate: func(u *User) { u.Email = "not-an-email" }},
		{name: "empty tenant", mutate: func(u *User) { u.TenantID = "" }},
		{name: "unknown role", mutate: func(u *User) { u.Role = "owner" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := valid
			tt.mutate(&u)
			if err := u.Validate(); err == nil {
				t.Error("Validate accepted malformed user")
			}
		})
	}
}
