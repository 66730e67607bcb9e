package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Monthly Period = "monthly"
	Yearly  Period = "yearly"
)

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

type (
	// Period is the recurrence of a budget.
	Period string

	// Role is the access level a user holds inside their tenant.
	Role string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// User is the authenticated identity of a session. TenantID scopes
	// every ledger read and write performed while the user is signed in.
	User struct {
		ID          string `json:"id"`
		Email       string `json:"email"`
		DisplayName string `json:"displayName"`
		TenantID    string `json:"tenantId"`
		TenantName  string `json:"tenantName"`
		Role        Role   `json:"role"`
	}

	Expense struct {
		ID          string
		Amount      Money
		Description string
		Category    string
		Date        Date
		TenantID    string
		UserID      string
	}

	Budget struct {
		ID       string
		Category string
		Amount   Money
		Period   Period
		TenantID string
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidPeriod    = errors.New("invalid period")
	ErrInvalidRole      = errors.New("invalid role")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptyTenant      = errors.New("empty tenant id")
)

// NewDate creates a Date from year, month, day at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a calendar date in YYYY-MM-DD form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// MonthKey truncates the date to its calendar month, rendered as "YYYY-MM".
// Truncation goes through the time package rather than string slicing so the
// key is correct regardless of how the date was originally formatted.
func (d Date) MonthKey() string {
	return d.Format("2006-01")
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// String renders the date in YYYY-MM-DD form.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (p Period) Validate() error {
	switch p {
	case Monthly, Yearly:
		return nil
	default:
		return ErrInvalidPeriod
	}
}

func (r Role) Validate() error {
	switch r {
	case RoleAdmin, RoleUser:
		return nil
	default:
		return ErrInvalidRole
	}
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (u User) Validate() error {
	if strings.TrimSpace(u.ID) == "" {
		return errors.New("empty user id")
	}
	if !strings.Contains(u.Email, "@") {
		return errors.New("invalid email")
	}
	if strings.TrimSpace(u.TenantID) == "" {
		return ErrEmptyTenant
	}
	return u.Role.Validate()
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if strings.TrimSpace(e.TenantID) == "" {
		return ErrEmptyTenant
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	if err := b.Period.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(b.TenantID) == "" {
		return ErrEmptyTenant
	}
	return nil
}
