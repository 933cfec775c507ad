package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

type (
	// Kind tags a transaction as income or expense. The signed wire
	// representation used by the remote API is derived from it, never
	// stored alongside it.
	Kind string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Amount is the tagged pair {kind, magnitude}. The magnitude is
	// always non-negative; the sign lives in the Kind.
	Amount struct {
		Kind      Kind
		Magnitude Money
	}

	Transaction struct {
		ID          string
		Amount      Amount
		Description string
		Category    string // display name
		Date        Date
		UpdatedAt   time.Time
	}

	Category struct {
		ID   int
		Name string
	}

	User struct {
		ID       string
		Username string
		Name     string
		Email    string
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidDate        = errors.New("invalid date")
	ErrEmptyDescription   = errors.New("empty description")
	ErrInvalidKind        = errors.New("invalid transaction kind")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRegistrationFailed = errors.New("registration failed")
	ErrCategoryCreate     = errors.New("failed to create category")
)

func (k Kind) Validate() error {
	switch k {
	case Income, Expense:
		return nil
	default:
		return ErrInvalidKind
	}
}

// ParseDate parses an ISO calendar date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (a Amount) Validate() error {
	if err := a.Kind.Validate(); err != nil {
		return err
	}
	return a.Magnitude.Validate()
}

func (t Transaction) Validate() error {
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return t.Date.Validate()
}
