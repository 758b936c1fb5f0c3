package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxBudgetNameLength         = 200
	MaxExpenseDescriptionLength = 500
)

type (
	// Budget is a named spending category with a limit.
	Budget struct {
		ID    int64  `json:"id"`
		Name  string `json:"name"`
		Limit Money  `json:"limit"`
	}

	// Expense is a single spend record. BudgetID must reference an existing Budget.
	Expense struct {
		ID          int64     `json:"id"`
		Description string    `json:"description"`
		Amount      Money     `json:"amount"`
		Date        time.Time `json:"date"`
		BudgetID    int64     `json:"budgetId"`
	}
)

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidBudget  = errors.New("invalid budget id")
	ErrIDMismatch     = errors.New("path id does not match body id")
	ErrInvalidPayload = errors.New("invalid payload")

	ErrEmptyName          = errors.New("name is required")
	ErrNameTooLong        = errors.New("name exceeds 200 characters")
	ErrEmptyDescription   = errors.New("description is required")
	ErrDescriptionTooLong = errors.New("description exceeds 500 characters")
	ErrAmountOutOfRange   = errors.New("amount out of range")
)

var validationErrors = []error{
	ErrInvalidPayload,
	ErrEmptyName,
	ErrNameTooLong,
	ErrEmptyDescription,
	ErrDescriptionTooLong,
	ErrAmountOutOfRange,
}

// IsValidation reports whether err is caused by a rejected field value.
func IsValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return ErrEmptyName
	}
	if utf8.RuneCountInString(b.Name) > MaxBudgetNameLength {
		return ErrNameTooLong
	}
	return b.Limit.Validate()
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.Description) == "" {
		return ErrEmptyDescription
	}
	if utf8.RuneCountInString(e.Description) > MaxExpenseDescriptionLength {
		return ErrDescriptionTooLong
	}
	return e.Amount.Validate()
}

// WithDefaults fills the fields the store assigns when the client leaves them empty.
func (e Expense) WithDefaults(now time.Time) Expense {
	if e.Date.IsZero() {
		e.Date = now.UTC()
	}
	return e
}

// expenseDateLayouts are tried in order; values without a zone are UTC.
var expenseDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// UnmarshalJSON accepts RFC 3339 dates as well as zone-less date-times and
// plain dates such as "2024-03-01". A missing or null date stays zero.
func (e *Expense) UnmarshalJSON(data []byte) error {
	type plain Expense
	aux := struct {
		*plain
		Date json.RawMessage `json:"date"`
	}{plain: (*plain)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	e.Date = time.Time{}
	if len(aux.Date) == 0 || string(aux.Date) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(aux.Date, &s); err != nil {
		return fmt.Errorf("%w: date must be a string", ErrInvalidPayload)
	}
	if strings.TrimSpace(s) == "" {
		return nil
	}
	for _, layout := range expenseDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			e.Date = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("%w: date %q is not a valid date", ErrInvalidPayload, s)
}
