// Package core provides the domain types shared by storage, services and
// the HTTP layer.
//
// This file contains Money, a fixed-point currency amount with two decimal
// places, and the conversions it needs for JSON and SQL.
package core

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// moneyLimit mirrors a decimal(18,2) column: at most 16 integer digits.
var moneyLimit = decimal.New(1, 16)

// Money is a currency amount rounded half-up to cents.
type Money struct {
	decimal.Decimal
}

// NewMoney rounds d to two decimal places.
func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d.Round(2)}
}

// ParseMoney parses a decimal string. Both "12.34" and "12,34" are accepted.
//
// Examples:
//
//	ParseMoney("500")    -> 500.00
//	ParseMoney("12,345") -> 12.35
func ParseMoney(s string) (Money, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return Money{}, ErrAmountOutOfRange
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("parse amount %q: %w", s, err)
	}
	m := NewMoney(d)
	if err := m.Validate(); err != nil {
		return Money{}, err
	}
	return m, nil
}

// MustParseMoney is ParseMoney for constants and tests.
func MustParseMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Validate() error {
	if m.Abs().GreaterThanOrEqual(moneyLimit) {
		return ErrAmountOutOfRange
	}
	return nil
}

func (m Money) String() string {
	return m.StringFixed(2)
}

// MarshalJSON encodes the amount as a bare JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.StringFixed(2)), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string, with the same
// decimal comma handling as ParseMoney.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		*m = Money{}
		return nil
	}
	s = strings.ReplaceAll(strings.TrimSpace(strings.Trim(s, `"`)), ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("%w: amount %q is not a number", ErrInvalidPayload, s)
	}
	*m = NewMoney(d)
	return nil
}

// Value stores the amount as fixed two-decimal text, which both SQLite TEXT
// and Postgres NUMERIC columns accept.
func (m Money) Value() (driver.Value, error) {
	return m.StringFixed(2), nil
}

func (m *Money) Scan(src any) error {
	var d decimal.Decimal
	if err := d.Scan(src); err != nil {
		return fmt.Errorf("scan money: %w", err)
	}
	*m = NewMoney(d)
	return nil
}
