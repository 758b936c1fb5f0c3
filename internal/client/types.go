// Package client holds the front-end data shapes and the repository
// contract shared by the remote and local persistence variants.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"budgetbook/internal/core"
)

// ID identifies an item on the client side. Server ids are carried as their
// decimal text; local ids are generated tokens.
type ID string

// IDFromInt formats a server-assigned id.
func IDFromInt(id int64) ID {
	return ID(strconv.FormatInt(id, 10))
}

// Int64 returns the numeric form of a server-assigned id.
func (id ID) Int64() (int64, bool) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (id ID) String() string { return string(id) }

// MarshalJSON always encodes the id as a string.
func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(id))
}

// UnmarshalJSON accepts a JSON string or number.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Budget is the front-end budget. Icon, Spent and Items are display
// fields the server does not store.
type Budget struct {
	ID    ID         `json:"id"`
	Name  string     `json:"name"`
	Icon  string     `json:"icon"`
	Total core.Money `json:"total"`
	Spent core.Money `json:"spent"`
	Items int        `json:"items"`
}

func (b Budget) Identity() ID { return b.ID }

func (b Budget) WithID(id ID) Budget {
	b.ID = id
	return b
}

// Expense is the front-end expense. Date is free text; BudgetID is only
// needed when talking to the server.
type Expense struct {
	ID       ID         `json:"id"`
	Name     string     `json:"name"`
	Amount   core.Money `json:"amount"`
	Date     string     `json:"date"`
	BudgetID ID         `json:"budgetId,omitempty"`
}

func (e Expense) Identity() ID { return e.ID }

func (e Expense) WithID(id ID) Expense {
	e.ID = id
	return e
}

// Entity is implemented by the front-end shapes.
type Entity[T any] interface {
	Identity() ID
	WithID(id ID) T
}

// Repository is the persistence contract the view-state talks to.
// Create ignores the item's id; Update replaces the item stored under id.
type Repository[T any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, item T) (T, error)
	Update(ctx context.Context, id ID, item T) (T, error)
	Delete(ctx context.Context, id ID) error
}
