package remote

import (
	"strings"
	"time"

	"budgetbook/internal/client"
	"budgetbook/internal/core"
)

type budgetWire struct {
	ID    int64      `json:"id,omitempty"`
	Name  string     `json:"name"`
	Limit core.Money `json:"limit"`
}

type expenseWire struct {
	ID          int64      `json:"id,omitempty"`
	Description string     `json:"description"`
	Amount      core.Money `json:"amount"`
	Date        *time.Time `json:"date,omitempty"`
	BudgetID    int64      `json:"budgetId"`
}

// dateLayouts are the accepted forms of Expense.Date, most specific first.
var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04", "2006-01-02"}

// NewBudgets returns the remote budgets repository. Only name and total
// reach the server; display fields come back zero.
func NewBudgets(c *Client) client.Repository[client.Budget] {
	return &repository[client.Budget, budgetWire]{
		client: c,
		path:   "/api/budgets",
		toWire: func(id client.ID, b client.Budget) budgetWire {
			n, _ := id.Int64()
			return budgetWire{ID: n, Name: b.Name, Limit: b.Total}
		},
		fromWire: func(w budgetWire) client.Budget {
			return client.Budget{ID: client.IDFromInt(w.ID), Name: w.Name, Total: w.Limit}
		},
	}
}

// NewExpenses returns the remote expenses repository. A date that does not
// parse is omitted so the server applies its default.
func NewExpenses(c *Client) client.Repository[client.Expense] {
	return &repository[client.Expense, expenseWire]{
		client: c,
		path:   "/api/expenses",
		toWire: func(id client.ID, e client.Expense) expenseWire {
			n, _ := id.Int64()
			budgetID, _ := e.BudgetID.Int64()
			return expenseWire{
				ID:          n,
				Description: e.Name,
				Amount:      e.Amount,
				Date:        parseDate(e.Date),
				BudgetID:    budgetID,
			}
		},
		fromWire: func(w expenseWire) client.Expense {
			e := client.Expense{
				ID:       client.IDFromInt(w.ID),
				Name:     w.Description,
				Amount:   w.Amount,
				BudgetID: client.IDFromInt(w.BudgetID),
			}
			if w.Date != nil {
				e.Date = w.Date.UTC().Format(time.RFC3339)
			}
			return e
		},
	}
}

func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
