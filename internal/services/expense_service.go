package services

import (
	"context"
	"fmt"
	"time"

	"budgetbook/internal/amqp"
	"budgetbook/internal/core"
)

const EntityExpense = "expense"

// ExpenseStore is the persistence surface ExpenseService needs.
type ExpenseStore interface {
	ListExpenses(ctx context.Context) ([]core.Expense, error)
	GetExpense(ctx context.Context, id int64) (core.Expense, error)
	CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
	UpdateExpense(ctx context.Context, e core.Expense) error
	DeleteExpense(ctx context.Context, id int64) error
	BudgetExists(ctx context.Context, id int64) (bool, error)
}

// ExpenseService implements CRUD over expenses and keeps every expense
// pointing at an existing budget.
type ExpenseService struct {
	store     ExpenseStore
	publisher Publisher
	now       func() time.Time
}

// NewExpenseService creates the service. publisher may be nil.
func NewExpenseService(store ExpenseStore, publisher Publisher) *ExpenseService {
	return &ExpenseService{store: store, publisher: publisher, now: time.Now}
}

func (s *ExpenseService) List(ctx context.Context) ([]core.Expense, error) {
	items, err := s.store.ListExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	if items == nil {
		items = []core.Expense{}
	}
	return items, nil
}

func (s *ExpenseService) Get(ctx context.Context, id int64) (core.Expense, error) {
	return s.store.GetExpense(ctx, id)
}

func (s *ExpenseService) Create(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	if err := s.checkBudget(ctx, e.BudgetID); err != nil {
		return core.Expense{}, err
	}

	e.ID = 0
	created, err := s.store.CreateExpense(ctx, e.WithDefaults(s.now()))
	if err != nil {
		return core.Expense{}, err
	}
	publish(ctx, s.publisher, EntityExpense, amqp.ActionCreated, created.ID)
	return created, nil
}

// Update replaces the expense identified by id. The referenced budget is
// checked again so an update cannot orphan the row.
func (s *ExpenseService) Update(ctx context.Context, id int64, e core.Expense) error {
	if e.ID != id {
		return core.ErrIDMismatch
	}
	if err := e.Validate(); err != nil {
		return err
	}
	if err := s.checkBudget(ctx, e.BudgetID); err != nil {
		return err
	}
	if err := s.store.UpdateExpense(ctx, e.WithDefaults(s.now())); err != nil {
		return err
	}
	publish(ctx, s.publisher, EntityExpense, amqp.ActionUpdated, id)
	return nil
}

func (s *ExpenseService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return err
	}
	publish(ctx, s.publisher, EntityExpense, amqp.ActionDeleted, id)
	return nil
}

func (s *ExpenseService) checkBudget(ctx context.Context, budgetID int64) error {
	if budgetID <= 0 {
		return core.ErrInvalidBudget
	}
	ok, err := s.store.BudgetExists(ctx, budgetID)
	if err != nil {
		return fmt.Errorf("check budget: %w", err)
	}
	if !ok {
		return core.ErrInvalidBudget
	}
	return nil
}
