package services

import (
	"context"
	"fmt"

	"budgetbook/internal/amqp"
	"budgetbook/internal/core"
)

const EntityBudget = "budget"

// BudgetStore is the persistence surface BudgetService needs.
type BudgetStore interface {
	ListBudgets(ctx context.Context) ([]core.Budget, error)
	GetBudget(ctx context.Context, id int64) (core.Budget, error)
	CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
	UpdateBudget(ctx context.Context, b core.Budget) error
	DeleteBudget(ctx context.Context, id int64) error
}

// BudgetService implements CRUD over budgets.
type BudgetService struct {
	store     BudgetStore
	publisher Publisher
}

// NewBudgetService creates the service. publisher may be nil.
func NewBudgetService(store BudgetStore, publisher Publisher) *BudgetService {
	return &BudgetService{store: store, publisher: publisher}
}

func (s *BudgetService) List(ctx context.Context) ([]core.Budget, error) {
	items, err := s.store.ListBudgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	if items == nil {
		items = []core.Budget{}
	}
	return items, nil
}

func (s *BudgetService) Get(ctx context.Context, id int64) (core.Budget, error) {
	return s.store.GetBudget(ctx, id)
}

func (s *BudgetService) Create(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	b.ID = 0
	created, err := s.store.CreateBudget(ctx, b)
	if err != nil {
		return core.Budget{}, err
	}
	publish(ctx, s.publisher, EntityBudget, amqp.ActionCreated, created.ID)
	return created, nil
}

// Update replaces the budget identified by id. The body must carry the same id.
func (s *BudgetService) Update(ctx context.Context, id int64, b core.Budget) error {
	if b.ID != id {
		return core.ErrIDMismatch
	}
	if err := b.Validate(); err != nil {
		return err
	}
	if err := s.store.UpdateBudget(ctx, b); err != nil {
		return err
	}
	publish(ctx, s.publisher, EntityBudget, amqp.ActionUpdated, id)
	return nil
}

// Delete removes the budget together with its expenses.
func (s *BudgetService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteBudget(ctx, id); err != nil {
		return err
	}
	publish(ctx, s.publisher, EntityBudget, amqp.ActionDeleted, id)
	return nil
}
