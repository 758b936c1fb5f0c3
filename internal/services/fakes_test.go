package services

import (
	"context"
	"errors"
	"sort"
	"sync"

	"budgetbook/internal/amqp"
	"budgetbook/internal/core"
)

// memStore is an in-memory BudgetStore and ExpenseStore.
type memStore struct {
	mu       sync.Mutex
	nextID   int64
	budgets  map[int64]core.Budget
	expenses map[int64]core.Expense
	calls    int
	failWith error
}

func newMemStore() *memStore {
	return &memStore{budgets: map[int64]core.Budget{}, expenses: map[int64]core.Expense{}}
}

func (m *memStore) touch() error {
	m.calls++
	return m.failWith
}

func (m *memStore) ListBudgets(context.Context) ([]core.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.touch(); err != nil {
		return nil, err
	}
	var out []core.Budget
	for _, b := range m.budgets {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) GetBudget(_ context.Context, id int64) (core.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.touch(); err != nil {
		return core.Budget{}, err
	}
	b, ok := m.budgets[id]
	if !ok {
		return core.Budget{}, core.ErrNotFound
	}
	return b, nil
}

func (m *memStore) BudgetExists(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.touch(); err != nil {
		return false, err
	}
	_, ok := m.budgets[id]
	return ok, nil
}

func (m *memStore) CreateBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.touch(); err != nil {
		return core.Budget{}, err
	}
	m.nextID++
	b.ID = m.nextID
	m.budgets[b.ID] = b
	return b, nil
}

func (m *memStore) UpdateBudget(_ context.Context, b core.Budget) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.touch(); err != nil {
		return err
	}
	if _, ok := m.budgets[b.ID]; !ok {
		return core.ErrNotFound
	}
	m.budgets[b.ID] = b
	return nil
}

func (m *memStore) DeleteBudget(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.touch(); err != nil {
		return err
	}
	if _, ok := m.budgets[id]; !ok {
		return core.ErrNotFound
	}
	delete(m.budgets, id)
	for eid, e := range m.expenses {
		if e.BudgetID == id {
			delete(m.expenses, eid)
		}
	}
	return nil
}

func (m *memStore) ListExpenses(context.Context) ([]core.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.touch(); err != nil {
		return nil, err
	}
	var out []core.Expense
	for _, e := range m.expenses {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) GetExpense(_ context.Context, id int64) (core.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.touch(); err != nil {
		return core.Expense{}, err
	}
	e, ok := m.expenses[id]
	if !ok {
		return core.Expense{}, core.ErrNotFound
	}
	return e, nil
}

func (m *memStore) CreateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.touch(); err != nil {
		return core.Expense{}, err
	}
	m.nextID++
	e.ID = m.nextID
	m.expenses[e.ID] = e
	return e, nil
}

func (m *memStore) UpdateExpense(_ context.Context, e core.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.touch(); err != nil {
		return err
	}
	if _, ok := m.expenses[e.ID]; !ok {
		return core.ErrNotFound
	}
	m.expenses[e.ID] = e
	return nil
}

func (m *memStore) DeleteExpense(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.touch(); err != nil {
		return err
	}
	if _, ok := m.expenses[id]; !ok {
		return core.ErrNotFound
	}
	delete(m.expenses, id)
	return nil
}

type recordingPublisher struct {
	events []amqp.ChangeEvent
	err    error
}

func (p *recordingPublisher) PublishChange(_ context.Context, ev amqp.ChangeEvent) error {
	p.events = append(p.events, ev)
	return p.err
}

var errStoreDown = errors.New("store down")
