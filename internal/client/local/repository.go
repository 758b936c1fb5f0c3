package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"sync"
	"time"

	"budgetbook/internal/client"
)

const (
	BudgetsSlot  = "budgets_v1"
	ExpensesSlot = "expenses_v1"
)

var ErrNotFound = errors.New("not found")

// NotFoundError is returned by Update for an id the slot does not hold.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string { return e.Entity + " not found" }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// Repository stores a whole collection in one slot. Every call reads the
// full array and every mutation writes it back.
type Repository[T client.Entity[T]] struct {
	mu     sync.Mutex
	store  SlotStore
	slot   string
	entity string
	newID  func() client.ID
}

func newRepository[T client.Entity[T]](store SlotStore, slot, entity string) *Repository[T] {
	return &Repository[T]{store: store, slot: slot, entity: entity, newID: GenerateID}
}

func NewBudgets(store SlotStore) *Repository[client.Budget] {
	return newRepository[client.Budget](store, BudgetsSlot, "Budget")
}

func NewExpenses(store SlotStore) *Repository[client.Expense] {
	return newRepository[client.Expense](store, ExpensesSlot, "Expense")
}

// GenerateID returns a random base-36 token followed by the base-36
// millisecond timestamp. Collisions are unlikely but possible.
func GenerateID() client.ID {
	token := strconv.FormatUint(rand.Uint64(), 36)
	return client.ID(token + strconv.FormatInt(time.Now().UnixMilli(), 36))
}

// read returns the stored items. A missing or unreadable slot reads as empty.
func (r *Repository[T]) read(ctx context.Context) []T {
	raw, err := r.store.Get(r.slot)
	if err != nil {
		slog.DebugContext(ctx, "Local slot unreadable, treating as empty", "slot", r.slot, "error", err)
		return []T{}
	}
	if len(raw) == 0 {
		return []T{}
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		slog.DebugContext(ctx, "Local slot corrupt, treating as empty", "slot", r.slot, "error", err)
		return []T{}
	}
	if items == nil {
		items = []T{}
	}
	return items
}

func (r *Repository[T]) write(items []T) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", r.slot, err)
	}
	return r.store.Set(r.slot, data)
}

func (r *Repository[T]) List(ctx context.Context) ([]T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.read(ctx), nil
}

// Create appends item under a freshly generated id.
func (r *Repository[T]) Create(ctx context.Context, item T) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item = item.WithID(r.newID())
	items := append(r.read(ctx), item)
	if err := r.write(items); err != nil {
		return *new(T), err
	}
	return item, nil
}

// Update replaces the item stored under id, or fails with ErrNotFound.
func (r *Repository[T]) Update(ctx context.Context, id client.ID, item T) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := r.read(ctx)
	for i := range items {
		if items[i].Identity() == id {
			items[i] = item.WithID(id)
			if err := r.write(items); err != nil {
				return *new(T), err
			}
			return items[i], nil
		}
	}
	return *new(T), &NotFoundError{Entity: r.entity}
}

// Delete removes the item stored under id. A missing id is not an error.
func (r *Repository[T]) Delete(ctx context.Context, id client.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := r.read(ctx)
	kept := items[:0]
	for _, it := range items {
		if it.Identity() != id {
			kept = append(kept, it)
		}
	}
	return r.write(kept)
}
