// Package view holds the per-entity state a front end renders: the active
// data source, the current items, a loading flag and the last error.
package view

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"budgetbook/internal/client"
)

// Source selects which repository a Collection talks to.
type Source string

const (
	SourceLocal Source = "local"
	SourceAPI   Source = "api"
)

// ParseSource maps "local" and "api" to a Source.
func ParseSource(s string) (Source, bool) {
	switch Source(s) {
	case SourceLocal, SourceAPI:
		return Source(s), true
	}
	return "", false
}

// State is a point-in-time copy of a Collection's fields.
type State[T any] struct {
	Source  Source
	Items   []T
	Loading bool
	Err     string
}

// Collection is the view-state for one entity. Concurrent Refresh calls
// share one seeding attempt; the last finished Refresh wins the fields.
type Collection[T any] struct {
	local  client.Repository[T]
	remote client.Repository[T]

	// seedCopy turns a remote item into the value created locally.
	seedCopy        func(T) T
	fallbackMessage string
	logger          *slog.Logger
	seeding         singleflight.Group

	mu      sync.Mutex
	source  Source
	items   []T
	loading bool
	errMsg  string
}

// Option configures a Collection.
type Option[T any] func(*Collection[T])

// WithLogger sets the logger for seeding diagnostics.
func WithLogger[T any](logger *slog.Logger) Option[T] {
	return func(c *Collection[T]) { c.logger = logger }
}

func WithSeedCopy[T any](fn func(T) T) Option[T] {
	return func(c *Collection[T]) { c.seedCopy = fn }
}

// WithFallbackMessage sets the error text used when a refresh fails with
// an error that has none.
func WithFallbackMessage[T any](msg string) Option[T] {
	return func(c *Collection[T]) { c.fallbackMessage = msg }
}

func New[T any](local, remote client.Repository[T], opts ...Option[T]) *Collection[T] {
	c := &Collection[T]{
		local:           local,
		remote:          remote,
		seedCopy:        func(v T) T { return v },
		fallbackMessage: "Failed to load items",
		logger:          slog.Default(),
		source:          SourceLocal,
		items:           []T{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewBudgets builds the budgets view-state.
func NewBudgets(local, remote client.Repository[client.Budget], opts ...Option[client.Budget]) *Collection[client.Budget] {
	base := []Option[client.Budget]{
		WithFallbackMessage[client.Budget]("Failed to load budgets"),
		WithSeedCopy(func(b client.Budget) client.Budget { return b.WithID("") }),
	}
	return New(local, remote, append(base, opts...)...)
}

// NewExpenses builds the expenses view-state. Seeded expenses drop their
// budget link because remote budget ids mean nothing locally.
func NewExpenses(local, remote client.Repository[client.Expense], opts ...Option[client.Expense]) *Collection[client.Expense] {
	base := []Option[client.Expense]{
		WithFallbackMessage[client.Expense]("Failed to load expenses"),
		WithSeedCopy(func(e client.Expense) client.Expense {
			e.BudgetID = ""
			return e.WithID("")
		}),
	}
	return New(local, remote, append(base, opts...)...)
}

// SetSource switches the data source. It does not refresh.
func (c *Collection[T]) SetSource(s Source) {
	c.mu.Lock()
	c.source = s
	c.mu.Unlock()
}

// Snapshot returns a copy of the current state.
func (c *Collection[T]) Snapshot() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := make([]T, len(c.items))
	copy(items, c.items)
	return State[T]{
		Source:  c.source,
		Items:   items,
		Loading: c.loading,
		Err:     c.errMsg,
	}
}

func (c *Collection[T]) active() (Source, client.Repository[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.source == SourceAPI {
		return c.source, c.remote
	}
	return c.source, c.local
}

// Refresh reloads the items from the active repository. In local mode it
// first seeds an empty local store from the remote one. A failure keeps the
// previous items and is recorded in the state, never returned.
func (c *Collection[T]) Refresh(ctx context.Context) {
	c.mu.Lock()
	c.loading = true
	c.errMsg = ""
	c.mu.Unlock()

	source, repo := c.active()
	if source == SourceLocal {
		c.seedLocal(ctx)
	}

	items, err := repo.List(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.errMsg = err.Error()
		if c.errMsg == "" {
			c.errMsg = c.fallbackMessage
		}
	} else {
		if items == nil {
			items = []T{}
		}
		c.items = items
	}
	c.loading = false
}

// seedLocal copies remote items into an empty local store. It is
// best-effort: every failure is logged at debug and dropped.
func (c *Collection[T]) seedLocal(ctx context.Context) {
	c.seeding.Do("seed", func() (any, error) {
		current, err := c.local.List(ctx)
		if err != nil || len(current) > 0 {
			return nil, nil
		}

		remoteItems, err := c.remote.List(ctx)
		if err != nil {
			c.logger.DebugContext(ctx, "Seeding skipped, remote unavailable", "error", err)
			return nil, nil
		}
		for _, it := range remoteItems {
			if _, err := c.local.Create(ctx, c.seedCopy(it)); err != nil {
				c.logger.DebugContext(ctx, "Seeding stopped", "error", err)
				return nil, nil
			}
		}
		c.logger.DebugContext(ctx, "Seeded local store", "count", len(remoteItems))
		return nil, nil
	})
}

// Create adds item through the active repository and refreshes on success.
func (c *Collection[T]) Create(ctx context.Context, item T) error {
	_, repo := c.active()
	if _, err := repo.Create(ctx, item); err != nil {
		return err
	}
	c.Refresh(ctx)
	return nil
}

// Update replaces the item stored under id and refreshes on success.
func (c *Collection[T]) Update(ctx context.Context, id client.ID, item T) error {
	_, repo := c.active()
	if _, err := repo.Update(ctx, id, item); err != nil {
		return err
	}
	c.Refresh(ctx)
	return nil
}

// Remove deletes the item stored under id and refreshes on success.
func (c *Collection[T]) Remove(ctx context.Context, id client.ID) error {
	_, repo := c.active()
	if err := repo.Delete(ctx, id); err != nil {
		return err
	}
	c.Refresh(ctx)
	return nil
}
