// Package worker contains the background consumers fed by the change-event
// queue.
package worker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"budgetbook/internal/amqp"
	"budgetbook/internal/cache"
	"budgetbook/internal/core"
	"budgetbook/internal/log"
	"budgetbook/internal/services"
)

// Lookup resolves the current state of a changed entity.
type Lookup interface {
	GetBudget(ctx context.Context, id int64) (core.Budget, error)
	GetExpense(ctx context.Context, id int64) (core.Expense, error)
}

// Stats counts handled events per "entity.action".
type Stats map[string]int

// AuditWorker writes one structured log line per change event. Redelivered
// events are recognised for a while and skipped.
type AuditWorker struct {
	lookup Lookup
	seen   *cache.LRU[time.Time]
	logger *log.Logger

	mu    sync.Mutex
	stats Stats
}

// NewAuditWorker creates a worker. lookup may be nil, in which case events
// are logged without the entity's current name.
func NewAuditWorker(lookup Lookup, seen *cache.LRU[time.Time], logger *log.Logger) *AuditWorker {
	return &AuditWorker{
		lookup: lookup,
		seen:   seen,
		logger: logger.WithComponent(log.ComponentWorker),
		stats:  make(Stats),
	}
}

func eventKey(ev amqp.ChangeEvent) string {
	return ev.Entity + ":" + string(ev.Action) + ":" + strconv.FormatInt(ev.ID, 10) + ":" + ev.Timestamp.Format(time.RFC3339Nano)
}

// HandleChange is an amqp.ConsumeChanges handler. Returning an error
// requeues the event, so only transient lookup failures are returned.
func (w *AuditWorker) HandleChange(ctx context.Context, ev amqp.ChangeEvent) error {
	if !w.seen.Add(eventKey(ev), ev.Timestamp) {
		w.logger.DebugContext(ctx, "Skipping duplicate change event",
			log.FieldEntity, ev.Entity, log.FieldID, ev.ID)
		return nil
	}

	fields := log.NewFields().
		WithEntity(ev.Entity, ev.ID).
		WithOperation(string(ev.Action))
	fields["at"] = ev.Timestamp

	if ev.Action != amqp.ActionDeleted {
		name, err := w.describe(ctx, ev)
		switch {
		case errors.Is(err, core.ErrNotFound):
			fields["current"] = "gone"
		case err != nil:
			// allow the event to be seen again on redelivery
			w.seen.Delete(eventKey(ev))
			return fmt.Errorf("look up %s %d: %w", ev.Entity, ev.ID, err)
		case name != "":
			fields["name"] = name
		}
	}

	w.logger.InfoContext(ctx, "Change recorded", fields.ToSlice()...)

	w.mu.Lock()
	w.stats[ev.Entity+"."+string(ev.Action)]++
	w.mu.Unlock()
	return nil
}

func (w *AuditWorker) describe(ctx context.Context, ev amqp.ChangeEvent) (string, error) {
	if w.lookup == nil {
		return "", nil
	}
	switch ev.Entity {
	case services.EntityBudget:
		b, err := w.lookup.GetBudget(ctx, ev.ID)
		return b.Name, err
	case services.EntityExpense:
		e, err := w.lookup.GetExpense(ctx, ev.ID)
		return e.Description, err
	default:
		return "", nil
	}
}

// Stats returns a copy of the per-event counters.
func (w *AuditWorker) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(Stats, len(w.stats))
	for k, v := range w.stats {
		out[k] = v
	}
	return out
}
