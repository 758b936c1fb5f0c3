package services

import (
	"context"
	"log/slog"

	"budgetbook/internal/amqp"
	"budgetbook/internal/log"
)

// Publisher receives change events after successful mutations.
// *amqp.Client satisfies it.
type Publisher interface {
	PublishChange(ctx context.Context, ev amqp.ChangeEvent) error
}

// publish is best-effort: the mutation already committed, so a failure is
// only logged.
func publish(ctx context.Context, p Publisher, entity string, action amqp.Action, id int64) {
	if p == nil {
		return
	}
	if err := p.PublishChange(ctx, amqp.NewChangeEvent(entity, action, id)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish change event",
			log.FieldEntity, entity,
			log.FieldID, id,
			log.FieldOperation, log.OpPublish,
			log.FieldError, err)
	}
}
