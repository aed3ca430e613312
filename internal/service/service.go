package service

import (
	"context"

	"go-inventory-ledger/internal/apperror"
	"go-inventory-ledger/internal/events"
	"go-inventory-ledger/pkg/validator"

	"go.uber.org/zap"
)

// ErrInsufficientStock is returned when the negative-stock guard is on and
// an OUT would take stock below zero.
var ErrInsufficientStock = apperror.Conflict("quantity", "insufficient stock remaining")

func validate(data interface{}) error {
	if errs := validator.ValidateStruct(data); len(errs) > 0 {
		firstErr := errs[0]
		return apperror.Validation(firstErr.FailedField, firstErr.Message())
	}
	return nil
}

// publish runs after commit; a failed delivery never undoes the change.
func publish(ctx context.Context, publisher events.Publisher, logger *zap.Logger, event events.Event) {
	if err := publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		logger.Warn("Failed to publish event",
			zap.String("type", string(event.Type)),
			zap.String("event_id", event.EventID),
			zap.Error(err))
	}
}
