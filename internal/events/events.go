package events

import (
	"context"
	"time"

	"go-inventory-ledger/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type EventType string

const (
	ProductCreated      EventType = "product_created"
	ProductUpdated      EventType = "product_updated"
	ProductDeleted      EventType = "product_deleted"
	TransactionRecorded EventType = "transaction_recorded"
)

// Event is published after a catalog or ledger change has committed.
type Event struct {
	EventID     string             `json:"event_id"`
	Type        EventType          `json:"type"`
	Product     *model.Product     `json:"product,omitempty"`
	Transaction *model.Transaction `json:"transaction,omitempty"`
	Stock       *int64             `json:"stock,omitempty"`
	LowStock    *bool              `json:"low_stock,omitempty"`
	Actor       model.Actor        `json:"actor"`
	Message     string             `json:"message"`
	Timestamp   time.Time          `json:"timestamp"`
}

func NewEvent(typ EventType, actor model.Actor, message string) Event {
	return Event{
		EventID:   uuid.NewString(),
		Type:      typ,
		Actor:     actor,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

// Key partitions events by product so a consumer sees one product in order.
func (e Event) Key() string {
	switch {
	case e.Transaction != nil:
		return e.Transaction.ProductID.String()
	case e.Product != nil:
		return e.Product.ID.String()
	}
	return e.EventID
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// MultiPublisher hands each event to every sink. A failing sink is logged
// and does not stop the others.
type MultiPublisher struct {
	sinks  []Publisher
	logger *zap.Logger
}

func NewMultiPublisher(logger *zap.Logger, sinks ...Publisher) *MultiPublisher {
	return &MultiPublisher{sinks: sinks, logger: logger}
}

func (m *MultiPublisher) Add(sink Publisher) {
	m.sinks = append(m.sinks, sink)
}

func (m *MultiPublisher) Publish(ctx context.Context, event Event) error {
	var firstErr error
	for _, sink := range m.sinks {
		if err := sink.Publish(ctx, event); err != nil {
			m.logger.Warn("Failed to publish event",
				zap.String("event_id", event.EventID),
				zap.String("type", string(event.Type)),
				zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
