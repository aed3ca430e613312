package intake

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go-inventory-ledger/internal/apperror"
	"go-inventory-ledger/internal/model"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MovementRequest asks the ledger to record one stock movement.
type MovementRequest struct {
	RequestID   string                `json:"request_id"`
	ProductID   uuid.UUID             `json:"product_id"`
	Type        model.TransactionType `json:"type"`
	Quantity    int64                 `json:"quantity"`
	Description *string               `json:"description"`
	RequestedBy string                `json:"requested_by"`
}

type Recorder interface {
	RecordTransaction(ctx context.Context, input *model.TransactionInput, actor model.Actor) (*model.Transaction, error)
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer turns movement requests on a Kafka topic into ledger appends.
type Consumer struct {
	reader     messageReader
	recorder   Recorder
	logger     *zap.Logger
	retryDelay time.Duration
}

func NewConsumer(brokers []string, topic, groupID string, recorder Recorder, logger *zap.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  500 * time.Millisecond,
	})
	return newConsumer(reader, recorder, logger)
}

func newConsumer(reader messageReader, recorder Recorder, logger *zap.Logger) *Consumer {
	return &Consumer{reader: reader, recorder: recorder, logger: logger, retryDelay: time.Second}
}

// Run blocks until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) {
	c.logger.Info("Movement intake started")
	defer c.logger.Info("Movement intake stopped")

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("Failed to read kafka message", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		// Retry in place: committing a later offset would skip this one
		for {
			err := c.processMessage(ctx, msg)
			if err == nil {
				break
			}
			c.logger.Error("Failed to process movement request",
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.retryDelay):
			}
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.logger.Error("Failed to commit message", zap.Error(err))
		}
	}
}

// processMessage returns an error only for failures worth redelivering.
// Malformed or invalid requests are logged and dropped.
func (c *Consumer) processMessage(ctx context.Context, msg kafka.Message) error {
	var req MovementRequest
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		c.logger.Warn("Dropping malformed movement request",
			zap.Int64("offset", msg.Offset),
			zap.Error(err))
		return nil
	}

	input := &model.TransactionInput{
		ProductID:   req.ProductID,
		Type:        req.Type,
		Quantity:    req.Quantity,
		Description: req.Description,
		CreatedBy:   req.RequestedBy,
	}
	actor := model.Actor{ID: req.RequestedBy, Name: req.RequestedBy}

	tx, err := c.recorder.RecordTransaction(ctx, input, actor)
	if err != nil {
		switch apperror.KindOf(err) {
		case apperror.KindValidation, apperror.KindConflict, apperror.KindNotFound:
			c.logger.Warn("Rejected movement request",
				zap.String("request_id", req.RequestID),
				zap.String("product_id", req.ProductID.String()),
				zap.Error(err))
			return nil
		}
		return fmt.Errorf("record movement %s: %w", req.RequestID, err)
	}

	c.logger.Info("Movement recorded",
		zap.String("request_id", req.RequestID),
		zap.Uint64("transaction_id", tx.ID),
		zap.String("product_id", tx.ProductID.String()))
	return nil
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
