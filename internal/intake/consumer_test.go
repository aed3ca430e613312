package intake

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"go-inventory-ledger/internal/apperror"
	"go-inventory-ledger/internal/model"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeRecorder fails the first failures calls with err. Zero or less
// fails every call.
type fakeRecorder struct {
	mu       sync.Mutex
	inputs   []model.TransactionInput
	err      error
	failures int
}

func (f *fakeRecorder) RecordTransaction(_ context.Context, input *model.TransactionInput, _ model.Actor) (*model.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, *input)
	if f.err != nil && (f.failures <= 0 || len(f.inputs) <= f.failures) {
		return nil, f.err
	}
	return &model.Transaction{ID: uint64(len(f.inputs)), ProductID: input.ProductID}, nil
}

type fakeReader struct {
	msgs      []kafka.Message
	committed []int64
	cancel    context.CancelFunc
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.msgs) == 0 {
		r.cancel()
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	msg := r.msgs[0]
	r.msgs = r.msgs[1:]
	return msg, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func message(t *testing.T, offset int64, req MovementRequest) kafka.Message {
	t.Helper()
	value, err := json.Marshal(req)
	require.NoError(t, err)
	return kafka.Message{Offset: offset, Value: value}
}

func TestProcessMessageRecordsMovement(t *testing.T) {
	recorder := &fakeRecorder{}
	c := newConsumer(nil, recorder, zap.NewNop())
	productID := uuid.New()

	err := c.processMessage(context.Background(), message(t, 1, MovementRequest{
		RequestID:   "r-1",
		ProductID:   productID,
		Type:        model.TxOut,
		Quantity:    3,
		RequestedBy: "order-service",
	}))
	require.NoError(t, err)

	require.Len(t, recorder.inputs, 1)
	assert.Equal(t, productID, recorder.inputs[0].ProductID)
	assert.Equal(t, model.TxOut, recorder.inputs[0].Type)
	assert.EqualValues(t, 3, recorder.inputs[0].Quantity)
	assert.Equal(t, "order-service", recorder.inputs[0].CreatedBy)
}

func TestProcessMessageDropsMalformedAndInvalid(t *testing.T) {
	recorder := &fakeRecorder{err: apperror.Validation("quantity", "must be greater than 0")}
	c := newConsumer(nil, recorder, zap.NewNop())

	assert.NoError(t, c.processMessage(context.Background(), kafka.Message{Value: []byte("{not json")}))
	assert.NoError(t, c.processMessage(context.Background(), message(t, 2, MovementRequest{ProductID: uuid.New(), Type: model.TxIn})))
	assert.Len(t, recorder.inputs, 1)
}

func TestProcessMessageSurfacesStoreFailures(t *testing.T) {
	recorder := &fakeRecorder{err: apperror.Unavailable("append transaction", errors.New("connection refused"))}
	c := newConsumer(nil, recorder, zap.NewNop())

	err := c.processMessage(context.Background(), message(t, 3, MovementRequest{ProductID: uuid.New(), Type: model.TxIn, Quantity: 1}))
	assert.True(t, apperror.IsKind(err, apperror.KindUnavailable))
}

func TestRunRetriesStoreFailuresInPlace(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	recorder := &fakeRecorder{err: apperror.Unavailable("append transaction", errors.New("down")), failures: 2}
	reader := &fakeReader{cancel: cancel}
	reader.msgs = []kafka.Message{
		{Offset: 10, Value: []byte("garbage")},
		message(t, 11, MovementRequest{ProductID: uuid.New(), Type: model.TxIn, Quantity: 1}),
	}

	c := newConsumer(reader, recorder, zap.NewNop())
	c.retryDelay = time.Millisecond
	c.Run(ctx)

	assert.Equal(t, []int64{10, 11}, reader.committed)
	assert.Len(t, recorder.inputs, 3)
}

func TestRunStopsRetryingOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	recorder := &fakeRecorder{err: apperror.Unavailable("append transaction", errors.New("down")), failures: -1}
	reader := &fakeReader{cancel: cancel}
	reader.msgs = []kafka.Message{message(t, 7, MovementRequest{ProductID: uuid.New(), Type: model.TxIn, Quantity: 1})}

	c := newConsumer(reader, recorder, zap.NewNop())
	c.retryDelay = time.Millisecond
	time.AfterFunc(20*time.Millisecond, cancel)
	c.Run(ctx)

	assert.Empty(t, reader.committed)
}
