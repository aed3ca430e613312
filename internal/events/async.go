package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	ErrQueueFull = errors.New("event queue full")
	ErrClosed    = errors.New("event publisher closed")
)

// Async decouples callers from slow sinks. One worker delivers events in
// the order they were queued.
type Async struct {
	next    Publisher
	queue   chan Event
	timeout time.Duration
	logger  *zap.Logger

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewAsync(next Publisher, size int, timeout time.Duration, logger *zap.Logger) *Async {
	a := &Async{
		next:    next,
		queue:   make(chan Event, size),
		timeout: timeout,
		logger:  logger,
		done:    make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *Async) run() {
	defer close(a.done)
	for event := range a.queue {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		if err := a.next.Publish(ctx, event); err != nil {
			a.logger.Warn("Event delivery failed",
				zap.String("event_id", event.EventID),
				zap.Error(err))
		}
		cancel()
	}
}

// Publish never blocks: when the queue is full the event is dropped and
// ErrQueueFull returned, so a stuck sink cannot hold a committed write.
func (a *Async) Publish(ctx context.Context, event Event) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case a.queue <- event:
		return nil
	default:
		a.logger.Warn("Event queue full, dropping event",
			zap.String("event_id", event.EventID),
			zap.String("type", string(event.Type)))
		return ErrQueueFull
	}
}

// Close stops accepting events and waits for the queue to drain.
func (a *Async) Close() {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()
	<-a.done
}
