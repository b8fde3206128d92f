package event

import (
	"context"
	"errors"
	"sync"

	"github.com/shandysiswandi/gosales/internal/sales/entity"
)

var ErrBusClosed = errors.New("event bus is closed")

// Bus carries per-job server messages from stream drivers to consumers.
// Publish blocks when the buffer is full, which is the backpressure that
// keeps a slow consumer from being buried.
type Bus struct {
	mu     sync.RWMutex
	closed bool
	msgs   chan entity.Notification
}

// NewBus sizes the message buffer; anything below one message is bumped up.
func NewBus(buffer int) *Bus {
	return &Bus{msgs: make(chan entity.Notification, max(buffer, 1))}
}

// Publish enqueues n, waiting for buffer space until ctx ends. Publishing on
// a closed bus returns ErrBusClosed rather than panicking, so racing stream
// drivers shut down cleanly.
func (b *Bus) Publish(ctx context.Context, n entity.Notification) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrBusClosed
	}

	select {
	case b.msgs <- n:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe exposes the message stream. The channel closes with the bus.
func (b *Bus) Subscribe() <-chan entity.Notification {
	return b.msgs
}

// Close stops the bus. It waits for in-flight Publish calls, then closes the
// subscriber channel; calling it again is a no-op.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.closed = true
	close(b.msgs)
}
