package watch

import (
	"sync"
	"time"
)

// DefaultBatchWindow is the interval BatchEmitter groups events over when a
// caller doesn't override it.
const DefaultBatchWindow = 10 * time.Millisecond

// BatchEmitter groups events arriving within a time window and delivers
// them to a callback as a single batch, preserving arrival order.
type BatchEmitter struct {
	mu     sync.Mutex
	window time.Duration
	emit   func([]Event)
	buf    []Event
	timer  *time.Timer
	closed bool
}

// NewBatchEmitter constructs a BatchEmitter that calls emit with every batch.
// window <= 0 selects DefaultBatchWindow.
func NewBatchEmitter(window time.Duration, emit func([]Event)) *BatchEmitter {
	if window <= 0 {
		window = DefaultBatchWindow
	}
	return &BatchEmitter{window: window, emit: emit}
}

// Offer appends ev to the current batch, starting the flush timer if this
// is the first event since the last flush.
func (b *BatchEmitter) Offer(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.buf = append(b.buf, ev)
	if b.timer == nil {
		b.timer = time.AfterFunc(b.window, b.flush)
	}
}

func (b *BatchEmitter) flush() {
	b.mu.Lock()
	if len(b.buf) == 0 {
		b.timer = nil
		b.mu.Unlock()
		return
	}
	batch := b.buf
	b.buf = nil
	b.timer = nil
	emit := b.emit
	b.mu.Unlock()

	emit(batch)
}

// Close stops pending timers. Any events still buffered are delivered
// immediately so nothing is silently dropped on shutdown.
func (b *BatchEmitter) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	if b.timer != nil {
		b.timer.Stop()
	}
	batch := b.buf
	b.buf = nil
	emit := b.emit
	b.mu.Unlock()

	if len(batch) > 0 {
		emit(batch)
	}
}
