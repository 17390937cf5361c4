package watch

import (
	"sync"
	"testing"
	"time"
)

func TestBatchEmitterGroupsWithinWindow(t *testing.T) {
	var mu sync.Mutex
	var batches [][]Event

	be := NewBatchEmitter(20*time.Millisecond, func(b []Event) {
		mu.Lock()
		batches = append(batches, b)
		mu.Unlock()
	})

	be.Offer(Event{Type: EventCreate, Path: "/a"})
	be.Offer(Event{Type: EventModify, Path: "/a"})
	be.Offer(Event{Type: EventModify, Path: "/b"})

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(batches) == 1
	})

	mu.Lock()
	defer mu.Unlock()
	if len(batches[0]) != 3 {
		t.Errorf("batch size = %d, want 3", len(batches[0]))
	}
}

func TestBatchEmitterStartsNewBatchAfterFlush(t *testing.T) {
	var mu sync.Mutex
	var batches [][]Event

	be := NewBatchEmitter(10*time.Millisecond, func(b []Event) {
		mu.Lock()
		batches = append(batches, b)
		mu.Unlock()
	})

	be.Offer(Event{Type: EventCreate, Path: "/a"})
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(batches) == 1
	})

	be.Offer(Event{Type: EventModify, Path: "/a"})
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(batches) == 2
	})
}

func TestBatchEmitterCloseFlushesBuffered(t *testing.T) {
	var mu sync.Mutex
	var batches [][]Event

	be := NewBatchEmitter(time.Hour, func(b []Event) {
		mu.Lock()
		batches = append(batches, b)
		mu.Unlock()
	})
	be.Offer(Event{Type: EventCreate, Path: "/a"})
	be.Close()

	mu.Lock()
	defer mu.Unlock()
	if len(batches) != 1 || len(batches[0]) != 1 {
		t.Errorf("expected buffered event flushed on close, got %v", batches)
	}
}

func TestBatchEmitterIgnoresOffersAfterClose(t *testing.T) {
	var mu sync.Mutex
	var batches [][]Event

	be := NewBatchEmitter(5*time.Millisecond, func(b []Event) {
		mu.Lock()
		batches = append(batches, b)
		mu.Unlock()
	})
	be.Close()
	be.Offer(Event{Type: EventCreate, Path: "/a"})

	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if len(batches) != 0 {
		t.Errorf("expected no batches after close, got %v", batches)
	}
}
