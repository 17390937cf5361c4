package watch

import (
	"fmt"
	"sync"
)

// Transport delivers a batch of events to one subscriber connection. The
// manager neither owns nor dials the transport; it is supplied by the
// caller (e.g. the process bridging vfs.FS to a WebSocket or gRPC stream).
type Transport interface {
	Send(connID string, subID string, events []Event) error
}

// SubscribeRequest mirrors the wire-level subscribe message.
type SubscribeRequest struct {
	ConnID    string
	SubID     string
	Path      string
	Recursive bool
	Filter    func(Event) bool
}

// subscription tracks one active subscribe request's derived state.
type subscription struct {
	connID    string
	subID     string
	watcherID int64
	filter    func(Event) bool
}

// key identifies a subscription uniquely across connections.
type key struct {
	connID string
	subID  string
}

// SubscriptionManager binds watch.Manager watchers to subscribe/unsubscribe
// requests arriving over an externally owned transport, keyed by
// connection id + subscription id, and reaps all subscriptions for a
// connection on disconnect.
type SubscriptionManager struct {
	mu        sync.Mutex
	manager   *Manager
	transport Transport
	limiter   *RateLimiter
	subs      map[key]*subscription
	byConn    map[string]map[key]struct{}
	emitters  map[key]*BatchEmitter
}

// NewSubscriptionManager constructs a SubscriptionManager delivering
// batches over transport, debouncing via manager, and rate-limiting via
// limiter (nil disables rate limiting).
func NewSubscriptionManager(manager *Manager, transport Transport, limiter *RateLimiter) *SubscriptionManager {
	return &SubscriptionManager{
		manager:   manager,
		transport: transport,
		limiter:   limiter,
		subs:      make(map[key]*subscription),
		byConn:    make(map[string]map[key]struct{}),
		emitters:  make(map[key]*BatchEmitter),
	}
}

// Subscribe registers req and returns an error if the same (connID, subID)
// pair is already active.
func (sm *SubscriptionManager) Subscribe(req SubscribeRequest) error {
	k := key{connID: req.ConnID, subID: req.SubID}

	sm.mu.Lock()
	if _, exists := sm.subs[k]; exists {
		sm.mu.Unlock()
		return fmt.Errorf("watch: subscription %s/%s already active", req.ConnID, req.SubID)
	}
	emitter := NewBatchEmitter(0, func(batch []Event) { sm.deliver(k, batch) })
	sm.emitters[k] = emitter
	sm.mu.Unlock()

	watcherID := sm.manager.Watch(req.Path, req.Recursive, 0, func(ev Event) {
		if req.Filter != nil && !req.Filter(ev) {
			return
		}
		if sm.limiter != nil && !sm.limiter.Allow(req.SubID, ev.Type) {
			return
		}
		emitter.Offer(ev)
	})

	sub := &subscription{connID: req.ConnID, subID: req.SubID, watcherID: watcherID, filter: req.Filter}

	sm.mu.Lock()
	sm.subs[k] = sub
	if sm.byConn[req.ConnID] == nil {
		sm.byConn[req.ConnID] = make(map[key]struct{})
	}
	sm.byConn[req.ConnID][k] = struct{}{}
	sm.mu.Unlock()

	return nil
}

// Unsubscribe releases one subscription.
func (sm *SubscriptionManager) Unsubscribe(connID, subID string) {
	k := key{connID: connID, subID: subID}
	sm.release(k)
}

// Disconnect releases every subscription owned by connID.
func (sm *SubscriptionManager) Disconnect(connID string) {
	sm.mu.Lock()
	keys := make([]key, 0, len(sm.byConn[connID]))
	for k := range sm.byConn[connID] {
		keys = append(keys, k)
	}
	sm.mu.Unlock()

	for _, k := range keys {
		sm.release(k)
	}
}

func (sm *SubscriptionManager) release(k key) {
	sm.mu.Lock()
	sub, ok := sm.subs[k]
	if !ok {
		sm.mu.Unlock()
		return
	}
	delete(sm.subs, k)
	if conns := sm.byConn[k.connID]; conns != nil {
		delete(conns, k)
		if len(conns) == 0 {
			delete(sm.byConn, k.connID)
		}
	}
	emitter := sm.emitters[k]
	delete(sm.emitters, k)
	sm.mu.Unlock()

	sm.manager.Unwatch(sub.watcherID)
	if emitter != nil {
		emitter.Close()
	}
	if sm.limiter != nil {
		sm.limiter.Forget(k.subID)
	}
}

func (sm *SubscriptionManager) deliver(k key, batch []Event) {
	if sm.transport == nil || len(batch) == 0 {
		return
	}
	_ = sm.transport.Send(k.connID, k.subID, batch)
}
