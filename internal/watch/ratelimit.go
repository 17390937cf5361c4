package watch

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"
)

// DefaultEventsPerSecond and DefaultBurst size the per-subscription token
// bucket when a caller doesn't request different limits.
const (
	DefaultEventsPerSecond = 200
	DefaultBurst           = 400
)

// DroppedEvents counts events discarded by RateLimiter because a
// subscription's token bucket was exhausted, labeled by the dropped
// event's type so operators can see which priority class is shedding.
var DroppedEvents = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "vfs_watch_dropped_events_total",
		Help: "Events dropped by the watch pipeline's per-subscription rate limiter.",
	},
	[]string{"type"},
)

func init() {
	prometheus.MustRegister(DroppedEvents)
}

// RateLimiter enforces a token-bucket limit per subscription id. When a
// subscription's bucket is exhausted, Allow reports false and the caller
// is expected to drop the event, preferring to drop the lowest-priority
// event among those contending for the bucket.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

// NewRateLimiter constructs a RateLimiter with the given per-subscription
// rate (events/sec) and burst. rps <= 0 selects DefaultEventsPerSecond;
// burst <= 0 selects DefaultBurst.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if rps <= 0 {
		rps = DefaultEventsPerSecond
	}
	if burst <= 0 {
		burst = DefaultBurst
	}
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

func (rl *RateLimiter) limiterFor(subID string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	l, ok := rl.limiters[subID]
	if !ok {
		l = rate.NewLimiter(rl.rps, rl.burst)
		rl.limiters[subID] = l
	}
	return l
}

// Allow reports whether an event of the given type may be delivered to
// subID right now. On false the caller should drop the event and the
// dropped-event counter is incremented.
func (rl *RateLimiter) Allow(subID string, evType EventType) bool {
	if rl.limiterFor(subID).Allow() {
		return true
	}
	DroppedEvents.WithLabelValues(string(evType)).Inc()
	return false
}

// Forget releases the token bucket for a subscription that has ended.
func (rl *RateLimiter) Forget(subID string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.limiters, subID)
}

// SelectForDrop picks the event to drop among a batch contending for a
// rate-limited slot: lowest priority first (modify before create before
// rename before delete), so the highest-value events survive.
func SelectForDrop(events []Event) int {
	worst := 0
	for i, ev := range events {
		if ev.Type.priority() < events[worst].Type.priority() {
			worst = i
		}
	}
	return worst
}
