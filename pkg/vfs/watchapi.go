package vfs

import (
	"github.com/durablefs/vfs/internal/watch"
)

// Watch registers a listener for mutations at path. If recursive,
// mutations to descendants of path are delivered too. It returns a handle
// to later pass to Unwatch.
func (f *FS) Watch(path string, recursive bool, listener func(watch.Event)) int64 {
	if f.watch == nil {
		return 0
	}
	return f.watch.Watch(path, recursive, 0, watch.Listener(listener))
}

// Unwatch removes a previously registered watcher.
func (f *FS) Unwatch(id int64) {
	if f.watch != nil {
		f.watch.Unwatch(id)
	}
}

// NewSubscriptionManager builds a SubscriptionManager bound to this FS's
// watch manager, delivering over transport with the given per-subscription
// rate limiter (nil disables rate limiting).
func (f *FS) NewSubscriptionManager(transport watch.Transport, limiter *watch.RateLimiter) *watch.SubscriptionManager {
	return watch.NewSubscriptionManager(f.watch, transport, limiter)
}
