package ratelimit

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/starshine-sys/cordial/common/log"
	"github.com/starshine-sys/cordial/discord"
)

// Key identifies a bucket.
type Key struct {
	Group *Group
	ID    discord.Snowflake
}

// Registry holds every Handler in use, and the global ratelimit lock.
type Registry struct {
	mu       sync.Mutex
	handlers map[Key]*Handler

	globalMu    sync.RWMutex
	globalUntil time.Time

	log *zap.SugaredLogger
}

// NewRegistry creates an empty registry. If logger is nil, the global logger is used.
func NewRegistry(logger *zap.SugaredLogger) *Registry {
	if logger == nil {
		logger = log.Named("ratelimit")
	}

	return &Registry{
		handlers: make(map[Key]*Handler),
		log:      logger,
	}
}

// Handler returns the handler for the given group and limiter ID, creating it if needed.
// The ID is ignored for global and unlimited groups.
func (r *Registry) Handler(g *Group, id discord.Snowflake) *Handler {
	if g.Limiter() == Global || g.Limiter() == Unlimited {
		id = 0
	}
	k := Key{Group: g, ID: id}

	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.handlers[k]
	if !ok {
		h = &Handler{group: g, id: id, registry: r, lastUsed: time.Now()}
		r.handlers[k] = h
		return h
	}

	// keeps Cleanup from removing it before the caller acquires a slot
	h.mu.Lock()
	h.touch(time.Now())
	h.mu.Unlock()
	return h
}

// LockGlobal blocks every request until d has passed.
// A shorter lock never overrides a longer one.
func (r *Registry) LockGlobal(d time.Duration) {
	until := time.Now().Add(d)

	r.globalMu.Lock()
	defer r.globalMu.Unlock()

	if until.After(r.globalUntil) {
		r.globalUntil = until
		r.log.Warnf("Hit global ratelimit, locking all requests for %v", d)
	}
}

// GlobalUntil returns the time the global lock lifts. It is in the past if there's no lock.
func (r *Registry) GlobalUntil() time.Time {
	r.globalMu.RLock()
	defer r.globalMu.RUnlock()
	return r.globalUntil
}

func (r *Registry) waitGlobal(ctx context.Context) error {
	for {
		d := time.Until(r.GlobalUntil())
		if d <= 0 {
			return nil
		}

		t := time.NewTimer(d)
		select {
		case <-t.C:
			// the lock might have been extended while we waited
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		}
	}
}

// Cleanup removes handlers that have been idle for at least the given duration, and returns how many were removed.
func (r *Registry) Cleanup(idle time.Duration) (removed int) {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	for k, h := range r.handlers {
		if h.idle(now, idle) {
			delete(r.handlers, k)
			removed++
		}
	}
	return removed
}

// Run removes idle handlers every interval until ctx is cancelled.
func (r *Registry) Run(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Cleanup(idle); n > 0 {
				r.log.Debugf("Removed %d idle ratelimit handlers", n)
			}
		}
	}
}

// Len returns the number of handlers in the registry.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handlers)
}

// Snapshots returns the state of every handler in the registry.
func (r *Registry) Snapshots() map[Key]Snapshot {
	r.mu.Lock()
	handlers := make(map[Key]*Handler, len(r.handlers))
	for k, h := range r.handlers {
		handlers[k] = h
	}
	r.mu.Unlock()

	snaps := make(map[Key]Snapshot, len(handlers))
	for k, h := range handlers {
		snaps[k] = h.Snapshot()
	}
	return snaps
}
