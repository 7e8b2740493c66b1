package ratelimit

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/starshine-sys/cordial/discord"
)

// windows without a reset timestamp are matched if their drop times are this close
const windowSlack = 25 * time.Millisecond

// unit is a set of slots that were used in one ratelimit window, and are freed when that window resets.
type unit struct {
	reset     time.Time
	drop      time.Time
	allocates int
	next      *unit
}

type waiter struct {
	ready   chan struct{}
	granted bool
}

// Handler is the ratelimit state for one bucket: a group and a limiter ID.
//
// A slot is taken with Acquire before a request and given back with Release after it.
// Slots given back with ratelimit headers stay allocated until the bucket's window resets.
type Handler struct {
	group    *Group
	id       discord.Snowflake
	registry *Registry

	mu           sync.Mutex
	active       int
	allocated    int
	units        *unit
	waiters      []*waiter
	blockedUntil time.Time
	timer        *time.Timer
	lastUsed     time.Time
}

func (h *Handler) Group() *Group            { return h.group }
func (h *Handler) ID() discord.Snowflake    { return h.id }
func (h *Handler) String() string           { return fmt.Sprintf("%v:%v", h.group.Limiter(), h.id) }
func (h *Handler) isUnlimited() bool        { return h.group.IsUnlimited() }
func (h *Handler) touch(now time.Time)      { h.lastUsed = now }
func (h *Handler) blocked(t time.Time) bool { return t.Before(h.blockedUntil) }

// Acquire waits for the global lock, then for a free slot in the bucket.
// Waiters are served in the order they called Acquire.
// If ctx is cancelled before a slot is free, no slot is taken.
func (h *Handler) Acquire(ctx context.Context) error {
	if err := h.registry.waitGlobal(ctx); err != nil {
		return err
	}
	if h.isUnlimited() {
		return nil
	}

	h.mu.Lock()
	now := time.Now()
	h.touch(now)
	h.expire(now)
	if len(h.waiters) == 0 && h.free(now) > 0 {
		h.active++
		h.mu.Unlock()
		return nil
	}

	w := &waiter{ready: make(chan struct{})}
	h.waiters = append(h.waiters, w)
	h.schedule(now)
	h.mu.Unlock()

	select {
	case <-w.ready:
		// the global lock might have been hit while we were queued
		if err := h.registry.waitGlobal(ctx); err != nil {
			h.giveBack()
			return err
		}
		return nil
	case <-ctx.Done():
	}

	h.mu.Lock()
	if w.granted {
		// the slot was handed to us as the context ended, so pass it on
		h.mu.Unlock()
		h.giveBack()
	} else {
		h.removeWaiter(w)
		h.mu.Unlock()
	}
	return ctx.Err()
}

// giveBack returns a slot that was granted but never used.
func (h *Handler) giveBack() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.active > 0 {
		h.active--
	}
	h.wake(time.Now())
}

// Release gives back a slot taken with Acquire.
// If ok is false, the response had no ratelimit headers and the slot is freed immediately.
// Otherwise, the group's size is learned from info, and the slot stays allocated until the window resets.
func (h *Handler) Release(info Info, ok bool) {
	if h.isUnlimited() {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now()
	h.touch(now)
	if h.active > 0 {
		h.active--
	}

	if ok {
		h.group.learn(info.Limit)
		h.allocate(now, info)
	}
	h.wake(now)
}

// Exhaust marks the whole bucket as used until the given time.
// It's called when a request to the bucket got a non-global 429.
func (h *Handler) Exhaust(until time.Time) {
	if h.isUnlimited() {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now()
	h.touch(now)
	if until.After(h.blockedUntil) {
		h.blockedUntil = until
	}
	h.schedule(now)
}

// Snapshot is the state of a Handler at one point in time.
type Snapshot struct {
	Size      int
	Active    int
	Allocated int
	Queued    int
	NextReset time.Time
}

func (s Snapshot) String() string {
	size := "unknown"
	if s.Size > 0 {
		size = fmt.Sprint(s.Size)
	} else if s.Size < 0 {
		size = "unlimited"
	}

	reset := "no pending reset"
	if !s.NextReset.IsZero() {
		reset = "resets " + humanize.Time(s.NextReset)
	}
	return fmt.Sprintf("%d/%v used, %d queued, %v", s.Active+s.Allocated, size, s.Queued, reset)
}

// Snapshot returns the handler's current state.
func (h *Handler) Snapshot() Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now()
	h.expire(now)

	s := Snapshot{
		Size:      h.group.Size(),
		Active:    h.active,
		Allocated: h.allocated,
		Queued:    len(h.waiters),
	}
	if h.blocked(now) {
		s.NextReset = h.blockedUntil
	} else if h.units != nil {
		s.NextReset = h.units.drop
	}
	return s
}

// free returns the number of requests that can be sent right now.
func (h *Handler) free(now time.Time) int {
	if h.blocked(now) {
		return 0
	}

	size := h.group.Size()
	if size <= 0 {
		return math.MaxInt32
	}
	return size - h.active - h.allocated
}

// expire frees every unit whose window has reset.
func (h *Handler) expire(now time.Time) {
	for h.units != nil && !h.units.drop.After(now) {
		h.allocated -= h.units.allocates
		h.units = h.units.next
	}
	if h.allocated < 0 {
		h.allocated = 0
	}
}

// allocate turns a released slot into an allocation for the window described by info.
func (h *Handler) allocate(now time.Time, info Info) {
	drop := now.Add(info.ResetAfter)

	u := h.findUnit(info.Reset, drop)
	if u == nil {
		u = &unit{reset: info.Reset, drop: drop}
		h.insertUnit(u)
	}

	// Discord knows about requests we didn't send, such as ones from another process
	n := u.allocates + 1
	if used := info.Limit - info.Remaining; used > n {
		n = used
	}

	if size := h.group.Size(); size > 0 {
		if room := size - h.active - (h.allocated - u.allocates); n > room {
			n = room
		}
	}
	if n < 0 {
		n = 0
	}

	h.allocated += n - u.allocates
	u.allocates = n
}

func (h *Handler) findUnit(reset, drop time.Time) *unit {
	for u := h.units; u != nil; u = u.next {
		if !reset.IsZero() {
			if u.reset.Equal(reset) {
				return u
			}
			continue
		}

		diff := u.drop.Sub(drop)
		if u.reset.IsZero() && diff < windowSlack && diff > -windowSlack {
			return u
		}
	}
	return nil
}

// insertUnit adds a unit to the list, keeping it sorted by drop time.
func (h *Handler) insertUnit(n *unit) {
	if h.units == nil || n.drop.Before(h.units.drop) {
		n.next = h.units
		h.units = n
		return
	}

	u := h.units
	for u.next != nil && !n.drop.Before(u.next.drop) {
		u = u.next
	}
	n.next = u.next
	u.next = n
}

// wake hands free slots to waiters, in order.
func (h *Handler) wake(now time.Time) {
	h.expire(now)
	for len(h.waiters) > 0 && h.free(now) > 0 {
		w := h.waiters[0]
		h.waiters[0] = nil
		h.waiters = h.waiters[1:]

		w.granted = true
		h.active++
		close(w.ready)
	}
	h.schedule(now)
}

func (h *Handler) removeWaiter(w *waiter) {
	for i := range h.waiters {
		if h.waiters[i] == w {
			h.waiters = append(h.waiters[:i], h.waiters[i+1:]...)
			return
		}
	}
}

// schedule sets the timer for the next time a waiter could be woken up.
// Nothing is scheduled when nobody is waiting.
func (h *Handler) schedule(now time.Time) {
	var next time.Time
	if len(h.waiters) > 0 {
		if h.blocked(now) {
			next = h.blockedUntil
		} else if h.units != nil {
			next = h.units.drop
		}
	}

	if next.IsZero() {
		if h.timer != nil {
			h.timer.Stop()
		}
		return
	}

	d := next.Sub(now)
	if h.timer == nil {
		h.timer = time.AfterFunc(d, h.tick)
	} else {
		h.timer.Reset(d)
	}
}

func (h *Handler) tick() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.wake(time.Now())
}

// idle returns true if the handler holds no state and hasn't been used in a while.
func (h *Handler) idle(now time.Time, after time.Duration) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.expire(now)
	return h.active == 0 &&
		h.allocated == 0 &&
		len(h.waiters) == 0 &&
		!h.blocked(now) &&
		now.Sub(h.lastUsed) >= after
}
