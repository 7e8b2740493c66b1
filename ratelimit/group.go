package ratelimit

import "sync"

// Limiter is the route parameter a bucket is scoped to.
// Two requests share a bucket only if they hit the same group and have the same limiter ID.
type Limiter uint8

const (
	// Unlimited routes don't have a bucket.
	Unlimited Limiter = iota
	// Global buckets are shared by every request to the route.
	Global
	Channel
	Guild
	Webhook
	Interaction
)

var limiterNames = map[Limiter]string{
	Unlimited:   "unlimited",
	Global:      "global",
	Channel:     "channel",
	Guild:       "guild",
	Webhook:     "webhook",
	Interaction: "interaction",
}

func (l Limiter) String() string {
	if s, ok := limiterNames[l]; ok {
		return s
	}
	return "unknown"
}

// Group is a bucket shape shared by one or more routes.
// Its size is learned from the X-RateLimit-Limit header of the first response.
type Group struct {
	limiter Limiter

	mu   sync.RWMutex
	size int
}

// NewGroup creates a group.
// An optimistic group allows any number of requests until its size is known,
// while a pessimistic one only lets a single request through to learn it.
func NewGroup(limiter Limiter, optimistic bool) *Group {
	g := &Group{limiter: limiter, size: 1}
	if optimistic {
		g.size = 0
	}
	return g
}

// UnlimitedGroup creates a group that is never limited.
func UnlimitedGroup() *Group {
	return &Group{limiter: Unlimited, size: -1}
}

func (g *Group) Limiter() Limiter {
	return g.limiter
}

// Size returns the group's size: -1 if it's unlimited, 0 if it's unknown.
func (g *Group) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.size
}

// IsUnlimited returns true if requests in this group never wait.
func (g *Group) IsUnlimited() bool {
	return g.Size() < 0
}

// learn sets the group's size from a response. It returns true if the size changed.
func (g *Group) learn(limit int) bool {
	if limit <= 0 {
		return false
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.size < 0 || g.size == limit {
		return false
	}
	g.size = limit
	return true
}
