package common

import (
	"sort"
	"sync"
)

// Map is a map guarded by a read-write mutex.
type Map[K comparable, V any] struct {
	m  map[K]V
	mu sync.RWMutex
}

// NewMap returns a new Map.
func NewMap[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{
		m: make(map[K]V),
	}
}

// Set sets the key k to the value v, and returns true if k was already set.
func (m *Map[K, V]) Set(k K, v V) (replaced bool) {
	m.mu.Lock()
	_, replaced = m.m[k]
	m.m[k] = v
	m.mu.Unlock()
	return replaced
}

// Get gets the value at key k.
func (m *Map[K, V]) Get(k K) (v V, ok bool) {
	m.mu.RLock()
	v, ok = m.m[k]
	m.mu.RUnlock()
	return v, ok
}

// Remove removes a key from the map. It returns true if the key existed.
func (m *Map[K, V]) Remove(k K) (exists bool) {
	m.mu.Lock()
	_, exists = m.m[k]
	delete(m.m, k)
	m.mu.Unlock()
	return exists
}

// Length returns the size of m.
func (m *Map[K, V]) Length() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.m)
}

// SortedKeys returns all keys in m, sorted with less.
func (m *Map[K, V]) SortedKeys(less func(a, b K) bool) []K {
	m.mu.RLock()
	keys := make([]K, 0, len(m.m))
	for k := range m.m {
		keys = append(keys, k)
	}
	m.mu.RUnlock()

	sort.Slice(keys, func(i, j int) bool { return less(keys[i], keys[j]) })
	return keys
}

// Find returns the value of the first key, in sorted order, for which match returns true.
func (m *Map[K, V]) Find(less func(a, b K) bool, match func(K) bool) (v V, ok bool) {
	for _, k := range m.SortedKeys(less) {
		if match(k) {
			return m.Get(k)
		}
	}
	return v, false
}
