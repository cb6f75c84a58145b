// Package safemap provides a small generic concurrent map with
// insert-if-absent semantics, the shape every table in this module
// (fids, tags, control-namespace counters) needs.
package safemap

import "sync"

// Map is a concurrency-safe map. The zero value is ready to use.
type Map[K comparable, V any] struct {
	mu     sync.RWMutex
	values map[K]V
}

// New returns an initialized Map. Using the zero value directly also
// works; New exists for symmetry with make(map[K]V).
func New[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{values: make(map[K]V)}
}

func (m *Map[K, V]) init() {
	if m.values == nil {
		m.values = make(map[K]V)
	}
}

// Get retrieves the value stored under key.
func (m *Map[K, V]) Get(key K) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

// Put stores val under key, overwriting any previous value.
func (m *Map[K, V]) Put(key K, val V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.init()
	m.values[key] = val
}

// Add stores val under key only if key is not already present. It
// reports whether the value was stored.
func (m *Map[K, V]) Add(key K, val V) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.init()
	if _, ok := m.values[key]; ok {
		return false
	}
	m.values[key] = val
	return true
}

// Del removes key from the map, returning the value it held, if any.
func (m *Map[K, V]) Del(key K) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if ok {
		delete(m.values, key)
	}
	return v, ok
}

// Len returns the number of entries currently stored.
func (m *Map[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}

// Range calls f for each entry in the map. Range stops early if f
// returns false. f must not call back into the Map.
func (m *Map[K, V]) Range(f func(K, V) bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for k, v := range m.values {
		if !f(k, v) {
			return
		}
	}
}

// Do calls f once while holding the Map's write lock, letting callers
// perform a check-then-act sequence atomically.
func (m *Map[K, V]) Do(f func(map[K]V)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.init()
	f(m.values)
}
