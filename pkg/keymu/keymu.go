// Package keymu provides locking per key: work for one key runs serially while
// work for different keys runs concurrently. Entries are dropped once nobody
// holds or waits on them, so the map does not grow with the key space.
package keymu

import (
	"fmt"
	"sync"
)

// Map is a set of mutexes addressed by key. The zero value is not usable; use New.
type Map[K comparable] struct {
	mu      sync.Mutex
	entries map[K]*entry[K]
}

type entry[K comparable] struct {
	owner *Map[K]
	key   K
	mu    sync.Mutex
	refs  int
}

// New returns an empty Map.
func New[K comparable]() *Map[K] {
	return &Map[K]{entries: make(map[K]*entry[K])}
}

// Lock blocks until the lock for key is held and returns the function that
// releases it.
func (m *Map[K]) Lock(key K) (unlock func()) {
	m.mu.Lock()
	e, ok := m.entries[key]
	if !ok {
		e = &entry[K]{owner: m, key: key}
		m.entries[key] = e
	}
	e.refs++
	m.mu.Unlock()

	e.mu.Lock()
	return e.unlock
}

// Held reports whether any caller holds or waits on key.
func (m *Map[K]) Held(key K) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[key]
	return ok
}

func (e *entry[K]) unlock() {
	m := e.owner

	m.mu.Lock()
	cur, ok := m.entries[e.key]
	if !ok || cur != e {
		m.mu.Unlock()
		panic(fmt.Errorf("keymu: unlock of unlocked key %v", e.key))
	}
	e.refs--
	if e.refs == 0 {
		delete(m.entries, e.key)
	}
	m.mu.Unlock()

	e.mu.Unlock()
}
