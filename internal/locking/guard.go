package locking

import "sync"

// Guard serializes critical sections by key within a single process.
// Period creation uses a global key; calculation and locking use per-period keys.
type Guard struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

func NewGuard() *Guard {
	return &Guard{locks: make(map[string]*entry)}
}

// Acquire blocks until the key's lock is held and returns the release func.
func (g *Guard) Acquire(key string) func() {
	g.mu.Lock()
	e, ok := g.locks[key]
	if !ok {
		e = &entry{}
		g.locks[key] = e
	}
	e.refs++
	g.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()
		g.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(g.locks, key)
		}
		g.mu.Unlock()
	}
}
