// Package locker provides in-process per-key mutual exclusion. The tracking
// service uses one lock per shipment identifier so that concurrent checkpoint
// appends and status transitions on the same shipment serialize, while
// unrelated shipments proceed in parallel.
package locker

import "sync"

// Keyed hands out a mutex per key. The zero value is not usable; call New.
type Keyed struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

// New constructs an empty keyed locker.
func New() *Keyed {
	return &Keyed{locks: make(map[string]*entry)}
}

// Lock acquires the mutex for key, blocking until it is available.
// The returned function releases it and must be called exactly once.
func (k *Keyed) Lock(key string) (unlock func()) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &entry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
