// Package native holds the pieces shared by every binding that talks to a
// native library: owned handles and callback registries.
package native

import "sync"

// ID identifies a registered callback. It is what gets handed to native code
// as userdata so the callback can be found again when native code calls back.
type ID uint64

// Registry maps IDs to Go values. Native code can't hold Go pointers, so
// callbacks are parked here and looked up by ID.
type Registry[V any] struct {
	mu      sync.Locker
	next    ID
	entries map[ID]V
}

// NewRegistry returns an empty registry guarded by mu. A nil mu gets a
// private mutex.
func NewRegistry[V any](mu sync.Locker) *Registry[V] {
	if mu == nil {
		mu = &sync.Mutex{}
	}
	return &Registry[V]{
		mu:      mu,
		entries: make(map[ID]V),
	}
}

func (r *Registry[V]) Register(v V) ID {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.next++
	for {
		if _, taken := r.entries[r.next]; !taken && r.next != 0 {
			break
		}
		r.next++
	}
	r.entries[r.next] = v

	return r.next
}

func (r *Registry[V]) Lookup(id ID) (V, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.entries[id]
	return v, ok
}

// Unregister removes id and returns the value it held.
func (r *Registry[V]) Unregister(id ID) (V, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.entries[id]
	delete(r.entries, id)
	return v, ok
}

func (r *Registry[V]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.entries)
}
