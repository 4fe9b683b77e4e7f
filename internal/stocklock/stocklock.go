// Package stocklock serializes check-then-write sequences on product stock.
// Product.Stock is the single contended mutable field in the system; every
// writer (sale commit, stock movement, manual adjustment) must hold the
// product's lock across its validate+commit sequence.
package stocklock

import (
	"sort"
	"sync"
)

type Registry struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{locks: make(map[string]*sync.Mutex)}
}

func (r *Registry) get(id string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.locks[id]
	if !ok {
		m = &sync.Mutex{}
		r.locks[id] = m
	}
	return m
}

// Lock acquires the locks for the given product IDs, deduplicated and in
// sorted order so that two multi-product writers can never deadlock. The
// returned func releases them in reverse order.
func (r *Registry) Lock(ids ...string) func() {
	uniq := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		uniq = append(uniq, id)
	}
	sort.Strings(uniq)

	held := make([]*sync.Mutex, 0, len(uniq))
	for _, id := range uniq {
		m := r.get(id)
		m.Lock()
		held = append(held, m)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}
