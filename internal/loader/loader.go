// Package loader implements per-request, per-kind batching and memoization
// of set reads against the store.
//
// Load and LoadMany do not fetch immediately: they register keys in the
// current coalescing window and hand back thunks. The first thunk forced
// closes the window and services every key collected so far with a single
// batch call; results are redistributed by key. This mirrors the depth-wise
// flush model of a breadth-first executor: enqueue everything a level
// needs, then force.
//
// A Loader memoizes for the lifetime of one request and must never be
// shared across requests.
package loader

import (
	"context"
	"sync"
)

// BatchFunc services one batch: it returns the records found for keys,
// keyed for redistribution. Keys absent from the map are reported as not
// found to their callers, not as errors.
type BatchFunc[K comparable, V any] func(ctx context.Context, keys []K) (map[K]V, error)

// Result is the outcome of a single Load. OK reports whether the store
// returned a record for the key.
type Result[V any] struct {
	Value V
	OK    bool
	Err   error
}

// Thunk yields the result of a previously registered Load, forcing the
// pending batch on first call.
type Thunk[V any] func() Result[V]

// ThunkMany yields results positionally corresponding to the keys passed
// to LoadMany.
type ThunkMany[V any] func() []Result[V]

type entry[K comparable, V any] struct {
	batch *batch[K, V] // nil once resolved
	res   Result[V]
}

type batch[K comparable, V any] struct {
	keys    []K
	entries map[K]*entry[K, V]
	done    bool
}

// Loader batches and memoizes lookups for one entity kind.
type Loader[K comparable, V any] struct {
	fetch BatchFunc[K, V]
	mu    sync.Mutex
	cache map[K]*entry[K, V]
	cur   *batch[K, V]
}

// New creates a Loader around fetch.
func New[K comparable, V any](fetch BatchFunc[K, V]) *Loader[K, V] {
	return &Loader[K, V]{fetch: fetch, cache: make(map[K]*entry[K, V])}
}

// Load registers key in the current coalescing window and returns a thunk
// for its result. Repeated loads of the same key share one entry; the
// store is asked at most once per distinct key per request.
func (l *Loader[K, V]) Load(ctx context.Context, key K) Thunk[V] {
	l.mu.Lock()
	e := l.enqueue(key)
	l.mu.Unlock()
	return func() Result[V] {
		l.resolve(ctx, e)
		return e.res
	}
}

// LoadMany registers all keys and returns a thunk yielding results in key
// order, with a per-key not-found marker for keys the store did not return.
func (l *Loader[K, V]) LoadMany(ctx context.Context, keys []K) ThunkMany[V] {
	l.mu.Lock()
	entries := make([]*entry[K, V], len(keys))
	for i, k := range keys {
		entries[i] = l.enqueue(k)
	}
	l.mu.Unlock()
	return func() []Result[V] {
		out := make([]Result[V], len(entries))
		for i, e := range entries {
			l.resolve(ctx, e)
			out[i] = e.res
		}
		return out
	}
}

// Prime inserts a known record into the memo without a storage call. An
// existing memoized value for key is replaced; a later Load returns value
// immediately.
func (l *Loader[K, V]) Prime(key K, value V) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache[key] = &entry[K, V]{res: Result[V]{Value: value, OK: true}}
}

// Clear evicts key from the memo so a later Load re-fetches.
func (l *Loader[K, V]) Clear(key K) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.cache, key)
}

// enqueue returns the memo entry for key, registering it in the current
// window when unseen. Caller holds l.mu.
func (l *Loader[K, V]) enqueue(key K) *entry[K, V] {
	if e, ok := l.cache[key]; ok {
		return e
	}
	if l.cur == nil || l.cur.done {
		l.cur = &batch[K, V]{entries: make(map[K]*entry[K, V])}
	}
	e := &entry[K, V]{batch: l.cur}
	l.cur.keys = append(l.cur.keys, key)
	l.cur.entries[key] = e
	l.cache[key] = e
	return e
}

// resolve forces the entry's batch if it has not run yet.
func (l *Loader[K, V]) resolve(ctx context.Context, e *entry[K, V]) {
	l.mu.Lock()
	b := e.batch
	if b == nil || b.done {
		l.mu.Unlock()
		return
	}
	b.done = true
	if l.cur == b {
		l.cur = nil
	}
	keys := b.keys
	l.mu.Unlock()

	found, err := l.fetch(ctx, keys)

	l.mu.Lock()
	for _, k := range keys {
		be := b.entries[k]
		be.batch = nil
		if err != nil {
			be.res = Result[V]{Err: err}
			continue
		}
		if v, ok := found[k]; ok {
			be.res = Result[V]{Value: v, OK: true}
		}
	}
	l.mu.Unlock()
}
