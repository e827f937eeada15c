// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package ilias

import (
	"sync"
	"weak"
)

// registryEntry is the non-generic handle the registry tracks for each live
// Task[T], regardless of T. Task[T] owns one of these and wires cancel to
// complete its own generic promise[T] as rejected, so the registry itself
// never needs to be generic.
type registryEntry struct {
	mu     sync.Mutex
	state  settleState
	cancel func(error)
}

func newRegistryEntry() *registryEntry {
	return &registryEntry{}
}

func (e *registryEntry) State() settleState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// markSettled records that the owning task has settled, so the next
// scavenge pass can reclaim the registry slot without waiting for GC.
func (e *registryEntry) markSettled(s settleState) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// reject invokes the owning task's cancellation, if it is still pending.
func (e *registryEntry) reject(err error) {
	e.mu.Lock()
	if e.state != settlePending {
		e.mu.Unlock()
		return
	}
	fn := e.cancel
	e.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}

// registry tracks in-flight tasks via weak pointers, so a task that is
// never awaited and becomes unreachable can still be garbage collected
// instead of leaking through the registry. It uses a ring-buffer scavenging
// strategy: each tick checks a bounded batch of entries rather than the
// whole registry, amortizing the cleanup cost.
type registry struct {
	data map[uint64]weak.Pointer[registryEntry]
	ring []uint64
	head int

	nextID uint64
	mu     sync.RWMutex

	scavengeMu sync.Mutex
}

func newRegistry() *registry {
	return &registry{
		data:   make(map[uint64]weak.Pointer[registryEntry]),
		ring:   make([]uint64, 0, 1024),
		nextID: 1,
	}
}

// track registers entry and returns its registry ID.
func (r *registry) track(entry *registryEntry) uint64 {
	wp := weak.Make(entry)

	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++
	r.data[id] = wp
	r.ring = append(r.ring, id)
	return id
}

// Scavenge performs a partial cleanup pass of batchSize ring slots,
// removing entries whose task has either been garbage collected or already
// settled.
func (r *registry) Scavenge(batchSize int) {
	r.scavengeMu.Lock()
	defer r.scavengeMu.Unlock()

	if batchSize <= 0 {
		return
	}

	r.mu.RLock()
	ringLen := len(r.ring)
	if ringLen == 0 {
		r.mu.RUnlock()
		return
	}

	start := r.head
	end := min(start+batchSize, ringLen)

	type item struct {
		id  uint64
		idx int
	}
	items := make([]item, 0, end-start)
	for i := start; i < end; i++ {
		if id := r.ring[i]; id != 0 {
			items = append(items, item{id, i})
		}
	}

	wps := make([]weak.Pointer[registryEntry], len(items))
	validItems := items[:0]
	for _, it := range items {
		if wp, ok := r.data[it.id]; ok {
			wps[len(validItems)] = wp
			validItems = append(validItems, it)
		}
	}
	wps = wps[:len(validItems)]

	nextHead := end
	if nextHead >= ringLen {
		nextHead = 0
	}
	r.mu.RUnlock()

	cycleCompleted := nextHead == 0

	var toRemove []item
	for i, it := range validItems {
		val := wps[i].Value()
		if val == nil || val.State() != settlePending {
			toRemove = append(toRemove, it)
		}
	}

	if len(toRemove) > 0 || cycleCompleted {
		r.mu.Lock()
		for _, it := range toRemove {
			delete(r.data, it.id)
			if it.idx < len(r.ring) && r.ring[it.idx] == it.id {
				r.ring[it.idx] = 0
			}
		}
		r.head = nextHead

		if cycleCompleted {
			active := len(r.data)
			capacity := len(r.ring)
			if capacity > 256 && float64(active) < float64(capacity)*0.25 {
				r.compactAndRenew()
			}
		}
		r.mu.Unlock()
	} else {
		r.mu.Lock()
		r.head = nextHead
		r.mu.Unlock()
	}
}

// RejectAll cancels every still-pending tracked task with err. Called
// during executor shutdown so no awaiter hangs indefinitely.
func (r *registry) RejectAll(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, wp := range r.data {
		if entry := wp.Value(); entry != nil {
			entry.reject(err)
		}
		delete(r.data, id)
	}
	r.ring = r.ring[:0]
	r.head = 0
}

// compactAndRenew drops null markers from the ring and rebuilds the map, so
// a long-lived executor doesn't accumulate an ever-growing backing array.
// Caller must hold mu.
func (r *registry) compactAndRenew() {
	newRing := make([]uint64, 0, len(r.data))
	newData := make(map[uint64]weak.Pointer[registryEntry], len(r.data))

	for _, id := range r.ring {
		if id == 0 {
			continue
		}
		if wp, ok := r.data[id]; ok {
			newRing = append(newRing, id)
			newData[id] = wp
		}
	}

	r.ring = newRing
	r.data = newData
	r.head = 0
}
