// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package ilias

import "sync/atomic"

// Mutex is a cooperative, stop-token-aware mutual exclusion lock: Lock parks
// the calling goroutine on a waitQueue instead of blocking a whole OS thread
// indefinitely without a cancellation path, unlike sync.Mutex.
type Mutex struct {
	q      waitQueue
	locked atomic.Bool
}

// NewMutex creates an unlocked Mutex.
func NewMutex() *Mutex {
	return &Mutex{}
}

// TryLock attempts to acquire the mutex without blocking.
func (m *Mutex) TryLock() bool {
	return m.locked.CompareAndSwap(false, true)
}

// Lock blocks until the mutex is acquired or stop fires.
func (m *Mutex) Lock(stop StopToken) error {
	return m.q.wait(stop, m.TryLock)
}

// Unlock releases the mutex and wakes one waiter, if any. Unlocking an
// already-unlocked Mutex panics, same as sync.Mutex.
func (m *Mutex) Unlock() {
	if !m.locked.CompareAndSwap(true, false) {
		panic("ilias: unlock of unlocked Mutex")
	}
	m.q.wakeupOne()
}
