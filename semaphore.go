// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package ilias

import "sync"

// Semaphore is a cooperative counting semaphore: Acquire parks on a
// waitQueue rather than blocking an OS thread, and accepts a StopToken so a
// stuck acquire can be canceled.
type Semaphore struct {
	q     waitQueue
	mu    sync.Mutex
	count int
}

// NewSemaphore creates a Semaphore with n initial permits. n must be >= 0.
func NewSemaphore(n int) *Semaphore {
	if n < 0 {
		panic(&RangeError{Message: "ilias: NewSemaphore given negative permit count"})
	}
	return &Semaphore{count: n}
}

func (s *Semaphore) tryAcquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.count > 0 {
		s.count--
		return true
	}
	return false
}

// TryAcquire attempts to acquire one permit without blocking.
func (s *Semaphore) TryAcquire() bool {
	return s.tryAcquire()
}

// Acquire blocks until a permit is available or stop fires.
func (s *Semaphore) Acquire(stop StopToken) error {
	return s.q.wait(stop, s.tryAcquire)
}

// Release returns n permits to the semaphore (n defaults to 1 if <= 0),
// waking up to n waiters.
func (s *Semaphore) Release(n int) {
	if n <= 0 {
		n = 1
	}
	s.mu.Lock()
	s.count += n
	s.mu.Unlock()
	for i := 0; i < n; i++ {
		s.q.wakeupOne()
	}
}
