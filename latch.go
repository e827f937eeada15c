// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package ilias

import "sync/atomic"

// Latch is a single-use countdown gate, like std::latch: Wait blocks until
// the count reaches zero; CountDown decrements it and wakes every waiter
// once it hits zero.
type Latch struct {
	q     waitQueue
	count atomic.Int64
}

// NewLatch creates a Latch counting down from n. n must be >= 0.
func NewLatch(n int64) *Latch {
	if n < 0 {
		panic(&RangeError{Message: "ilias: NewLatch given negative count"})
	}
	l := &Latch{}
	l.count.Store(n)
	return l
}

// TryWait reports whether the latch has already reached zero.
func (l *Latch) TryWait() bool {
	return l.count.Load() == 0
}

// Wait blocks until the latch reaches zero or stop fires.
func (l *Latch) Wait(stop StopToken) error {
	return l.q.wait(stop, l.TryWait)
}

// CountDown decrements the latch by n (n defaults to 1 if <= 0), waking
// every waiter once it reaches zero. Counting down past zero panics.
func (l *Latch) CountDown(n int64) {
	if n <= 0 {
		n = 1
	}
	next := l.count.Add(-n)
	if next < 0 {
		panic(&RangeError{Message: "ilias: Latch counted down below zero"})
	}
	if next == 0 {
		l.q.wakeupAll()
	}
}

// ArriveAndWait is CountDown(n) followed by Wait.
func (l *Latch) ArriveAndWait(stop StopToken, n int64) error {
	l.CountDown(n)
	return l.Wait(stop)
}
