// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package ilias

import (
	"container/list"
	"sync"
)

// waitQueue is the shared FIFO waiter primitive every blocking synchronization
// primitive in this package (Mutex, Event, Semaphore, Latch, mpsc Channel) is
// built on: a goroutine calls wait with a tryAcquire predicate; if the
// predicate doesn't hold, it enqueues and parks until woken, then retries the
// predicate (since a wakeup is only ever a hint that conditions may have
// changed - another waiter may have raced it to the resource).
//
// Grounded on the original library's sync::WaitQueue/WaitAwaiter pair: an
// intrusive FIFO of suspended waiters woken one at a time (wakeupOne) or all
// at once (wakeupAll), each re-testing its own condition on wakeup rather
// than assuming the wakeup itself satisfies it.
type waitQueue struct {
	mu      sync.Mutex
	waiters list.List // of *waitQueueEntry
}

type waitQueueEntry struct {
	ch chan struct{}
}

// wait blocks until tryAcquire reports true or stop fires. tryAcquire is
// called at least once before parking, and again after every wakeup.
func (q *waitQueue) wait(stop StopToken, tryAcquire func() bool) error {
	if tryAcquire() {
		return nil
	}

	entry := &waitQueueEntry{ch: make(chan struct{}, 1)}
	q.mu.Lock()
	elem := q.waiters.PushBack(entry)
	q.mu.Unlock()

	for {
		select {
		case <-entry.ch:
			if tryAcquire() {
				return nil
			}
			q.mu.Lock()
			elem = q.waiters.PushBack(entry)
			q.mu.Unlock()
		case <-stop.Done():
			q.mu.Lock()
			q.waiters.Remove(elem)
			q.mu.Unlock()
			return &StopError{Reason: stop.Reason()}
		}
	}
}

// wakeupOne wakes the longest-waiting parked goroutine, if any.
func (q *waitQueue) wakeupOne() {
	q.mu.Lock()
	front := q.waiters.Front()
	if front == nil {
		q.mu.Unlock()
		return
	}
	q.waiters.Remove(front)
	q.mu.Unlock()

	entry := front.Value.(*waitQueueEntry)
	select {
	case entry.ch <- struct{}{}:
	default:
	}
}

// wakeupAll wakes every parked goroutine.
func (q *waitQueue) wakeupAll() {
	q.mu.Lock()
	entries := make([]*waitQueueEntry, 0, q.waiters.Len())
	for e := q.waiters.Front(); e != nil; e = e.Next() {
		entries = append(entries, e.Value.(*waitQueueEntry))
	}
	q.waiters.Init()
	q.mu.Unlock()

	for _, entry := range entries {
		select {
		case entry.ch <- struct{}{}:
		default:
		}
	}
}
