// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package ilias

import (
	"container/heap"
	"time"
)

// timerEntry is a single scheduled deadline in an Executor's timer service.
type timerEntry struct {
	when time.Time
	task Task
	seq  uint64 // tie-breaker: insertion order for equal deadlines
}

// timerHeap is a min-heap of timerEntry ordered by (when, seq), giving
// deterministic ascending-deadline, insertion-order-for-ties firing.
type timerHeap []timerEntry

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].when.Equal(h[j].when) {
		return h[i].seq < h[j].seq
	}
	return h[i].when.Before(h[j].when)
}

func (h timerHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *timerHeap) Push(x any) {
	*h = append(*h, x.(timerEntry))
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// nextDeadline returns the earliest pending deadline and true, or the zero
// time and false if no timers are scheduled.
func (h timerHeap) nextDeadline() (time.Time, bool) {
	if len(h) == 0 {
		return time.Time{}, false
	}
	return h[0].when, true
}
