// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package ilias

import "sync/atomic"

// EventMode selects whether Event.Set wakes every waiter (Manual) or exactly
// one, auto-clearing itself in the process (AutoReset) - matching the
// original library's Event::Flag::AutoClear.
type EventMode int

const (
	EventManual EventMode = iota
	EventAutoReset
)

// Event is a coroutine-style condition flag: Wait parks until the event is
// Set. In AutoReset mode, setting the event wakes at most one waiter and the
// flag stays set until a single Wait consumes it, matching a single-consumer
// doorbell.
type Event struct {
	q     waitQueue
	mode  EventMode
	isSet atomic.Bool
}

// NewEvent creates an Event in the given mode with the given initial state.
func NewEvent(mode EventMode, init bool) *Event {
	e := &Event{mode: mode}
	e.isSet.Store(init)
	return e
}

// Set marks the event as set, waking waiters per the event's mode. Setting
// an already-set event is a no-op.
func (e *Event) Set() {
	if e.isSet.Swap(true) {
		return
	}
	if e.mode == EventAutoReset {
		e.q.wakeupOne()
	} else {
		e.q.wakeupAll()
	}
}

// Clear resets the event to unset.
func (e *Event) Clear() {
	e.isSet.Store(false)
}

// IsSet reports whether the event is currently set, without consuming it
// (even in AutoReset mode).
func (e *Event) IsSet() bool {
	return e.isSet.Load()
}

func (e *Event) tryWait() bool {
	if e.mode != EventAutoReset {
		return e.isSet.Load()
	}
	return e.isSet.CompareAndSwap(true, false)
}

// Wait blocks until the event is set (consuming it, in AutoReset mode) or
// stop fires.
func (e *Event) Wait(stop StopToken) error {
	return e.q.wait(stop, e.tryWait)
}
