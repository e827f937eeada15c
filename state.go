// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package ilias

import (
	"sync/atomic"
)

// ExecutorState represents the current lifecycle state of an Executor.
//
// State Machine (Performance-First Design):
//
//	StateAwake (0) → StateRunning (3)       [Run()]
//	StateRunning (3) → StateSleeping (2)    [poll() via CAS]
//	StateRunning (3) → StateTerminating (4) [Shutdown()]
//	StateSleeping (2) → StateRunning (3)    [poll() wake via CAS]
//	StateSleeping (2) → StateTerminating (4) [Shutdown()]
//	StateTerminating (4) → StateTerminated (1) [shutdown complete]
//	StateTerminated (1) → (terminal)
//
// State Transition Rules:
//   - Use TryTransition() (CAS) for temporary states (Running, Sleeping)
//   - Use Store() for irreversible states (Terminated)
//   - Using Store(Running) or Store(Sleeping) is a BUG (breaks CAS logic)
//
// NOTE: the state values are deliberately non-monotonic (Terminated=1,
// Sleeping=2) so a single CompareAndSwap can distinguish "still running or
// sleeping" from "fully torn down" without a second load.
type ExecutorState uint64

const (
	// StateAwake indicates the executor has been created but not started.
	StateAwake ExecutorState = 0
	// StateTerminated indicates the executor has stopped and is fully shut down.
	StateTerminated ExecutorState = 1
	// StateSleeping indicates the executor is blocked in poll waiting for events.
	StateSleeping ExecutorState = 2
	// StateRunning indicates the executor is actively processing tasks.
	StateRunning ExecutorState = 3
	// StateTerminating indicates shutdown has been requested but not completed.
	StateTerminating ExecutorState = 4
)

// String returns a human-readable representation of the state.
func (s ExecutorState) String() string {
	switch s {
	case StateAwake:
		return "Awake"
	case StateRunning:
		return "Running"
	case StateSleeping:
		return "Sleeping"
	case StateTerminating:
		return "Terminating"
	case StateTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// fastState is a lock-free state machine with cache-line padding.
//
// Uses pure atomic CAS operations with no mutex. Cache-line padding prevents
// false sharing between cores: the owning executor thread reads/writes this
// on every tick, while foreign goroutines calling Submit read it concurrently.
type fastState struct { //nolint:govet // betteralign:ignore
	_ [64]byte      //nolint:unused // cache line padding (before value)
	v atomic.Uint64 // state value
	_ [56]byte      //nolint:unused // pad to complete cache line (64 - 8 = 56)
}

// newFastState creates a new state machine in the Awake state.
func newFastState() *fastState {
	s := &fastState{}
	s.v.Store(uint64(StateAwake))
	return s
}

// Load returns the current state atomically.
func (s *fastState) Load() ExecutorState {
	return ExecutorState(s.v.Load())
}

// Store atomically stores a new state, bypassing transition validation.
func (s *fastState) Store(state ExecutorState) {
	s.v.Store(uint64(state))
}

// TryTransition attempts to atomically transition from one state to another.
// Returns true if the transition was successful.
func (s *fastState) TryTransition(from, to ExecutorState) bool {
	return s.v.CompareAndSwap(uint64(from), uint64(to))
}

// TransitionAny attempts to transition from any valid source state to the
// target, trying each candidate in order. Returns true on the first success.
func (s *fastState) TransitionAny(validFrom []ExecutorState, to ExecutorState) bool {
	for _, from := range validFrom {
		if s.v.CompareAndSwap(uint64(from), uint64(to)) {
			return true
		}
	}
	return false
}

// IsTerminal returns true if the current state is terminal (Terminated).
func (s *fastState) IsTerminal() bool {
	return s.Load() == StateTerminated
}

// IsRunning returns true if the executor is currently running or sleeping.
func (s *fastState) IsRunning() bool {
	state := s.Load()
	return state == StateRunning || state == StateSleeping
}

// CanAcceptWork returns true if the executor can accept new work.
func (s *fastState) CanAcceptWork() bool {
	state := s.Load()
	return state == StateAwake || state == StateRunning || state == StateSleeping
}
