// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package ilias

import (
	"sort"
	"sync"
)

// StopSource is the owning half of a cooperative cancellation signal. It is
// the Go realization of the stop-token tree: a StopSource can be asked to
// stop at most once (idempotent), and every StopToken derived from it, or
// from any of its children, observes that stop.
//
// This follows the shape of the W3C DOM AbortController/AbortSignal pair,
// generalized into a tree: a child StopSource registers its own stop as a
// callback on its parent, so requesting stop at any ancestor propagates
// down to every descendant.
//
// StopSource is safe for concurrent use.
type StopSource struct {
	mu       sync.Mutex
	stopped  bool
	reason   any
	handlers map[*stopHandler]struct{}
	nextID   uint64
	resets   uint64 // bumped by Reset, invalidates handlers registered before it
	running  bool   // true while a RequestStop call is invoking handlers
}

type stopHandler struct {
	fn    func(reason any)
	epoch uint64
	id    uint64 // registration sequence number, for ordered invocation
}

// NewStopSource creates a fresh, un-stopped StopSource with no parent.
func NewStopSource() *StopSource {
	return &StopSource{handlers: make(map[*stopHandler]struct{})}
}

// Token returns the StopToken view of this source. The token is a cheap,
// immutable handle: callers that only need to observe or register against
// the stop should hold a StopToken rather than the StopSource.
func (s *StopSource) Token() StopToken {
	return StopToken{source: s}
}

// NewChild creates a child StopSource whose stop is triggered automatically
// when this source stops, in addition to being independently stoppable.
// Stopping the child never propagates back up to the parent.
func (s *StopSource) NewChild() *StopSource {
	child := NewStopSource()
	s.Token().Register(func(reason any) {
		child.RequestStop(reason)
	})
	return child
}

// RequestStop requests that the source stop, invoking every registered
// callback in registration order with reason. Calling RequestStop more than
// once is a no-op; only the first call's reason is retained.
//
// The source is marked stopped before any callback runs, so a callback that
// registers a new callback on the same StopSource has it invoked at once,
// synchronously, inside Register; such a registration does not panic.
func (s *StopSource) RequestStop(reason any) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.reason = reason
	handlers := make([]*stopHandler, 0, len(s.handlers))
	for h := range s.handlers {
		handlers = append(handlers, h)
	}
	sort.Slice(handlers, func(i, j int) bool { return handlers[i].id < handlers[j].id })
	s.running = true
	s.mu.Unlock()

	for _, h := range handlers {
		h.fn(reason)
	}

	s.mu.Lock()
	s.running = false
	s.handlers = nil
	s.mu.Unlock()
}

// Stopped reports whether RequestStop has been called.
func (s *StopSource) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// Reason returns the reason passed to RequestStop, or nil if not yet stopped.
func (s *StopSource) Reason() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reason
}

// Reset clears the stopped flag and reason, allowing this StopSource to be
// reused for a subsequent operation. Any callbacks registered before Reset
// are discarded; they will never be invoked even if a later RequestStop
// fires. This backs auto-reset wait primitives (e.g. Event's auto-reset
// mode) that want one StopSource-shaped allocation across many waits.
func (s *StopSource) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = false
	s.reason = nil
	s.handlers = make(map[*stopHandler]struct{})
	s.resets++
}

func (s *StopSource) register(fn func(reason any)) StopRegistration {
	s.mu.Lock()
	if s.stopped {
		reason := s.reason
		s.mu.Unlock()
		fn(reason)
		return StopRegistration{}
	}
	if s.running {
		s.mu.Unlock()
		panic("ilias: StopSource.Register called re-entrantly from a running stop callback")
	}
	s.nextID++
	h := &stopHandler{fn: fn, epoch: s.resets, id: s.nextID}
	s.handlers[h] = struct{}{}
	s.mu.Unlock()
	return StopRegistration{source: s, handler: h}
}

// StopToken is a cheap, copyable handle observing a StopSource's stop state.
// The zero value is a token that never stops.
type StopToken struct {
	source *StopSource
}

// NeverStop is a StopToken that can never be requested to stop.
var NeverStop = StopToken{}

// Stopped reports whether the underlying source has been asked to stop.
func (t StopToken) Stopped() bool {
	return t.source != nil && t.source.Stopped()
}

// Reason returns the stop reason, or nil if not stopped.
func (t StopToken) Reason() any {
	if t.source == nil {
		return nil
	}
	return t.source.Reason()
}

// Register arranges for fn to be invoked with the stop reason when the
// underlying source stops. If the source is already stopped, fn is invoked
// immediately, synchronously, before Register returns. Registering against
// a zero-value StopToken (NeverStop) is a permanent no-op and returns a
// registration whose Unregister does nothing.
//
// Register called from within a callback already running on the same
// StopToken's source invokes fn at once; see StopSource.RequestStop.
func (t StopToken) Register(fn func(reason any)) StopRegistration {
	if t.source == nil || fn == nil {
		return StopRegistration{}
	}
	return t.source.register(fn)
}

// CanBeStopped reports whether this token is backed by a real StopSource
// (as opposed to the zero-value NeverStop token).
func (t StopToken) CanBeStopped() bool {
	return t.source != nil
}

// Done returns a channel that is closed when the token's source stops. A
// NeverStop token returns nil, which blocks forever in a select - the same
// behavior as an unset context.Context channel.
func (t StopToken) Done() <-chan struct{} {
	if t.source == nil {
		return nil
	}
	ch := make(chan struct{})
	t.Register(func(any) {
		defer func() { recover() }() // already-closed guard for repeated fires
		close(ch)
	})
	return ch
}

// StopRegistration is a handle to a callback registered via
// StopToken.Register. Unregister removes the callback if it has not already
// fired; it is safe to call Unregister more than once, and safe to call it
// from any goroutine including concurrently with RequestStop.
type StopRegistration struct {
	source  *StopSource
	handler *stopHandler
}

// Unregister removes the callback, if it is still pending. A no-op if the
// registration is empty (e.g. it was taken against an already-stopped
// source, or against NeverStop) or has already fired.
func (r StopRegistration) Unregister() {
	if r.source == nil || r.handler == nil {
		return
	}
	r.source.mu.Lock()
	defer r.source.mu.Unlock()
	if r.source.handlers != nil {
		delete(r.source.handlers, r.handler)
	}
}

// StopError is returned by operations that observe a stop request instead
// of completing normally. It carries the reason passed to RequestStop, if
// any.
type StopError struct {
	Reason any
}

func (e *StopError) Error() string {
	if e.Reason == nil {
		return "ilias: operation stopped"
	}
	if s, ok := e.Reason.(string); ok {
		return "ilias: operation stopped: " + s
	}
	if err, ok := e.Reason.(error); ok {
		return "ilias: operation stopped: " + err.Error()
	}
	return "ilias: operation stopped"
}

// Is reports whether target is also a *StopError, so callers can match with
// errors.Is(err, new(StopError)) style checks regardless of reason.
func (e *StopError) Is(target error) bool {
	_, ok := target.(*StopError)
	return ok
}

// Unwrap returns the stop reason when it is itself an error, enabling
// errors.Is/errors.As to see through to the original cause.
func (e *StopError) Unwrap() error {
	if err, ok := e.Reason.(error); ok {
		return err
	}
	return nil
}
