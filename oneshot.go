// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package ilias

import (
	"errors"
	"sync"
)

// ErrOneshotUsed is returned by Send when the channel's single slot has
// already been filled.
var ErrOneshotUsed = errors.New("ilias: oneshot channel already sent")

// ErrOneshotClosed is returned by Send when the receiver has gone away, or
// by Recv/TryRecv when the sender closed without ever sending.
var ErrOneshotClosed = errors.New("ilias: oneshot channel closed")

// ErrOneshotEmpty is returned by TryRecv when no value is available yet.
var ErrOneshotEmpty = errors.New("ilias: oneshot channel empty")

// oneshotState is the single shared data block a Sender/Receiver pair points
// to, matching the original library's reference-counted detail::Channel<T>
// (here, Go's GC plays the role of the two close-side deleters that free the
// block once both ends are done with it).
type oneshotState[T any] struct {
	mu             sync.Mutex
	value          *T
	sent           bool
	senderClosed   bool
	receiverClosed bool
	notify         chan struct{}
	once           sync.Once
}

func (st *oneshotState[T]) signal() {
	st.once.Do(func() { close(st.notify) })
}

// OneshotSender is the write half of a one-value channel. It is safe to call
// Send from any goroutine; Send only ever succeeds once.
type OneshotSender[T any] struct {
	state *oneshotState[T]
}

// OneshotReceiver is the read half of a one-value channel.
type OneshotReceiver[T any] struct {
	state *oneshotState[T]
}

// NewOneshot creates a connected sender/receiver pair for a single value of
// type T.
func NewOneshot[T any]() (OneshotSender[T], OneshotReceiver[T]) {
	st := &oneshotState[T]{notify: make(chan struct{})}
	return OneshotSender[T]{st}, OneshotReceiver[T]{st}
}

// Send delivers v to the receiver. It fails with ErrOneshotUsed if already
// sent, or ErrOneshotClosed if the receiver has already closed.
func (s OneshotSender[T]) Send(v T) error {
	st := s.state
	st.mu.Lock()
	switch {
	case st.sent:
		st.mu.Unlock()
		return ErrOneshotUsed
	case st.receiverClosed:
		st.mu.Unlock()
		return ErrOneshotClosed
	}
	st.sent = true
	st.value = &v
	st.mu.Unlock()
	st.signal()
	return nil
}

// Close closes the sender without sending a value, unblocking any pending
// Recv with ErrOneshotClosed. Safe to call after Send; a no-op in that case.
func (s OneshotSender[T]) Close() {
	st := s.state
	st.mu.Lock()
	st.senderClosed = true
	st.mu.Unlock()
	st.signal()
}

// Recv blocks until a value is sent, the sender closes, or stop fires.
func (r OneshotReceiver[T]) Recv(stop StopToken) (T, error) {
	st := r.state
	select {
	case <-st.notify:
	case <-stop.Done():
		return zeroOf[T](), &StopError{Reason: stop.Reason()}
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if st.value != nil {
		v := *st.value
		st.value = nil
		return v, nil
	}
	return zeroOf[T](), ErrOneshotClosed
}

// TryRecv attempts to receive without blocking, returning ErrOneshotEmpty if
// the sender hasn't sent (or closed) yet.
func (r OneshotReceiver[T]) TryRecv() (T, error) {
	st := r.state
	select {
	case <-st.notify:
	default:
		return zeroOf[T](), ErrOneshotEmpty
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if st.value != nil {
		v := *st.value
		st.value = nil
		return v, nil
	}
	return zeroOf[T](), ErrOneshotClosed
}

// Close marks the receiver closed; a subsequent Send observes
// ErrOneshotClosed.
func (r OneshotReceiver[T]) Close() {
	st := r.state
	st.mu.Lock()
	st.receiverClosed = true
	st.mu.Unlock()
}
