// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package ilias

import "sync"

// Channel is a bounded multi-producer, single-consumer queue: any number of
// goroutines may Send, but Recv is meant to be called from one consumer at a
// time. Send blocks while the queue is full; Recv blocks while it is empty
// and at least one sender handle remains open.
//
// Grounded on the original library's mpsc::Channel<T>: a capacity-bounded
// deque guarded by two independent wait queues (one for blocked senders, one
// for the blocked receiver), each side waking the other's queue on progress.
type Channel[T any] struct {
	mu       sync.Mutex
	buf      []T
	capacity int
	senders  int
	closed   bool

	sendQ waitQueue
	recvQ waitQueue
}

// NewChannel creates a Channel with the given capacity (must be > 0) and one
// open sender handle, matching the "senderCount starts at 1" convention of
// the original mpsc channel.
func NewChannel[T any](capacity int) *Channel[T] {
	if capacity <= 0 {
		panic(&RangeError{Message: "ilias: NewChannel given non-positive capacity"})
	}
	return &Channel[T]{capacity: capacity, senders: 1}
}

// AddSender returns a handle sharing this channel, incrementing the open
// sender count. Each handle returned (including the implicit first one) must
// eventually have CloseSender called on it exactly once.
func (c *Channel[T]) AddSender() *Channel[T] {
	c.mu.Lock()
	c.senders++
	c.mu.Unlock()
	return c
}

// CloseSender decrements the open sender count. Once it reaches zero, any
// blocked or future Recv observes end-of-channel once the buffer drains.
func (c *Channel[T]) CloseSender() {
	c.mu.Lock()
	c.senders--
	done := c.senders <= 0
	c.mu.Unlock()
	if done {
		c.recvQ.wakeupAll()
	}
}

// CloseReceiver marks the channel closed from the consumer side: any
// pending or later Send returns ok == false with a nil error.
func (c *Channel[T]) CloseReceiver() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.sendQ.wakeupAll()
}

func (c *Channel[T]) trySend(v T, sent *bool, ok *bool) func() bool {
	return func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed {
			*ok = false
			return true
		}
		if len(c.buf) < c.capacity {
			c.buf = append(c.buf, v)
			*sent = true
			*ok = true
			return true
		}
		return false
	}
}

// Send blocks until there is buffer space, the receiver closes, or stop
// fires. ok is false if the receiver has closed (v is dropped in that case).
func (c *Channel[T]) Send(stop StopToken, v T) (ok bool, err error) {
	var sent bool
	if err := c.sendQ.wait(stop, c.trySend(v, &sent, &ok)); err != nil {
		return false, err
	}
	if sent {
		c.recvQ.wakeupOne()
	}
	return ok, nil
}

func (c *Channel[T]) tryRecv(out *T, ok *bool) func() bool {
	return func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		if len(c.buf) > 0 {
			*out = c.buf[0]
			c.buf = c.buf[1:]
			*ok = true
			return true
		}
		if c.senders <= 0 {
			*ok = false
			return true
		}
		return false
	}
}

// Recv blocks until a value is available, every sender has closed, or stop
// fires. ok is false once the channel is drained and every sender is gone.
func (c *Channel[T]) Recv(stop StopToken) (v T, ok bool, err error) {
	if err := c.recvQ.wait(stop, c.tryRecv(&v, &ok)); err != nil {
		return zeroOf[T](), false, err
	}
	if ok {
		c.sendQ.wakeupOne()
	}
	return v, ok, nil
}
