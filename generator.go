// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package ilias

import "sync"

// Yield is passed to a GeneratorFunc, letting it hand a value back to
// whatever is iterating the Generator. Yield blocks until that value has
// been consumed by Next, or returns a *StopError if the generator's
// consumer went away first.
type Yield[T any] func(v T) error

// GeneratorFunc is the body of a Generator[T], structured around calls to
// yield instead of a single return value - the Go shape of the original
// library's yield-coroutine Generator<T>, minus the custom coroutine_handle
// machinery Go doesn't have: here the producer body just runs on its own
// goroutine and hands values across a rendezvous channel.
type GeneratorFunc[T any] func(ctx *TaskContext, yield Yield[T]) error

// Generator produces a sequence of values asynchronously, one at a time,
// pulled by repeated calls to Next. It is the Go realization of the
// original library's yield-based Generator<T>/ilias_foreach construct.
type Generator[T any] struct {
	exec *Executor
	stop *StopSource

	values chan T
	resume chan struct{}
	done   chan struct{}

	startOnce sync.Once
	mu        sync.Mutex
	err       error
	finished  bool
}

// NewGenerator creates a Generator bound to exec and starts fn on its own
// goroutine right away; the body runs until its first yield, which blocks
// until a Next call takes the value.
func NewGenerator[T any](exec *Executor, fn GeneratorFunc[T]) *Generator[T] {
	g := &Generator[T]{
		exec:   exec,
		stop:   NewStopSource(),
		values: make(chan T),
		resume: make(chan struct{}),
		done:   make(chan struct{}),
	}
	g.start(fn)
	return g
}

func (g *Generator[T]) start(fn GeneratorFunc[T]) {
	g.startOnce.Do(func() {
		g.exec.spawnWg.Add(1)
		go func() {
			defer g.exec.spawnWg.Done()
			defer close(g.done)

			yield := func(v T) error {
				select {
				case g.values <- v:
				case <-g.stop.Token().Done():
					return &StopError{Reason: g.stop.Reason()}
				}
				select {
				case <-g.resume:
					return nil
				case <-g.stop.Token().Done():
					return &StopError{Reason: g.stop.Reason()}
				}
			}

			ctx := &TaskContext{exec: g.exec, stop: g.stop.Token()}
			err := fn(ctx, yield)

			g.mu.Lock()
			g.err = err
			g.finished = true
			g.mu.Unlock()
		}()
	})
}

// Next blocks until the generator yields its next value, finishes, or stop
// fires. ok is false once the generator has no more values to produce (err
// holds the generator's final error, if any, in that case).
func (g *Generator[T]) Next(stop StopToken) (value T, ok bool, err error) {
	select {
	case v := <-g.values:
		// The producer is now blocked on its own select waiting for this
		// acknowledgement (or for stop); send, don't skip, so it can
		// proceed to produce the next value or return.
		select {
		case g.resume <- struct{}{}:
		case <-stop.Done():
			return zeroOf[T](), false, &StopError{Reason: stop.Reason()}
		}
		return v, true, nil
	case <-g.done:
		return zeroOf[T](), false, g.finalErr()
	case <-stop.Done():
		return zeroOf[T](), false, &StopError{Reason: stop.Reason()}
	}
}

func (g *Generator[T]) finalErr() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.err
}

// Collect drains the generator fully into a slice, stopping early (and
// returning the partial slice alongside the error) if the generator itself
// errors or stop fires.
func (g *Generator[T]) Collect(stop StopToken) ([]T, error) {
	var out []T
	for {
		v, ok, err := g.Next(stop)
		if !ok {
			return out, err
		}
		out = append(out, v)
	}
}

// Cancel requests the generator's body to stop producing further values.
func (g *Generator[T]) Cancel(reason any) {
	g.stop.RequestStop(reason)
}
