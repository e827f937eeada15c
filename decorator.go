// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package ilias

import "time"

// Timeout wraps fn so that it is raced against a timer of duration d: if the
// timer fires first, the inner task's own StopSource is canceled and the
// decorated function returns a *TimeoutError instead of the inner result.
//
// This is the Go shape of the C++ library's `task | setTimeout(ms)` pipe
// decorator: since Go has no operator overloading, Timeout takes and returns
// a TaskFunc so it composes with Spawn/NewTask/TaskGroup.Go the same way any
// other TaskFunc does.
func Timeout[T any](fn TaskFunc[T], d time.Duration) TaskFunc[T] {
	return func(ctx *TaskContext) (T, error) {
		inner := newTaskWithStop(ctx.Executor(), fn, NewStopSource())
		inner.Start()

		timer := time.NewTimer(d)
		defer timer.Stop()

		ch := inner.p.subscribe()
		outerDone := ctx.Stop().Done()

		select {
		case o := <-ch:
			return o.value, o.err
		case <-timer.C:
			inner.Cancel(&TimeoutError{})
			<-ch
			return zeroOf[T](), &TimeoutError{}
		case <-outerDone:
			reason := ctx.Stop().Reason()
			inner.Cancel(reason)
			<-ch
			return zeroOf[T](), &StopError{Reason: reason}
		}
	}
}

// Unstoppable wraps fn so that the TaskContext it observes never reports a
// stop request, regardless of what the enclosing scope or caller does. This
// is the Go shape of `task | ignoreCancellation`: useful for cleanup or
// commit-phase work that must run to completion once started.
func Unstoppable[T any](fn TaskFunc[T]) TaskFunc[T] {
	return func(ctx *TaskContext) (T, error) {
		return fn(&TaskContext{exec: ctx.exec, stop: NeverStop})
	}
}
