// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package ilias

import "context"

// Spawn creates and immediately starts a Task[T] bound to exec, running fn
// on its own goroutine and settling its result back onto the executor's own
// goroutine. It is the direct entry point into the task runtime for
// existing, non-Task code (e.g. a net.Conn read loop, a database driver
// call) that wants its result to flow through the same await/stop-token
// machinery as native tasks.
func Spawn[T any](exec *Executor, fn TaskFunc[T]) *Task[T] {
	t := NewTask(exec, fn)
	t.Start()
	return t
}

// SpawnContext adapts a context.Context-based function into a Task[T],
// bridging the ambient context.Context cancellation idiom used at a
// module's external boundary with this runtime's native StopToken
// propagation on the inside. ctx.Done firing requests the task's own
// StopSource to stop, and that stop cancels the context.Context passed to
// fn, which is how fn observes it.
func SpawnContext[T any](exec *Executor, ctx context.Context, fn func(ctx context.Context) (T, error)) *Task[T] {
	t := NewTask(exec, func(tc *TaskContext) (T, error) {
		done := tc.Stop().Done()
		childCtx, cancel := context.WithCancel(ctx)
		if done != nil {
			go func() {
				select {
				case <-done:
					cancel()
				case <-childCtx.Done():
				}
			}()
		}
		defer cancel()
		return fn(childCtx)
	})
	t.Start()
	go func() {
		select {
		case <-ctx.Done():
			t.Cancel(ctx.Err())
		case <-t.p.subscribe():
		}
	}()
	return t
}
