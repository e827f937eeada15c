// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package ilias

import (
	"context"
	"sync"
)

// Thread starts a worker goroutine with its own Executor and runs a
// TaskFunc on it as a root task, reporting completion to any other task
// (foreign to that worker) that awaits the handle. There is no task
// migration between executors in this model (see the single-threaded
// cooperative scheduling rule), so a Thread is the only way to move work
// onto a second OS thread; the handle itself is what crosses the
// boundary, not the task.
type Thread[T any] struct {
	exec *Executor
	task *Task[T]

	mu        sync.Mutex
	completed bool
	result    T
	err       error
	done      chan struct{}
}

// StartThread creates a fresh Executor (configured by opts, mirroring the
// "executor_kind" parameter - the concrete backend is chosen by platform
// build tags, so the options here only cover scheduling knobs like
// WithFastPathEnabled/WithMetrics), runs it on a dedicated goroutine, and
// spawns fn as that executor's root task. The returned handle is
// immediately awaitable.
func StartThread[T any](fn TaskFunc[T], opts ...ExecutorOption) (*Thread[T], error) {
	exec, err := NewExecutor(opts...)
	if err != nil {
		return nil, err
	}

	th := &Thread[T]{
		exec: exec,
		task: NewTask(exec, fn),
		done: make(chan struct{}),
	}

	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		_ = exec.Run(context.Background())
	}()

	go func() {
		result, err := th.task.Wait()
		th.mu.Lock()
		th.result, th.err, th.completed = result, err, true
		th.mu.Unlock()
		close(th.done)
		_ = exec.Shutdown(context.Background())
		<-runDone
	}()

	th.task.Start()
	return th, nil
}

// Await parks the caller until the worker thread's task completes. A stop
// observed on stop is forwarded to the worker (requesting its task's own
// StopSource to stop) rather than unwinding the await immediately - the
// caller still parks until the worker actually finishes, mirroring the
// "awaiter takes an internal mutex, queries the completed flag... a stop
// on the foreign task forwards to the worker" handshake.
func (th *Thread[T]) Await(stop StopToken) (T, error) {
	select {
	case <-th.done:
	case <-stop.Done():
		th.task.Cancel(stop.Reason())
		<-th.done
	}
	th.mu.Lock()
	defer th.mu.Unlock()
	return th.result, th.err
}

// Join blocks unconditionally until the worker thread's task completes.
// This is the bridge's blocking_join, for callers outside any executor
// (e.g. a program's main goroutine).
func (th *Thread[T]) Join() (T, error) {
	return th.Await(NeverStop)
}

// RequestStop forwards a cancellation request to the worker thread's root
// task, without waiting for it to take effect.
func (th *Thread[T]) RequestStop(reason any) {
	th.task.Cancel(reason)
}

// Done reports whether the worker thread's task has completed.
func (th *Thread[T]) Done() bool {
	th.mu.Lock()
	defer th.mu.Unlock()
	return th.completed
}

// Executor returns the dedicated Executor the worker thread owns, for
// callers that need to register descriptors or submit additional work
// onto it directly (e.g. an IOContext bound to this thread).
func (th *Thread[T]) Executor() *Executor {
	return th.exec
}
