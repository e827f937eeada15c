// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package ilias

import (
	"errors"
	"fmt"
	"sync"
)

// ErrGoexit is used to reject a task whose body exits via runtime.Goexit
// rather than returning normally or panicking.
var ErrGoexit = errors.New("ilias: task goroutine exited via runtime.Goexit")

// PanicError wraps a panic value recovered from a Task's body.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("ilias: task panicked: %v", e.Value)
}

// TaskContext is passed to a TaskFunc, giving it access to the Executor it
// is bound to and the StopToken it should observe while running.
type TaskContext struct {
	exec *Executor
	stop StopToken
}

// Executor returns the Executor this task is bound to.
func (c *TaskContext) Executor() *Executor { return c.exec }

// Stop returns the StopToken this task's body should check (or register
// against) to observe cancellation requested by its StopSource, its
// TaskScope, or an ancestor in the stop-token tree.
func (c *TaskContext) Stop() StopToken { return c.stop }

// TaskFunc is the body of a Task[T]. It runs on its own goroutine (Go has
// no stackless coroutines to suspend in place), and is expected to be
// structured around Await calls on sub-tasks and I/O operations, which
// block only that goroutine rather than the owning Executor's thread.
type TaskFunc[T any] func(ctx *TaskContext) (T, error)

// Task is a lazily-started unit of asynchronous work bound to an Executor.
// Creating a Task does not run its body; the body starts on the first call
// to Start or Await, mirroring the C++ model where a coroutine's frame is
// allocated at creation but only begins executing once awaited or
// explicitly started (e.g. via Spawn).
type Task[T any] struct {
	exec *Executor
	fn   TaskFunc[T]
	stop *StopSource

	p     *promise[T]
	entry *registryEntry
	id    uint64

	startOnce sync.Once
}

// NewTask creates a Task bound to exec, running fn once started. The task
// gets its own independent StopSource (see TaskScope to have it share an
// existing one) so Cancel can stop it independently of anything else.
func NewTask[T any](exec *Executor, fn TaskFunc[T]) *Task[T] {
	return newTaskWithStop(exec, fn, NewStopSource())
}

// newTaskWithStop is the shared constructor used by Spawn/TaskScope/
// TaskGroup to bind a task to a caller-supplied StopSource (typically a
// child of a scope's own source) instead of an independent one.
func newTaskWithStop[T any](exec *Executor, fn TaskFunc[T], stop *StopSource) *Task[T] {
	t := &Task[T]{
		exec:  exec,
		fn:    fn,
		stop:  stop,
		p:     newPromise[T](),
		entry: newRegistryEntry(),
	}
	t.entry.cancel = func(err error) { t.complete(zeroOf[T](), err, settleRejected) }
	t.id = exec.registry.track(t.entry)
	return t
}

func zeroOf[T any]() T {
	var z T
	return z
}

// Start begins running the task's body if it has not already started.
// Idempotent: subsequent calls are no-ops. Start never blocks; use Await to
// wait for the result.
func (t *Task[T]) Start() {
	t.startOnce.Do(func() {
		t.exec.spawnWg.Add(1)
		go t.run()
	})
}

func (t *Task[T]) run() {
	defer t.exec.spawnWg.Done()

	completed := false
	defer func() {
		if r := recover(); r != nil {
			t.complete(zeroOf[T](), &PanicError{Value: r}, settleRejected)
			return
		}
		if !completed {
			t.complete(zeroOf[T](), ErrGoexit, settleRejected)
		}
	}()

	ctx := &TaskContext{exec: t.exec, stop: t.stop.Token()}
	v, err := t.fn(ctx)
	completed = true

	switch {
	case err == nil:
		t.complete(v, nil, settleResolved)
	case errors.Is(err, (*StopError)(nil)):
		t.complete(v, err, settleStopped)
	default:
		t.complete(v, err, settleRejected)
	}
}

// complete settles the underlying promise on the executor's own goroutine,
// falling back to direct settlement if the executor has already terminated
// (mirroring the teacher's Promisify fallback-on-shutdown behavior, so a
// task always eventually settles even when submitted too late to queue).
func (t *Task[T]) complete(v T, err error, state settleState) {
	o := outcome[T]{value: v, err: err, state: state}
	settle := func() {
		t.p.settle(o)
		t.entry.markSettled(state)
	}
	if subErr := t.exec.SubmitInternal(Task{Runnable: settle}); subErr != nil {
		settle()
	}
}

// Await starts the task if necessary and blocks the calling goroutine until
// it settles or stop fires, whichever comes first. Observing stop does not
// cancel the task itself; pair Await with RequestStop on the task's own
// StopSource (see Scope/TaskGroup) if that's the desired behavior.
func (t *Task[T]) Await(stop StopToken) (T, error) {
	t.Start()
	ch := t.p.subscribe()
	select {
	case o := <-ch:
		return o.value, o.err
	case <-stop.Done():
		return zeroOf[T](), &StopError{Reason: stop.Reason()}
	}
}

// Wait is Await with no external stop token - it waits unconditionally for
// the task to settle.
func (t *Task[T]) Wait() (T, error) {
	return t.Await(NeverStop)
}

// Cancel requests the task's own StopSource to stop. The task body must
// itself observe ctx.Stop() for this to have any effect on a running body;
// it is always safe to call, including before Start.
func (t *Task[T]) Cancel(reason any) {
	t.stop.RequestStop(reason)
}

// Token returns the StopToken tied to this task's own StopSource.
func (t *Task[T]) Token() StopToken {
	return t.stop.Token()
}

// Done reports whether the task has settled (resolved, rejected, or
// stopped).
func (t *Task[T]) Done() bool {
	return t.p.State() != settlePending
}
