// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package ilias

import "sync"

// TaskScope owns a set of child tasks that share one StopSource: cancelling
// the scope (explicitly via Cancel, or implicitly when Wait sees a child
// fail) requests every live child to stop, and Wait does not return until
// every child spawned through the scope has settled. This is the structured-
// concurrency building block spec.md's task model needs on top of the bare
// Task[T]: a scope, unlike a loose slice of tasks, guarantees no child
// outlives the block that created it.
type TaskScope struct {
	exec *Executor
	stop *StopSource

	mu       sync.Mutex
	children []done
	closed   bool
}

// done is implemented by *Task[T] for any T, letting TaskScope track
// children of differing result types in one slice.
type done interface {
	Done() bool
	wait() error
}

func (t *Task[T]) wait() error {
	_, err := t.Wait()
	return err
}

// NewTaskScope creates a scope bound to exec. Every task spawned through it
// shares a StopSource that is a child of parent (pass NeverStop's source via
// nil for an unparented scope).
func NewTaskScope(exec *Executor, parent StopToken) *TaskScope {
	var stop *StopSource
	if parent.CanBeStopped() {
		stop = parent.source.NewChild()
	} else {
		stop = NewStopSource()
	}
	return &TaskScope{exec: exec, stop: stop}
}

// Spawn starts fn as a child task of the scope, sharing the scope's
// StopSource. Spawn after the scope has been canceled still starts the task,
// but its TaskContext observes an already-stopped token immediately.
func (s *TaskScope) Spawn(fn TaskFunc[any]) *Task[any] {
	return s.spawn(fn)
}

// SpawnScoped is the generic entry point: use it directly when T isn't any,
// since Go methods cannot introduce their own type parameters.
func SpawnScoped[T any](s *TaskScope, fn TaskFunc[T]) *Task[T] {
	t := newTaskWithStop(s.exec, fn, s.stop)
	t.Start()
	s.mu.Lock()
	s.children = append(s.children, t)
	s.mu.Unlock()
	return t
}

func (s *TaskScope) spawn(fn TaskFunc[any]) *Task[any] {
	return SpawnScoped[any](s, fn)
}

// Cancel requests every child of the scope to stop.
func (s *TaskScope) Cancel(reason any) {
	s.stop.RequestStop(reason)
}

// Token returns the StopToken every child spawned through this scope
// observes.
func (s *TaskScope) Token() StopToken {
	return s.stop.Token()
}

// Wait blocks until every child task spawned so far has settled. If any
// child rejected, Wait cancels the remaining children, waits for them to
// unwind, and returns the first rejection observed in spawn order.
func (s *TaskScope) Wait() error {
	s.mu.Lock()
	children := s.children
	s.closed = true
	s.mu.Unlock()

	var firstErr error
	for _, c := range children {
		if err := c.wait(); err != nil && firstErr == nil {
			firstErr = err
			s.Cancel(err)
		}
	}
	return firstErr
}
