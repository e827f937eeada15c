// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package ilias

import "sync"

// TaskGroup is TaskScope specialized to a single result type T: every task
// spawned through it returns the same T, and Wait collects every result
// alongside the first error, rather than discarding results the way
// TaskScope.Wait does. This is the homogeneous-fan-out counterpart to
// TaskScope, grounded on errgroup.Group's "wait for N, collect first error"
// shape but additionally keeping each task's value.
type TaskGroup[T any] struct {
	exec *Executor
	stop *StopSource

	mu       sync.Mutex
	children []*Task[T]
}

// NewTaskGroup creates a group bound to exec whose children share a
// StopSource descending from parent.
func NewTaskGroup[T any](exec *Executor, parent StopToken) *TaskGroup[T] {
	var stop *StopSource
	if parent.CanBeStopped() {
		stop = parent.source.NewChild()
	} else {
		stop = NewStopSource()
	}
	return &TaskGroup[T]{exec: exec, stop: stop}
}

// Go starts fn as a child of the group.
func (g *TaskGroup[T]) Go(fn TaskFunc[T]) *Task[T] {
	t := newTaskWithStop(g.exec, fn, g.stop)
	t.Start()
	g.mu.Lock()
	g.children = append(g.children, t)
	g.mu.Unlock()
	return t
}

// Cancel requests every child of the group to stop.
func (g *TaskGroup[T]) Cancel(reason any) {
	g.stop.RequestStop(reason)
}

// Token returns the StopToken every child spawned through this group
// observes.
func (g *TaskGroup[T]) Token() StopToken {
	return g.stop.Token()
}

// Wait blocks until every child spawned so far has settled, returning their
// results in spawn order alongside the first error seen (which also
// triggers Cancel on the remaining children, same as TaskScope.Wait).
func (g *TaskGroup[T]) Wait() ([]T, error) {
	g.mu.Lock()
	children := g.children
	g.mu.Unlock()

	results := make([]T, len(children))
	var firstErr error
	for i, c := range children {
		v, err := c.Wait()
		results[i] = v
		if err != nil && firstErr == nil {
			firstErr = err
			g.Cancel(err)
		}
	}
	return results, firstErr
}
