// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package ilias

import (
	"golang.org/x/sync/errgroup"
)

// WhenAll waits for every task to settle and returns their results in the
// same order as tasks. On the first task to fail, every other task in the
// group is sent a cancellation request (its own StopSource, not the
// caller's) before WhenAll returns that first error - mirroring
// Promise.all's short-circuit-on-first-rejection behavior while still
// letting in-flight bodies observe the cancellation and clean up.
//
// Grounded on errgroup's wait-for-N-collect-first-error shape.
func WhenAll[T any](tasks ...*Task[T]) ([]T, error) {
	results := make([]T, len(tasks))

	var g errgroup.Group
	for i, t := range tasks {
		i, t := i, t
		g.Go(func() error {
			v, err := t.Wait()
			if err != nil {
				for _, other := range tasks {
					if !other.Done() {
						other.Cancel(err)
					}
				}
				return err
			}
			results[i] = v
			return nil
		})
	}

	err := g.Wait()
	return results, err
}

// WhenAny returns the result of the first task to settle successfully. If
// every task fails, WhenAny returns an *AggregateError wrapping every
// individual failure, matching Promise.any.
func WhenAny[T any](tasks ...*Task[T]) (T, error) {
	type settled struct {
		value T
		err   error
	}
	ch := make(chan settled, len(tasks))
	for _, t := range tasks {
		t := t
		go func() {
			v, err := t.Wait()
			ch <- settled{v, err}
		}()
	}

	errs := make([]error, 0, len(tasks))
	for range tasks {
		s := <-ch
		if s.err == nil {
			for _, other := range tasks {
				if !other.Done() {
					other.Cancel(s.value)
				}
			}
			return s.value, nil
		}
		errs = append(errs, s.err)
	}

	return zeroOf[T](), &AggregateError{Message: "all tasks rejected", Errors: errs}
}
