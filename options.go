// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package ilias

// ExecutorOption configures an Executor at construction time, via
// NewExecutor. Each option mutates the already-constructed Executor
// directly, since some options (WithMetrics) allocate state that the hot
// path checks by nil-ness rather than by a separate "enabled" flag.
type ExecutorOption interface {
	applyExecutor(e *Executor)
}

type executorOptionFunc func(e *Executor)

func (f executorOptionFunc) applyExecutor(e *Executor) { f(e) }

// WithStrictMicrotaskOrdering sets whether microtasks are drained after
// individual tasks for stricter ordering.
// When enabled, microtasks are drained after every timer callback and every
// task taken from the external queue; internal-queue tasks and fast-path
// submissions are not each followed by a drain.
// When disabled (default), microtasks are drained in batches for better performance.
func WithStrictMicrotaskOrdering(enabled bool) ExecutorOption {
	return executorOptionFunc(func(e *Executor) {
		e.StrictMicrotaskOrdering = enabled
	})
}

// WithFastPathEnabled sets the executor's initial fast-path state. The fast
// path is enabled by default; disabling it forces every submission through
// the mutex-guarded chunked queue, which is occasionally useful for
// deterministic test ordering.
func WithFastPathEnabled(enabled bool) ExecutorOption {
	return executorOptionFunc(func(e *Executor) {
		e.fastPathEnabled.Store(enabled)
	})
}

// WithMetrics enables runtime metrics collection on the Executor.
// When enabled, metrics can be accessed via Executor.Metrics.
// This adds minimal overhead (record latency after each task); for
// zero-allocation hot paths, leave metrics disabled in production.
func WithMetrics(enabled bool) ExecutorOption {
	return executorOptionFunc(func(e *Executor) {
		if enabled {
			e.metrics = &Metrics{}
		} else {
			e.metrics = nil
		}
	})
}

// WithLogger installs a diagLogger used to report recovered task panics.
// Without one, panics are reported via the standard log package.
func WithLogger(logger diagLogger) ExecutorOption {
	return executorOptionFunc(func(e *Executor) {
		e.logger = logger
	})
}

// WithOnOverload installs a callback invoked when the external submission
// queue exceeds its per-tick processing budget, so callers can apply
// backpressure upstream.
func WithOnOverload(fn func(error)) ExecutorOption {
	return executorOptionFunc(func(e *Executor) {
		e.OnOverload = fn
	})
}
