// Package ilias provides a single-threaded, cooperative asynchronous I/O
// runtime: an Executor that drives generic Task[T] bodies, timers, and I/O
// readiness notifications on one goroutine, coordinated through a
// stop-token cancellation tree instead of a single flat context.Context.
//
// # Architecture
//
// The runtime is built around an [Executor] core that manages task
// scheduling, timer processing, and I/O readiness notification. [Task] is a
// generic unit of asynchronous work: its body runs on its own goroutine
// (Go has no stackless coroutines to suspend in place), but settlement of
// its result always happens back on the Executor's own goroutine, so
// callers observing many tasks never need their own locking.
//
// Structured concurrency is layered on top via [TaskScope] and
// [TaskGroup], and fan-in combinators [WhenAll]/[WhenAny] compose
// independently-spawned tasks the way Promise.all/Promise.any do.
//
// # Platform Support
//
// I/O polling is implemented using platform-native mechanisms:
//   - Linux: epoll
//   - macOS: kqueue (see poller_darwin.go)
//   - Windows: IOCP (documented parity gap; see poller_windows.go)
//
// File descriptor operations ([Executor.RegisterFD], [Executor.UnregisterFD],
// [Executor.ModifyFD]) provide cross-platform I/O readiness notification.
//
// # Thread Safety
//
// The Executor is designed for concurrent access:
//   - [Executor.Submit] and [Executor.SubmitInternal] are safe to call from any goroutine
//   - [Executor.ScheduleMicrotask] is lock-free (MPSC ring buffer)
//   - Timer and FD registration methods are thread-safe
//   - Task settlement occurs on the Executor's own goroutine (enforced automatically)
//
// # Execution Model
//
// The Executor supports a dual-path execution model:
//   - Fast path (~50ns/task): channel-based scheduling for low-latency scenarios
//   - I/O path (~8-15µs): poll-based scheduling when I/O FDs are registered
//
// Work priority ordering within each tick:
//  1. Timer callbacks (earliest deadline first, insertion order on ties)
//  2. Internal queue tasks ([Executor.SubmitInternal])
//  3. External queue tasks ([Executor.Submit])
//  4. Microtasks (drained after the internal queue, after the external
//     batch, and after polling; with StrictMicrotaskOrdering, also after
//     each timer callback and each external task)
//
// # Usage
//
//	exec, err := ilias.NewExecutor()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer exec.Close()
//
//	exec.Submit(ilias.Task{Runnable: func() {
//	    ilias.Spawn(exec, func(ctx *ilias.TaskContext) (int, error) {
//	        return 42, nil
//	    })
//	}})
//
//	if err := exec.Run(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
// # Error Types
//
//   - [AggregateError]: for [WhenAny] when every task rejects (multi-error, Go 1.20+ compatible)
//   - [StopError]: for operations that observe a stop request via the stop-token tree
//   - [IOError], [SystemError]: for classified backend I/O failures
//   - [TypeError], [RangeError]: for argument validation
//   - [TimeoutError]: for the Timeout decorator
//   - [PanicError]: wraps recovered panics from a Task's body
//
// All error types implement the standard [error] interface. All but
// [PanicError] expose their cause through Unwrap ([AggregateError] returns
// every rejection), and [IOError] and [StopError] define Is for kind- and
// type-based matching.
package ilias
