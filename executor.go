// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package ilias

import (
	"container/heap"
	"context"
	"errors"
	"log"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Standard errors returned by Executor methods.
var (
	// ErrAlreadyRunning is returned when Run is called on an executor that is
	// already running.
	ErrAlreadyRunning = errors.New("ilias: executor is already running")

	// ErrTerminated is returned when operations are attempted on a
	// terminated executor.
	ErrTerminated = errors.New("ilias: executor has been terminated")

	// ErrNotRunning is returned when operations are attempted on an executor
	// that hasn't been started.
	ErrNotRunning = errors.New("ilias: executor is not running")

	// ErrOverloaded is returned via OnOverload when the external queue
	// exceeds the per-tick processing budget.
	ErrOverloaded = errors.New("ilias: executor is overloaded")

	// ErrReentrantRun is returned when Run is called from within the
	// executor's own goroutine.
	ErrReentrantRun = errors.New("ilias: cannot call Run from within the executor")
)

// executorTestHooks provides injection points for deterministic race
// testing; never set outside test code.
type executorTestHooks struct {
	PrePollSleep    func()
	PrePollAwake    func()
	OnFastPathEntry func()
}

// Executor is the single-threaded cooperative scheduler at the core of the
// runtime: it owns a run loop on exactly one goroutine ("the executor
// thread"), and accepts work submitted from that thread or any other.
//
// Two submission paths exist:
//   - the fast path: when no descriptor has been registered with an
//     IOContext bound to this executor, submissions append to a plain slice
//     and wake the executor via a buffered channel (tens of nanoseconds).
//   - the I/O path: once a descriptor is registered, submissions go through
//     a mutex-guarded chunked queue and wake the executor by writing to an
//     eventfd that the poller is already waiting on (microseconds).
//
// The executor transparently switches between the two as descriptors are
// registered and unregistered; callers never choose a path explicitly.
type Executor struct { //nolint:govet // betteralign:ignore
	_ [0]func() // prevent copying

	registry *registry

	testHooks *executorTestHooks

	// OnOverload, if set, is invoked when the external queue exceeds the
	// per-tick processing budget, so callers can apply backpressure.
	OnOverload func(error)

	state *fastState

	external   *chunkedQueue
	internal   *chunkedQueue
	microtasks *microtaskRing

	timers    timerHeap
	timerSeq  uint64

	poller FastPoller

	stopOnce  sync.Once
	closeOnce sync.Once

	spawnWg sync.WaitGroup // tracks in-flight Spawn goroutines during shutdown

	wakePipe      int
	wakePipeWrite int
	wakeBuf       [8]byte

	fastWakeupCh  chan struct{}
	userIOFDCount atomic.Int32

	tickAnchorMu    sync.RWMutex
	tickAnchor      time.Time
	tickElapsedTime atomic.Int64

	executorGoroutineID atomic.Uint64
	tickCount           uint64

	id uint64

	done chan struct{}

	externalMu sync.Mutex
	internalMu sync.Mutex

	batchBuf [256]Task

	// auxJobs/auxJobsSpare implement the fast-path queue: a slice-swap
	// double buffer (the goja_nodejs eventloop pattern) that avoids the
	// chunked queue's per-chunk bookkeeping when no I/O descriptor is
	// registered.
	auxJobs      []Task
	auxJobsSpare []Task

	wakeUpSignalPending atomic.Uint32

	fastPathEntries atomic.Int64
	fastPathSubmits atomic.Int64

	forceNonBlockingPoll bool

	// StrictMicrotaskOrdering, when true, drains the microtask queue after
	// every timer callback and every external-queue task rather than only
	// between tick phases.
	StrictMicrotaskOrdering bool

	fastPathEnabled atomic.Bool

	logger diagLogger

	metrics *Metrics
}

var executorIDCounter atomic.Uint64

// NewExecutor creates a new Executor, ready to accept Submit/SubmitInternal
// calls and to be started with Run.
func NewExecutor(opts ...ExecutorOption) (*Executor, error) {
	wakeFd, wakeWriteFd, err := createWakeFd(0, EFD_CLOEXEC|EFD_NONBLOCK)
	if err != nil {
		return nil, err
	}

	e := &Executor{
		id:           executorIDCounter.Add(1),
		state:        newFastState(),
		external:     newChunkedQueue(),
		internal:     newChunkedQueue(),
		microtasks:   newMicrotaskRing(),
		registry:     newRegistry(),
		timers:       make(timerHeap, 0),

		wakePipe:      wakeFd,
		wakePipeWrite: wakeWriteFd,

		fastWakeupCh: make(chan struct{}, 1),

		done: make(chan struct{}),
	}
	e.fastPathEnabled.Store(true)

	if err := e.poller.Init(); err != nil {
		_ = unix.Close(wakeFd)
		if wakeWriteFd != wakeFd {
			_ = unix.Close(wakeWriteFd)
		}
		return nil, err
	}

	if err := e.poller.RegisterFD(wakeFd, EventRead, func(IOEvents) {
		e.drainWakeUpPipe()
	}); err != nil {
		_ = e.poller.Close()
		_ = unix.Close(wakeFd)
		if wakeWriteFd != wakeFd {
			_ = unix.Close(wakeWriteFd)
		}
		return nil, err
	}

	for _, opt := range opts {
		opt.applyExecutor(e)
	}

	return e, nil
}

// SetFastPathEnabled enables or disables the fast-path optimization. When
// enabled, tasks submitted from the executor's own goroutine while it is
// StateRunning may execute immediately instead of being queued.
//
// The fast path only ever executes inline when SubmitInternal is called
// from the executor goroutine itself (isLoopThread); calls from any other
// goroutine are always queued, preserving the single-writer guarantee the
// rest of the scheduler depends on.
func (e *Executor) SetFastPathEnabled(enabled bool) {
	e.fastPathEnabled.Store(enabled)
}

// FastPathEntries returns the count of fast-path executions (diagnostics).
func (e *Executor) FastPathEntries() int64 {
	return e.fastPathEntries.Load()
}

// Run runs the executor and blocks until it fully stops, via Shutdown,
// Close, or ctx cancellation. To run it on its own goroutine, use
// `go executor.Run(ctx)`.
func (e *Executor) Run(ctx context.Context) error {
	if e.isExecutorThread() {
		return ErrReentrantRun
	}

	if !e.state.TryTransition(StateAwake, StateRunning) {
		if e.state.Load() == StateTerminated {
			return ErrTerminated
		}
		return ErrAlreadyRunning
	}

	defer close(e.done)

	e.tickAnchorMu.Lock()
	e.tickAnchor = time.Now()
	e.tickAnchorMu.Unlock()
	e.tickElapsedTime.Store(0)

	return e.run(ctx)
}

// Shutdown gracefully shuts down the executor, waiting for queued tasks to
// drain. It blocks until termination completes or ctx expires.
func (e *Executor) Shutdown(ctx context.Context) error {
	var result error
	e.stopOnce.Do(func() {
		result = e.shutdownImpl(ctx)
	})
	if result == nil && e.state.Load() != StateTerminated {
		return ErrTerminated
	}
	return result
}

func (e *Executor) shutdownImpl(ctx context.Context) error {
	for {
		current := e.state.Load()
		if current == StateTerminated || current == StateTerminating {
			return ErrTerminated
		}
		if e.state.TryTransition(current, StateTerminating) {
			if current == StateAwake {
				e.state.Store(StateTerminated)
				e.closeFDs()
				return nil
			}
			e.doWakeup()
			break
		}
	}

	select {
	case <-e.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close immediately terminates the executor without waiting for in-flight
// tasks to drain gracefully.
func (e *Executor) Close() error {
	for {
		current := e.state.Load()
		if current == StateTerminated {
			return ErrTerminated
		}
		if e.state.TryTransition(current, StateTerminating) {
			if current == StateAwake {
				e.state.Store(StateTerminated)
				e.closeFDs()
				return nil
			}
			if current == StateSleeping {
				_ = e.submitWakeup()
			}
			return nil
		}
	}
}

func (e *Executor) run(ctx context.Context) error {
	var osThreadLocked bool

	e.executorGoroutineID.Store(getGoroutineID())
	defer e.executorGoroutineID.Store(0)

	ctxDone := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			e.doWakeup()
		case <-ctxDone:
		}
	}()
	defer close(ctxDone)

	defer func() {
		if osThreadLocked {
			runtime.UnlockOSThread()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			for {
				current := e.state.Load()
				if current == StateTerminating || current == StateTerminated {
					break
				}
				if e.state.TryTransition(current, StateTerminating) {
					if current == StateSleeping {
						e.doWakeup()
					}
					break
				}
			}
			e.shutdown()
			return ctx.Err()
		default:
		}

		if st := e.state.Load(); st == StateTerminating || st == StateTerminated {
			e.shutdown()
			return nil
		}

		// Fast-path: a tight loop for task-only workloads, bypassing tick's
		// full machinery (timers/poll) entirely while nothing needs them.
		if e.fastPathEnabled.Load() && e.userIOFDCount.Load() == 0 && !e.hasTimersPending() && !e.hasInternalTasks() {
			if e.runFastPath(ctx) {
				continue
			}
		}

		// epoll/kqueue require thread affinity; defer locking until the
		// executor actually needs to poll, to avoid that cost in fast path.
		if !osThreadLocked {
			runtime.LockOSThread()
			osThreadLocked = true
		}

		e.tick()
	}
}

func (e *Executor) runFastPath(ctx context.Context) bool {
	e.fastPathEntries.Add(1)
	if e.testHooks != nil && e.testHooks.OnFastPathEntry != nil {
		e.testHooks.OnFastPathEntry()
	}

	e.runAux()

	for {
		select {
		case <-ctx.Done():
			return true
		case <-e.fastWakeupCh:
			e.runAux()
			if e.state.Load() >= StateTerminating {
				return true
			}
			if e.userIOFDCount.Load() > 0 || e.hasTimersPending() || e.hasInternalTasks() {
				return false
			}
		}
	}
}

// runAux drains the fast-path aux queue (auxJobs/auxJobsSpare slice swap)
// and the internal priority queue in one pass.
func (e *Executor) runAux() {
	e.externalMu.Lock()
	jobs := e.auxJobs
	e.auxJobs = e.auxJobsSpare
	e.externalMu.Unlock()

	for i, job := range jobs {
		e.safeExecute(job)
		jobs[i] = Task{}
	}
	e.auxJobsSpare = jobs[:0]

	for {
		e.internalMu.Lock()
		task, ok := e.internal.popLocked()
		e.internalMu.Unlock()
		if !ok {
			break
		}
		e.safeExecute(task)
	}
}

func (e *Executor) hasTimersPending() bool {
	return len(e.timers) > 0
}

func (e *Executor) hasInternalTasks() bool {
	e.internalMu.Lock()
	has := e.internal.lengthLocked() > 0
	e.internalMu.Unlock()
	return has
}

func (e *Executor) shutdown() {
	spawnDone := make(chan struct{})
	go func() {
		e.spawnWg.Wait()
		close(spawnDone)
	}()
	select {
	case <-spawnDone:
	case <-time.After(100 * time.Millisecond):
	}

	e.state.Store(StateTerminated)

	emptyChecks := 0
	const requiredEmptyChecks = 3
	for emptyChecks < requiredEmptyChecks {
		drained := false

		for {
			e.internalMu.Lock()
			task, ok := e.internal.popLocked()
			e.internalMu.Unlock()
			if !ok {
				break
			}
			e.safeExecute(task)
			drained = true
		}

		for {
			e.externalMu.Lock()
			task, ok := e.external.popLocked()
			e.externalMu.Unlock()
			if !ok {
				break
			}
			e.safeExecute(task)
			drained = true
		}

		e.externalMu.Lock()
		jobs := e.auxJobs
		e.auxJobs = e.auxJobsSpare
		e.externalMu.Unlock()
		for i, job := range jobs {
			e.safeExecute(job)
			jobs[i] = Task{}
			drained = true
		}
		e.auxJobsSpare = jobs[:0]

		for {
			fn := e.microtasks.Pop()
			if fn == nil {
				break
			}
			e.safeExecuteFn(fn)
			drained = true
		}

		if drained {
			emptyChecks = 0
		} else {
			emptyChecks++
			runtime.Gosched()
		}
	}

	e.registry.RejectAll(ErrTerminated)

	e.closeFDs()
}

func (e *Executor) tick() {
	e.tickCount++

	e.tickAnchorMu.RLock()
	anchor := e.tickAnchor
	e.tickAnchorMu.RUnlock()
	elapsed := time.Since(anchor)
	e.tickElapsedTime.Store(int64(elapsed))

	e.runTimers()
	e.processInternalQueue()
	e.processExternal()
	e.drainMicrotasks()
	e.poll()
	e.drainMicrotasks()

	e.registry.Scavenge(20)
}

func (e *Executor) processInternalQueue() bool {
	processed := false
	for {
		e.internalMu.Lock()
		task, ok := e.internal.popLocked()
		e.internalMu.Unlock()
		if !ok {
			break
		}
		e.safeExecute(task)
		processed = true
	}
	if processed {
		e.drainMicrotasks()
	}
	return processed
}

func (e *Executor) processExternal() {
	const budget = 1024

	e.externalMu.Lock()
	n := 0
	for n < budget && n < len(e.batchBuf) {
		task, ok := e.external.popLocked()
		if !ok {
			break
		}
		e.batchBuf[n] = task
		n++
	}
	remaining := e.external.lengthLocked()
	e.externalMu.Unlock()

	for i := 0; i < n; i++ {
		e.safeExecute(e.batchBuf[i])
		e.batchBuf[i] = Task{}
		if e.StrictMicrotaskOrdering {
			e.drainMicrotasks()
		}
	}

	if remaining > 0 && e.OnOverload != nil {
		e.OnOverload(ErrOverloaded)
	}
}

func (e *Executor) drainMicrotasks() {
	const budget = 1024
	for i := 0; i < budget; i++ {
		fn := e.microtasks.Pop()
		if fn == nil {
			break
		}
		e.safeExecuteFn(fn)
	}
}

// poll performs blocking I/O poll with fast task-wakeup optimization,
// choosing the channel-based or eventfd-based wait depending on whether any
// descriptor is currently registered.
func (e *Executor) poll() {
	if e.state.Load() != StateRunning {
		return
	}

	forced := e.forceNonBlockingPoll
	e.forceNonBlockingPoll = false

	if e.testHooks != nil && e.testHooks.PrePollSleep != nil {
		e.testHooks.PrePollSleep()
	}

	if !e.state.TryTransition(StateRunning, StateSleeping) {
		return
	}

	e.externalMu.Lock()
	extLen := e.external.lengthLocked()
	e.externalMu.Unlock()

	e.internalMu.Lock()
	intLen := e.internal.lengthLocked()
	e.internalMu.Unlock()

	if extLen > 0 || intLen > 0 || !e.microtasks.IsEmpty() {
		e.state.TryTransition(StateSleeping, StateRunning)
		return
	}

	if e.state.Load() == StateTerminating {
		return
	}

	timeout := e.calculateTimeout()
	if forced {
		timeout = 0
	}

	if e.userIOFDCount.Load() == 0 {
		e.pollFastMode(timeout)
		return
	}

	_, err := e.poller.PollIO(timeout)
	if err != nil {
		e.handlePollError(err)
		return
	}

	if e.testHooks != nil && e.testHooks.PrePollAwake != nil {
		e.testHooks.PrePollAwake()
	}

	e.state.TryTransition(StateSleeping, StateRunning)
}

func (e *Executor) pollFastMode(timeoutMs int) {
	select {
	case <-e.fastWakeupCh:
		e.wakeUpSignalPending.Store(0)
		e.afterPollAwake()
		return
	default:
	}

	if timeoutMs == 0 {
		e.afterPollAwake()
		return
	}

	if timeoutMs >= 1000 && !e.hasTimersPending() {
		<-e.fastWakeupCh
		e.wakeUpSignalPending.Store(0)
		e.afterPollAwake()
		return
	}

	t := time.NewTimer(time.Duration(timeoutMs) * time.Millisecond)
	select {
	case <-e.fastWakeupCh:
		t.Stop()
		e.wakeUpSignalPending.Store(0)
	case <-t.C:
	}
	e.afterPollAwake()
}

func (e *Executor) afterPollAwake() {
	if e.testHooks != nil && e.testHooks.PrePollAwake != nil {
		e.testHooks.PrePollAwake()
	}
	e.state.TryTransition(StateSleeping, StateRunning)
}

func (e *Executor) handlePollError(err error) {
	log.Printf("ilias: CRITICAL: PollIO failed: %v - terminating executor", err)
	if e.state.TryTransition(StateSleeping, StateTerminating) {
		e.shutdown()
	}
}

func (e *Executor) drainWakeUpPipe() {
	for {
		_, err := unix.Read(e.wakePipe, e.wakeBuf[:])
		if err != nil {
			break
		}
	}
	e.wakeUpSignalPending.Store(0)
}

func (e *Executor) submitWakeup() error {
	if e.state.Load() == StateTerminated {
		return ErrTerminated
	}
	var one uint64 = 1
	buf := (*[8]byte)(unsafe.Pointer(&one))[:]
	_, err := unix.Write(e.wakePipeWrite, buf)
	return err
}

func (e *Executor) doWakeup() {
	if e.userIOFDCount.Load() == 0 {
		select {
		case e.fastWakeupCh <- struct{}{}:
		default:
		}
	} else {
		_ = e.submitWakeup()
	}
}

// Submit submits a task to the external queue, for use by any goroutine.
// StateTerminating still accepts submissions so in-flight work can drain;
// only StateTerminated rejects.
func (e *Executor) Submit(task Task) error {
	fastMode := e.fastPathEnabled.Load() && e.userIOFDCount.Load() == 0

	e.externalMu.Lock()

	if e.state.Load() == StateTerminated {
		e.externalMu.Unlock()
		return ErrTerminated
	}

	if fastMode {
		e.fastPathSubmits.Add(1)
		e.auxJobs = append(e.auxJobs, task)
		e.externalMu.Unlock()

		select {
		case e.fastWakeupCh <- struct{}{}:
		default:
		}
		return nil
	}

	e.external.pushLocked(task)
	e.externalMu.Unlock()

	if e.state.Load() == StateSleeping {
		if e.wakeUpSignalPending.CompareAndSwap(0, 1) {
			e.doWakeup()
		}
	}

	return nil
}

// SubmitInternal submits a task to the internal priority queue, which is
// drained ahead of the external queue on every tick. When called from the
// executor's own goroutine while running with the fast path enabled and no
// backlog, the task executes immediately instead of being queued.
func (e *Executor) SubmitInternal(task Task) error {
	if e.fastPathEnabled.Load() && e.state.Load() == StateRunning && e.isExecutorThread() {
		e.externalMu.Lock()
		extLen := e.external.lengthLocked()
		e.externalMu.Unlock()
		if extLen == 0 {
			e.fastPathEntries.Add(1)
			if e.testHooks != nil && e.testHooks.OnFastPathEntry != nil {
				e.testHooks.OnFastPathEntry()
			}
			e.safeExecute(task)
			return nil
		}
	}

	e.internalMu.Lock()
	if e.state.Load() == StateTerminated {
		e.internalMu.Unlock()
		return ErrTerminated
	}
	e.internal.pushLocked(task)
	e.internalMu.Unlock()

	if e.userIOFDCount.Load() == 0 {
		select {
		case e.fastWakeupCh <- struct{}{}:
		default:
		}
		return nil
	}

	if e.state.Load() == StateSleeping {
		if e.wakeUpSignalPending.CompareAndSwap(0, 1) {
			e.doWakeup()
		}
	}

	return nil
}

// Wake attempts to wake the executor from StateSleeping; a no-op in any
// other state.
func (e *Executor) Wake() error {
	if e.state.Load() != StateSleeping {
		return nil
	}
	if e.wakeUpSignalPending.CompareAndSwap(0, 1) {
		e.doWakeup()
	}
	return nil
}

// ScheduleMicrotask enqueues fn to run before the next tick's I/O poll.
func (e *Executor) ScheduleMicrotask(fn func()) error {
	if e.state.Load() == StateTerminated {
		return ErrTerminated
	}
	e.microtasks.Push(fn)
	return nil
}

// RegisterFD registers fd for I/O monitoring and switches the executor into
// I/O-path wakeup mode for as long as at least one descriptor is registered.
func (e *Executor) RegisterFD(fd int, events IOEvents, callback func(events IOEvents)) error {
	err := e.poller.RegisterFD(fd, events, callback)
	if err == nil {
		e.userIOFDCount.Add(1)
		select {
		case e.fastWakeupCh <- struct{}{}:
		default:
		}
		if e.state.Load() == StateSleeping {
			_ = e.submitWakeup()
		}
	}
	return err
}

// UnregisterFD removes fd from monitoring. Once the last descriptor is
// unregistered, the executor reverts to fast-path (channel) wakeup mode.
func (e *Executor) UnregisterFD(fd int) error {
	err := e.poller.UnregisterFD(fd)
	if err == nil {
		e.userIOFDCount.Add(-1)
	}
	return err
}

// ModifyFD updates the events monitored for fd.
func (e *Executor) ModifyFD(fd int, events IOEvents) error {
	return e.poller.ModifyFD(fd, events)
}

// CurrentTickTime returns the monotonic-clock time cached for the current
// tick, safe to use for timer-deadline arithmetic.
func (e *Executor) CurrentTickTime() time.Time {
	e.tickAnchorMu.RLock()
	anchor := e.tickAnchor
	e.tickAnchorMu.RUnlock()

	if anchor.IsZero() {
		return time.Now()
	}
	elapsed := time.Duration(e.tickElapsedTime.Load())
	return anchor.Add(elapsed)
}

// State returns the current executor state.
func (e *Executor) State() ExecutorState {
	return e.state.Load()
}

func (e *Executor) calculateTimeout() int {
	maxDelay := 10 * time.Second

	if when, ok := e.timers.nextDeadline(); ok {
		now := time.Now()
		delay := when.Sub(now)
		if delay < 0 {
			delay = 0
		}
		if delay < maxDelay {
			maxDelay = delay
		}
	}

	if maxDelay > 0 && maxDelay < time.Millisecond {
		return 1
	}
	return int(maxDelay.Milliseconds())
}

func (e *Executor) runTimers() {
	now := e.CurrentTickTime()
	for len(e.timers) > 0 {
		if e.timers[0].when.After(now) {
			break
		}
		t := heap.Pop(&e.timers).(timerEntry)
		e.safeExecute(t.task)

		if e.StrictMicrotaskOrdering {
			e.drainMicrotasks()
		}
	}
}

// ScheduleTimer schedules fn to run after delay has elapsed, measured from
// the executor's current tick time. Returns an error only if the executor
// has already terminated.
func (e *Executor) ScheduleTimer(delay time.Duration, fn func()) error {
	now := e.CurrentTickTime()
	when := now.Add(delay)

	return e.SubmitInternal(Task{Runnable: func() {
		e.timerSeq++
		heap.Push(&e.timers, timerEntry{when: when, task: Task{Runnable: fn}, seq: e.timerSeq})
	}})
}

func (e *Executor) safeExecute(t Task) {
	if t.Runnable == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			e.logPanic(r)
		}
	}()
	if e.metrics != nil {
		start := time.Now()
		t.Runnable()
		e.metrics.recordExecution(time.Since(start))
		return
	}
	t.Runnable()
}

// Metrics returns the executor's diagnostic metrics, or nil if metrics were
// not enabled via WithMetrics.
func (e *Executor) Metrics() *Metrics {
	return e.metrics
}

func (e *Executor) safeExecuteFn(fn func()) {
	if fn == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			e.logPanic(r)
		}
	}()
	fn()
}

func (e *Executor) logPanic(r any) {
	if e.logger != nil {
		e.logger.logTaskPanic(r)
		return
	}
	log.Printf("ilias: task panicked: %v", r)
}

func (e *Executor) closeFDs() {
	e.closeOnce.Do(func() {
		_ = e.poller.Close()
		_ = unix.Close(e.wakePipe)
		if e.wakePipeWrite != e.wakePipe {
			_ = unix.Close(e.wakePipeWrite)
		}
	})
}

func (e *Executor) isExecutorThread() bool {
	id := e.executorGoroutineID.Load()
	if id == 0 {
		return false
	}
	return getGoroutineID() == id
}

// getGoroutineID extracts the current goroutine's numeric ID by parsing the
// "goroutine N [...]" prefix off a partial stack trace. Used only for the
// single-writer thread-affinity check, never exposed publicly.
func getGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] >= '0' && buf[i] <= '9' {
			id = id*10 + uint64(buf[i]-'0')
		} else {
			break
		}
	}
	return id
}
