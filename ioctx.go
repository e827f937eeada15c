// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

//go:build linux || darwin

package ilias

import (
	"errors"
	"sync"

	"golang.org/x/sys/unix"
)

// DescriptorType tags what kind of native handle a Descriptor wraps. The
// type is recorded on the Descriptor only; neither AddDescriptor nor the
// operations check it, so e.g. Accept on a DescriptorStream is not
// rejected up front.
type DescriptorType int

const (
	DescriptorStream DescriptorType = iota
	DescriptorListener
	DescriptorDatagram
	DescriptorPipe
)

var (
	// ErrDescriptorRemoved is reported (wrapped in an *IOError with Kind
	// IOClosed) by any operation racing RemoveDescriptor.
	ErrDescriptorRemoved = errors.New("ilias: descriptor removed")

	// ErrDescriptorAlreadyAdded is returned by AddDescriptor when fd is
	// already registered with this IOContext.
	ErrDescriptorAlreadyAdded = errors.New("ilias: descriptor already registered")
)

// IOContext owns the registration of native descriptors with an Executor's
// poller (epoll/kqueue, reactor-style) and issues the awaitable
// read/write/connect/accept/... operation surface against them. An
// IOContext does not own a backend handle of its own; it delegates
// directly to the Executor it's bound to, since the Executor already owns
// exactly one FastPoller per the single-threaded model.
type IOContext struct {
	exec *Executor
}

// NewIOContext binds an IOContext to exec.
func NewIOContext(exec *Executor) *IOContext {
	return &IOContext{exec: exec}
}

// Descriptor is an opaque, registered handle to a native file descriptor,
// returned by AddDescriptor. Every IOContext operation takes one.
type Descriptor struct {
	ctx *IOContext
	fd  int
	typ DescriptorType

	mu      sync.Mutex
	removed bool
	events  IOEvents

	readReady  chan struct{}
	writeReady chan struct{}
}

// Fd returns the native descriptor value, for callers that need to hand it
// to code outside this package (e.g. wrapping it as an os.File).
func (d *Descriptor) Fd() int { return d.fd }

// AddDescriptor registers fd with the backend, switching it to
// non-blocking mode (required by the reactor model: operations below
// perform the syscall themselves and only suspend on EAGAIN/EWOULDBLOCK).
// Fails if fd is already registered.
func (c *IOContext) AddDescriptor(fd int, typ DescriptorType) (*Descriptor, error) {
	if err := unix.SetNonblock(fd, true); err != nil {
		return nil, translateErrno("add_descriptor", "setnonblock", err)
	}
	d := &Descriptor{
		ctx:        c,
		fd:         fd,
		typ:        typ,
		readReady:  make(chan struct{}, 1),
		writeReady: make(chan struct{}, 1),
		events:     EventRead,
	}
	if err := c.exec.RegisterFD(fd, EventRead, d.dispatch); err != nil {
		if errors.Is(err, ErrFDAlreadyRegistered) {
			return nil, ErrDescriptorAlreadyAdded
		}
		return nil, err
	}
	return d, nil
}

// dispatch runs on the Executor's own goroutine (called from FastPoller's
// PollIO), so it must never block; it only flips the readiness channels
// the blocked operation goroutines are waiting on.
func (d *Descriptor) dispatch(ev IOEvents) {
	if ev&(EventRead|EventError|EventHangup) != 0 {
		select {
		case d.readReady <- struct{}{}:
		default:
		}
	}
	if ev&(EventWrite|EventError|EventHangup) != 0 {
		select {
		case d.writeReady <- struct{}{}:
		default:
		}
	}
}

// RemoveDescriptor cancels every pending operation on d (they observe
// ErrDescriptorRemoved/IOClosed) and unregisters it from the backend.
// Never blocks, and is safe to call more than once (Property: descriptor
// removal idempotence).
func (c *IOContext) RemoveDescriptor(d *Descriptor) error {
	d.mu.Lock()
	if d.removed {
		d.mu.Unlock()
		return nil
	}
	d.removed = true
	d.mu.Unlock()

	err := c.exec.UnregisterFD(d.fd)
	c.wake(d)
	if err != nil && !errors.Is(err, ErrFDNotRegistered) {
		return err
	}
	return nil
}

// Cancel delivers one wakeup per direction to operations parked on d,
// without unregistering it. A woken operation re-issues its syscall and
// parks again if d is still not ready, so Cancel does not make pending
// operations fail; operations end early only through their own task's
// StopToken or through RemoveDescriptor.
func (c *IOContext) Cancel(d *Descriptor) {
	c.wake(d)
}

func (c *IOContext) wake(d *Descriptor) {
	select {
	case d.readReady <- struct{}{}:
	default:
	}
	select {
	case d.writeReady <- struct{}{}:
	default:
	}
}

// ensureEvents grows d's registered interest set to include want,
// re-arming the backend via ModifyFD. Interest is never shrunk, trading a
// little unnecessary wakeup traffic on a descriptor that has both read and
// written at least once for simplicity (see DESIGN.md).
func (d *Descriptor) ensureEvents(want IOEvents) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.removed {
		return ErrDescriptorRemoved
	}
	if d.events&want == want {
		return nil
	}
	d.events |= want
	return d.ctx.exec.ModifyFD(d.fd, d.events)
}

func (d *Descriptor) waitReady(stop StopToken, want IOEvents, ready <-chan struct{}) error {
	if err := d.ensureEvents(want); err != nil {
		return err
	}
	select {
	case <-ready:
		d.mu.Lock()
		removed := d.removed
		d.mu.Unlock()
		if removed {
			// Pass the wakeup on so every other parked waiter sees the
			// removal too.
			d.ctx.wake(d)
			return ErrDescriptorRemoved
		}
		return nil
	case <-stop.Done():
		return &StopError{Reason: stop.Reason()}
	}
}

func (d *Descriptor) waitReadable(stop StopToken) error { return d.waitReady(stop, EventRead, d.readReady) }
func (d *Descriptor) waitWritable(stop StopToken) error { return d.waitReady(stop, EventWrite, d.writeReady) }

func isAgain(err error) bool {
	return errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK)
}

// ioErrFromWait classifies the error returned by waitReadable/waitWritable
// (which is never itself an *IOError) into the uniform *IOError surface
// every operation reports.
func ioErrFromWait(op string, err error) *IOError {
	if errors.Is(err, ErrDescriptorRemoved) {
		return &IOError{Op: op, Kind: IOClosed, Err: err}
	}
	var stopErr *StopError
	if errors.As(err, &stopErr) {
		return &IOError{Op: op, Kind: IOCanceled, Err: err}
	}
	return &IOError{Op: op, Kind: IOUnknown, Err: err}
}

// Read reads into buf from d, resuming once at least one byte is
// available, the stream hits EOF (0, nil), or the task's stop token fires.
func (c *IOContext) Read(d *Descriptor, buf MutableBuffer) *Task[int] {
	return Spawn(c.exec, func(ctx *TaskContext) (int, error) {
		for {
			n, err := readFD(d.fd, buf)
			if err == nil {
				return n, nil
			}
			if isAgain(err) {
				if werr := d.waitReadable(ctx.Stop()); werr != nil {
					return 0, ioErrFromWait("read", werr)
				}
				continue
			}
			return 0, translateErrno("read", "read", err)
		}
	})
}

// Write writes buf to d, resuming once at least one byte has been
// accepted by the kernel (short writes are not retried here; see
// WriteAll in stream.go for the looping helper).
func (c *IOContext) Write(d *Descriptor, buf Buffer) *Task[int] {
	return Spawn(c.exec, func(ctx *TaskContext) (int, error) {
		for {
			n, err := writeFD(d.fd, buf)
			if err == nil {
				return n, nil
			}
			if isAgain(err) {
				if werr := d.waitWritable(ctx.Stop()); werr != nil {
					return 0, ioErrFromWait("write", werr)
				}
				continue
			}
			return 0, translateErrno("write", "write", err)
		}
	})
}

// Connect completes once the TCP/SOCK handshake on d (a socket opened
// SOCK_NONBLOCK) finishes, following the standard nonblocking-connect
// protocol: issue connect, wait writable on EINPROGRESS, then read
// SO_ERROR to discover the real outcome.
func (c *IOContext) Connect(d *Descriptor, ep IpEndpoint) *Task[struct{}] {
	return Spawn(c.exec, func(ctx *TaskContext) (struct{}, error) {
		sa := endpointToSockaddr(ep)
		err := unix.Connect(d.fd, sa)
		if err != nil && !isAgain(err) && !errors.Is(err, unix.EINPROGRESS) && !errors.Is(err, unix.EALREADY) {
			return struct{}{}, translateErrno("connect", "connect", err)
		}
		if err != nil {
			if werr := d.waitWritable(ctx.Stop()); werr != nil {
				return struct{}{}, ioErrFromWait("connect", werr)
			}
			errno, gerr := unix.GetsockoptInt(d.fd, unix.SOL_SOCKET, unix.SO_ERROR)
			if gerr == nil && errno != 0 {
				return struct{}{}, translateErrno("connect", "getsockopt(SO_ERROR)", unix.Errno(errno))
			}
		}
		return struct{}{}, nil
	})
}

// RawAcceptResult is the value produced by IOContext.Accept: a raw native
// handle (not yet registered with any IOContext) plus the remote peer's
// address.
type RawAcceptResult struct {
	Fd     int
	Remote IpEndpoint
}

// Accept completes with a new connected socket's native handle once one
// is available on listening descriptor d. The returned Fd is not
// registered with any IOContext; callers that want to perform further
// async I/O on it must AddDescriptor it themselves.
func (c *IOContext) Accept(d *Descriptor) *Task[RawAcceptResult] {
	return Spawn(c.exec, func(ctx *TaskContext) (RawAcceptResult, error) {
		for {
			nfd, sa, err := unix.Accept4(d.fd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
			if err == nil {
				return RawAcceptResult{Fd: nfd, Remote: sockaddrToEndpoint(sa)}, nil
			}
			if isAgain(err) {
				if werr := d.waitReadable(ctx.Stop()); werr != nil {
					return RawAcceptResult{}, ioErrFromWait("accept", werr)
				}
				continue
			}
			return RawAcceptResult{}, translateErrno("accept", "accept4", err)
		}
	})
}

// RecvFromResult is the value produced by IOContext.RecvFrom.
type RecvFromResult struct {
	N    int
	From IpEndpoint
}

// SendTo sends a single datagram to ep on socket d.
func (c *IOContext) SendTo(d *Descriptor, buf Buffer, flags int, ep IpEndpoint) *Task[int] {
	return Spawn(c.exec, func(ctx *TaskContext) (int, error) {
		sa := endpointToSockaddr(ep)
		for {
			err := unix.Sendto(d.fd, buf, flags, sa)
			if err == nil {
				return len(buf), nil
			}
			if isAgain(err) {
				if werr := d.waitWritable(ctx.Stop()); werr != nil {
					return 0, ioErrFromWait("sendto", werr)
				}
				continue
			}
			return 0, translateErrno("sendto", "sendto", err)
		}
	})
}

// RecvFrom receives a single datagram from socket d.
func (c *IOContext) RecvFrom(d *Descriptor, buf MutableBuffer, flags int) *Task[RecvFromResult] {
	return Spawn(c.exec, func(ctx *TaskContext) (RecvFromResult, error) {
		for {
			n, _, _, from, err := unix.Recvmsg(d.fd, buf, nil, flags)
			if err == nil {
				return RecvFromResult{N: n, From: sockaddrToEndpoint(from)}, nil
			}
			if isAgain(err) {
				if werr := d.waitReadable(ctx.Stop()); werr != nil {
					return RecvFromResult{}, ioErrFromWait("recvfrom", werr)
				}
				continue
			}
			return RecvFromResult{}, translateErrno("recvfrom", "recvmsg", err)
		}
	})
}

// SendMsg writes a vectored message (scatter/gather write) to d.
func (c *IOContext) SendMsg(d *Descriptor, bufs BufferSequence, flags int) *Task[int] {
	return Spawn(c.exec, func(ctx *TaskContext) (int, error) {
		for {
			n, err := unix.Writev(d.fd, bufs)
			if err == nil {
				return n, nil
			}
			if isAgain(err) {
				if werr := d.waitWritable(ctx.Stop()); werr != nil {
					return 0, ioErrFromWait("sendmsg", werr)
				}
				continue
			}
			return 0, translateErrno("sendmsg", "writev", err)
		}
	})
}

// RecvMsg reads a vectored message (scatter/gather read) from d.
func (c *IOContext) RecvMsg(d *Descriptor, bufs MutableBufferSequence) *Task[int] {
	return Spawn(c.exec, func(ctx *TaskContext) (int, error) {
		for {
			n, err := unix.Readv(d.fd, bufs)
			if err == nil {
				return n, nil
			}
			if isAgain(err) {
				if werr := d.waitReadable(ctx.Stop()); werr != nil {
					return 0, ioErrFromWait("recvmsg", werr)
				}
				continue
			}
			return 0, translateErrno("recvmsg", "readv", err)
		}
	})
}

// Poll waits for the requested events on d without performing any syscall
// of its own, using the same readiness wait the other operations park on.
// It waits for each requested event in turn (readability first, then
// writability) and completes once every requested event has been
// observed; it does not complete on the first of several.
func (c *IOContext) Poll(d *Descriptor, events IOEvents) *Task[IOEvents] {
	return Spawn(c.exec, func(ctx *TaskContext) (IOEvents, error) {
		var got IOEvents
		if events&EventRead != 0 {
			if err := d.waitReadable(ctx.Stop()); err != nil {
				return 0, ioErrFromWait("poll", err)
			}
			got |= EventRead
		}
		if events&EventWrite != 0 {
			if err := d.waitWritable(ctx.Stop()); err != nil {
				return 0, ioErrFromWait("poll", err)
			}
			got |= EventWrite
		}
		return got, nil
	})
}

func endpointToSockaddr(ep IpEndpoint) unix.Sockaddr {
	if ep.V6 {
		return &unix.SockaddrInet6{Port: int(ep.Port), Addr: ep.Addr6}
	}
	return &unix.SockaddrInet4{Port: int(ep.Port), Addr: ep.Addr4}
}

func sockaddrToEndpoint(sa unix.Sockaddr) IpEndpoint {
	switch v := sa.(type) {
	case *unix.SockaddrInet4:
		return IpEndpoint{Addr4: v.Addr, Port: uint16(v.Port)}
	case *unix.SockaddrInet6:
		return IpEndpoint{Addr6: v.Addr, Port: uint16(v.Port), V6: true}
	default:
		return IpEndpoint{}
	}
}
