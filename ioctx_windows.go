// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

//go:build windows

package ilias

import "errors"

// DescriptorType tags what kind of native handle a Descriptor wraps.
type DescriptorType int

const (
	DescriptorStream DescriptorType = iota
	DescriptorListener
	DescriptorDatagram
	DescriptorPipe
)

var (
	ErrDescriptorRemoved      = errors.New("ilias: descriptor removed")
	ErrDescriptorAlreadyAdded = errors.New("ilias: descriptor already registered")
)

// IOContext is the Windows counterpart of the epoll/kqueue-backed
// IOContext in ioctx.go. The backend poller on this platform
// (poller_windows.go) only drives the executor's own wakeup mechanism via
// IOCP completion packets - it was never wired to real overlapped
// socket/file I/O, so there is no native non-blocking accept/read/write
// path to build the operation table on without first adding overlapped
// I/O support to the poller itself. Every operation below therefore
// resolves immediately with IOOperationNotSupported rather than silently
// pretending to work; see DESIGN.md for the tracked gap.
type IOContext struct {
	exec *Executor
}

// NewIOContext binds an IOContext to exec.
func NewIOContext(exec *Executor) *IOContext {
	return &IOContext{exec: exec}
}

// Descriptor is the Windows placeholder handle type; it carries only the
// native handle value, since no readiness tracking is implemented.
type Descriptor struct {
	ctx *IOContext
	fd  int
	typ DescriptorType
}

// Fd returns the native handle value.
func (d *Descriptor) Fd() int { return d.fd }

// AddDescriptor records fd without registering it for any readiness
// notification (see IOContext doc comment).
func (c *IOContext) AddDescriptor(fd int, typ DescriptorType) (*Descriptor, error) {
	return &Descriptor{ctx: c, fd: fd, typ: typ}, nil
}

// RemoveDescriptor is a no-op placeholder; always succeeds.
func (c *IOContext) RemoveDescriptor(d *Descriptor) error {
	return nil
}

// Cancel is a no-op placeholder.
func (c *IOContext) Cancel(d *Descriptor) {}

func notSupported(op string) *IOError {
	return &IOError{Op: op, Kind: IOOperationNotSupported}
}

// Read always resolves with IOOperationNotSupported; see IOContext.
func (c *IOContext) Read(d *Descriptor, buf MutableBuffer) *Task[int] {
	return Spawn(c.exec, func(ctx *TaskContext) (int, error) { return 0, notSupported("read") })
}

// Write always resolves with IOOperationNotSupported; see IOContext.
func (c *IOContext) Write(d *Descriptor, buf Buffer) *Task[int] {
	return Spawn(c.exec, func(ctx *TaskContext) (int, error) { return 0, notSupported("write") })
}

// Connect always resolves with IOOperationNotSupported; see IOContext.
func (c *IOContext) Connect(d *Descriptor, ep IpEndpoint) *Task[struct{}] {
	return Spawn(c.exec, func(ctx *TaskContext) (struct{}, error) { return struct{}{}, notSupported("connect") })
}

// RawAcceptResult mirrors the unix variant's shape for API parity.
type RawAcceptResult struct {
	Fd     int
	Remote IpEndpoint
}

// Accept always resolves with IOOperationNotSupported; see IOContext.
func (c *IOContext) Accept(d *Descriptor) *Task[RawAcceptResult] {
	return Spawn(c.exec, func(ctx *TaskContext) (RawAcceptResult, error) {
		return RawAcceptResult{}, notSupported("accept")
	})
}

// RecvFromResult mirrors the unix variant's shape for API parity.
type RecvFromResult struct {
	N    int
	From IpEndpoint
}

// SendTo always resolves with IOOperationNotSupported; see IOContext.
func (c *IOContext) SendTo(d *Descriptor, buf Buffer, flags int, ep IpEndpoint) *Task[int] {
	return Spawn(c.exec, func(ctx *TaskContext) (int, error) { return 0, notSupported("sendto") })
}

// RecvFrom always resolves with IOOperationNotSupported; see IOContext.
func (c *IOContext) RecvFrom(d *Descriptor, buf MutableBuffer, flags int) *Task[RecvFromResult] {
	return Spawn(c.exec, func(ctx *TaskContext) (RecvFromResult, error) {
		return RecvFromResult{}, notSupported("recvfrom")
	})
}

// SendMsg always resolves with IOOperationNotSupported; see IOContext.
func (c *IOContext) SendMsg(d *Descriptor, bufs BufferSequence, flags int) *Task[int] {
	return Spawn(c.exec, func(ctx *TaskContext) (int, error) { return 0, notSupported("sendmsg") })
}

// RecvMsg always resolves with IOOperationNotSupported; see IOContext.
func (c *IOContext) RecvMsg(d *Descriptor, bufs MutableBufferSequence) *Task[int] {
	return Spawn(c.exec, func(ctx *TaskContext) (int, error) { return 0, notSupported("recvmsg") })
}

// Poll always resolves with IOOperationNotSupported; see IOContext.
func (c *IOContext) Poll(d *Descriptor, events IOEvents) *Task[IOEvents] {
	return Spawn(c.exec, func(ctx *TaskContext) (IOEvents, error) { return 0, notSupported("poll") })
}

// ConnectNamedPipe is the Windows-only named-pipe server-side accept
// operation named in the spec's backend notes. Not implemented for the
// reason given in the IOContext doc comment.
func (c *IOContext) ConnectNamedPipe(d *Descriptor) *Task[struct{}] {
	return Spawn(c.exec, func(ctx *TaskContext) (struct{}, error) {
		return struct{}{}, notSupported("connect_named_pipe")
	})
}

// WaitObject is the Windows-only wait-for-handle-signaled operation named
// in the spec's backend notes (RegisterWaitForSingleObject). Not
// implemented for the reason given in the IOContext doc comment.
func (c *IOContext) WaitObject(d *Descriptor) *Task[struct{}] {
	return Spawn(c.exec, func(ctx *TaskContext) (struct{}, error) {
		return struct{}{}, notSupported("wait_object")
	})
}
