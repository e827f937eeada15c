// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

//go:build linux || darwin

package ilias

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

func newTestExecutor(t *testing.T) (*Executor, func()) {
	t.Helper()
	exec, err := NewExecutor()
	if err != nil {
		t.Fatalf("NewExecutor: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		_ = exec.Run(ctx)
	}()
	return exec, func() {
		cancel()
		<-runDone
	}
}

func newLoopbackListener(t *testing.T) (fd int, ep IpEndpoint) {
	t.Helper()
	lfd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatalf("socket: %v", err)
	}
	if err := unix.Bind(lfd, &unix.SockaddrInet4{Addr: [4]byte{127, 0, 0, 1}}); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if err := unix.Listen(lfd, 16); err != nil {
		t.Fatalf("listen: %v", err)
	}
	sa, err := unix.Getsockname(lfd)
	if err != nil {
		t.Fatalf("getsockname: %v", err)
	}
	addr := sa.(*unix.SockaddrInet4)
	return lfd, IpEndpoint{Addr4: addr.Addr, Port: uint16(addr.Port)}
}

// TestIOContext_TCPLoopbackRoundTrip is the TCP round-trip scenario: a
// listener accepts one connection, the client writes a message, the
// server echoes it back, and the client reads the echo.
func TestIOContext_TCPLoopbackRoundTrip(t *testing.T) {
	exec, stop := newTestExecutor(t)
	defer stop()
	ctx := NewIOContext(exec)

	lfd, ep := newLoopbackListener(t)
	listener, err := ctx.AddDescriptor(lfd, DescriptorListener)
	if err != nil {
		t.Fatalf("AddDescriptor(listener): %v", err)
	}
	defer ctx.RemoveDescriptor(listener)

	accepted := make(chan RawAcceptResult, 1)
	acceptErr := make(chan error, 1)
	go func() {
		res, err := ctx.Accept(listener).Wait()
		if err != nil {
			acceptErr <- err
			return
		}
		accepted <- res
	}()

	cfd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatalf("socket: %v", err)
	}
	client, err := ctx.AddDescriptor(cfd, DescriptorStream)
	if err != nil {
		t.Fatalf("AddDescriptor(client): %v", err)
	}
	defer ctx.RemoveDescriptor(client)

	if _, err := ctx.Connect(client, ep).Wait(); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	var serverRaw RawAcceptResult
	select {
	case serverRaw = <-accepted:
	case err := <-acceptErr:
		t.Fatalf("Accept: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for Accept")
	}

	server, err := ctx.AddDescriptor(serverRaw.Fd, DescriptorStream)
	if err != nil {
		t.Fatalf("AddDescriptor(server): %v", err)
	}
	defer ctx.RemoveDescriptor(server)

	msg := []byte("hello ilias")
	if _, err := ctx.Write(client, msg).Wait(); err != nil {
		t.Fatalf("Write: %v", err)
	}

	buf := make([]byte, len(msg))
	if _, err := ReadAtLeast(NeverStop, readableFn(func(b MutableBuffer) *Task[int] {
		return ctx.Read(server, b)
	}), buf, len(msg)); err != nil {
		t.Fatalf("ReadAtLeast(server): %v", err)
	}
	if string(buf) != string(msg) {
		t.Fatalf("server got %q, want %q", buf, msg)
	}

	if _, err := ctx.Write(server, buf).Wait(); err != nil {
		t.Fatalf("Write(echo): %v", err)
	}

	echo := make([]byte, len(msg))
	if _, err := ReadAtLeast(NeverStop, readableFn(func(b MutableBuffer) *Task[int] {
		return ctx.Read(client, b)
	}), echo, len(msg)); err != nil {
		t.Fatalf("ReadAtLeast(client): %v", err)
	}
	if string(echo) != string(msg) {
		t.Fatalf("client got echo %q, want %q", echo, msg)
	}
}

// readableFn adapts a plain function to the Readable trait, for tests
// that want to drive ReadAtLeast/ReadAll against a raw IOContext.Read call
// without declaring a named type.
type readableFn func(MutableBuffer) *Task[int]

func (f readableFn) Read(buf MutableBuffer) *Task[int] { return f(buf) }

// TestIOContext_AcceptCancelledBySleep exercises the accept-cancel
// scenario: an Accept racing a timer via whenAny-style cancellation
// observes Canceled instead of blocking forever when nothing ever
// connects.
func TestIOContext_AcceptCancelledBySleep(t *testing.T) {
	exec, stop := newTestExecutor(t)
	defer stop()
	ctx := NewIOContext(exec)

	lfd, _ := newLoopbackListener(t)
	listener, err := ctx.AddDescriptor(lfd, DescriptorListener)
	if err != nil {
		t.Fatalf("AddDescriptor: %v", err)
	}
	defer ctx.RemoveDescriptor(listener)

	acceptTask := ctx.Accept(listener)
	acceptTask.Start()

	time.AfterFunc(50*time.Millisecond, func() {
		acceptTask.Cancel("deadline exceeded")
	})

	_, err = acceptTask.Wait()
	if err == nil {
		t.Fatal("expected Accept to be cancelled, got nil error")
	}
	var ioErr *IOError
	if !errors.As(err, &ioErr) || ioErr.Kind != IOCanceled {
		t.Fatalf("expected IOCanceled, got %v", err)
	}
}

// TestIOContext_RemoveDescriptorIdempotent verifies Property 7: removing a
// descriptor twice is safe, and any operation issued after removal
// observes IOClosed rather than touching freed state.
func TestIOContext_RemoveDescriptorIdempotent(t *testing.T) {
	exec, stop := newTestExecutor(t)
	defer stop()
	ctx := NewIOContext(exec)

	lfd, _ := newLoopbackListener(t)
	listener, err := ctx.AddDescriptor(lfd, DescriptorListener)
	if err != nil {
		t.Fatalf("AddDescriptor: %v", err)
	}

	if err := ctx.RemoveDescriptor(listener); err != nil {
		t.Fatalf("first RemoveDescriptor: %v", err)
	}
	if err := ctx.RemoveDescriptor(listener); err != nil {
		t.Fatalf("second RemoveDescriptor: %v", err)
	}

	_, err = ctx.Accept(listener).Wait()
	if err == nil {
		t.Fatal("expected Accept on removed descriptor to fail")
	}
	var ioErr *IOError
	if !errors.As(err, &ioErr) || ioErr.Kind != IOClosed {
		t.Fatalf("expected IOClosed, got %v", err)
	}
}
