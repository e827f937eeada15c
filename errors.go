// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package ilias

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/sys/unix"
)

// IOKind tags an IOError with a backend-independent category, so callers can
// errors.Is against a single sentinel regardless of whether the underlying
// backend is epoll, io_uring, kqueue, or IOCP.
type IOKind int

const (
	IOUnknown IOKind = iota
	IOEOF
	IOWouldBlock
	IOConnectionReset
	IOConnectionRefused
	IOConnectionAborted
	IOBrokenPipe
	IOTimeout
	IOCanceled
	IOClosed
	IOAddrInUse
	IOAddrNotAvailable
	IONotConnected
	IOInvalidArgument
	IOOperationNotSupported
	IOTooManyOpenFiles
	IOInProgress
	IONoBuffer
	IOMessageTooLarge
	IOAccessDenied
	IOHostUnreachable
	IONetworkUnreachable
	IONetworkDown
	IOWriteZero
)

func (k IOKind) String() string {
	switch k {
	case IOEOF:
		return "EOF"
	case IOWouldBlock:
		return "would block"
	case IOConnectionReset:
		return "connection reset"
	case IOConnectionRefused:
		return "connection refused"
	case IOConnectionAborted:
		return "connection aborted"
	case IOBrokenPipe:
		return "broken pipe"
	case IOTimeout:
		return "timeout"
	case IOCanceled:
		return "canceled"
	case IOClosed:
		return "use of closed descriptor"
	case IOAddrInUse:
		return "address in use"
	case IOAddrNotAvailable:
		return "address not available"
	case IONotConnected:
		return "not connected"
	case IOInvalidArgument:
		return "invalid argument"
	case IOOperationNotSupported:
		return "operation not supported"
	case IOTooManyOpenFiles:
		return "too many open files"
	case IOInProgress:
		return "operation in progress"
	case IONoBuffer:
		return "no buffer space available"
	case IOMessageTooLarge:
		return "message too large"
	case IOAccessDenied:
		return "access denied"
	case IOHostUnreachable:
		return "host unreachable"
	case IONetworkUnreachable:
		return "network unreachable"
	case IONetworkDown:
		return "network down"
	case IOWriteZero:
		return "write returned zero bytes"
	default:
		return "unknown I/O error"
	}
}

// IOError is the uniform error type every IOContext/Descriptor operation
// returns. Op names the failing operation (e.g. "read", "connect"); Kind
// classifies it for errors.Is matching; Err, when non-nil, is the raw
// backend error (a *SystemError on unix, a Win32 error on Windows).
type IOError struct {
	Op   string
	Kind IOKind
	Err  error
}

func (e *IOError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ilias: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("ilias: %s: %s", e.Op, e.Kind)
}

func (e *IOError) Unwrap() error { return e.Err }

// Is matches another *IOError with the same Kind, ignoring Op and Err, so
// callers can write errors.Is(err, &IOError{Kind: IOConnectionReset}). A
// target whose Kind is IOUnknown matches any *IOError.
func (e *IOError) Is(target error) bool {
	var other *IOError
	if errors.As(target, &other) {
		return other.Kind == IOUnknown || other.Kind == e.Kind
	}
	return false
}

// SystemError carries a raw OS-level error code (errno on unix, a Win32
// error code on Windows) alongside the syscall name that produced it, for
// callers that need to inspect the underlying platform error rather than
// just the IOKind classification.
type SystemError struct {
	Syscall string
	Errno   error
}

func (e *SystemError) Error() string {
	return fmt.Sprintf("%s: %v", e.Syscall, e.Errno)
}

func (e *SystemError) Unwrap() error { return e.Errno }

// translateErrno classifies a raw unix errno into an IOError, wrapping it in
// a SystemError so the original errno survives the Unwrap chain. Centralizing
// this here means every IOContext operation in ioctx.go shares one
// errno-to-IOKind table instead of re-deriving it per call site.
func translateErrno(op string, syscallName string, err error) *IOError {
	if err == nil {
		return nil
	}
	kind := IOUnknown
	var errno unix.Errno
	if errors.As(err, &errno) {
		switch errno {
		case unix.EAGAIN, unix.EWOULDBLOCK:
			kind = IOWouldBlock
		case unix.ECONNRESET:
			kind = IOConnectionReset
		case unix.ECONNREFUSED:
			kind = IOConnectionRefused
		case unix.ECONNABORTED:
			kind = IOConnectionAborted
		case unix.EPIPE:
			kind = IOBrokenPipe
		case unix.ETIMEDOUT:
			kind = IOTimeout
		case unix.ECANCELED:
			kind = IOCanceled
		case unix.EBADF:
			kind = IOClosed
		case unix.EADDRINUSE:
			kind = IOAddrInUse
		case unix.EADDRNOTAVAIL:
			kind = IOAddrNotAvailable
		case unix.ENOTCONN:
			kind = IONotConnected
		case unix.EINVAL:
			kind = IOInvalidArgument
		case unix.ENOTSUP, unix.EOPNOTSUPP:
			kind = IOOperationNotSupported
		case unix.EMFILE, unix.ENFILE:
			kind = IOTooManyOpenFiles
		case unix.EINPROGRESS, unix.EALREADY:
			kind = IOInProgress
		case unix.ENOBUFS, unix.ENOMEM:
			kind = IONoBuffer
		case unix.EMSGSIZE:
			kind = IOMessageTooLarge
		case unix.EACCES, unix.EPERM:
			kind = IOAccessDenied
		case unix.EHOSTUNREACH:
			kind = IOHostUnreachable
		case unix.ENETUNREACH:
			kind = IONetworkUnreachable
		case unix.ENETDOWN:
			kind = IONetworkDown
		}
	} else if errors.Is(err, io.EOF) {
		kind = IOEOF
	}
	return &IOError{Op: op, Kind: kind, Err: &SystemError{Syscall: syscallName, Errno: err}}
}

// StopError is defined in stop.go; AggregateError below.

// AggregateError is returned by WhenAny when every task in the group
// rejects. It is kept close to the teacher's ES2022 AggregateError shape
// (Message plus an ordered Errors slice), since nothing about that shape is
// JS-specific - it is just "here are all N reasons this failed."
type AggregateError struct {
	Message string
	Errors  []error
}

func (e *AggregateError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "ilias: all tasks rejected"
}

// Unwrap supports errors.Is/errors.As matching against any individual
// rejection reason (Go 1.20+ multi-error unwrapping).
func (e *AggregateError) Unwrap() []error { return e.Errors }

// TypeError mirrors JavaScript's TypeError: a value was not of the expected
// type or form. ParseIpEndpoint returns it for malformed endpoint strings.
type TypeError struct {
	Cause   error
	Message string
}

func (e *TypeError) Error() string {
	if e.Message == "" {
		return "ilias: type error"
	}
	return e.Message
}

func (e *TypeError) Unwrap() error { return e.Cause }

// RangeError signals a value outside its accepted domain (e.g. a negative
// Semaphore permit count or negative Latch count).
type RangeError struct {
	Cause   error
	Message string
}

func (e *RangeError) Error() string {
	if e.Message == "" {
		return "ilias: range error"
	}
	return e.Message
}

func (e *RangeError) Unwrap() error { return e.Cause }

// TimeoutError is returned by Timeout's decorator when the wrapped task does
// not settle before its deadline.
type TimeoutError struct {
	Cause   error
	Message string
}

func (e *TimeoutError) Error() string {
	if e.Message == "" {
		return "ilias: operation timed out"
	}
	return e.Message
}

func (e *TimeoutError) Unwrap() error { return e.Cause }

// WrapError wraps err with a message, preserving the chain for errors.Is/As.
func WrapError(message string, cause error) error {
	return fmt.Errorf("%s: %w", message, cause)
}
