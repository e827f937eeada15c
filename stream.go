// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package ilias

import (
	"bytes"
	"errors"
)

// Readable is anything that can be asynchronously read into a buffer. A
// zero return with a nil error means EOF, matching the spec's "0 = EOF"
// convention.
type Readable interface {
	Read(buf MutableBuffer) *Task[int]
}

// Writable is anything that can be asynchronously written to.
type Writable interface {
	Write(buf Buffer) *Task[int]
	Flush() *Task[struct{}]
	Shutdown() *Task[struct{}]
}

// StreamClient is a bidirectional, shutdownable byte stream - a TCP/Unix
// socket connection, or any layered stream wrapping one.
type StreamClient interface {
	Readable
	Writable
}

// Listener accepts incoming StreamClient connections.
type Listener interface {
	Accept() *Task[AcceptResult]
}

// AcceptResult is the value produced by a Listener's Accept operation.
type AcceptResult struct {
	Client StreamClient
	Remote IpEndpoint
}

// Layer is implemented by stream wrappers (e.g. a future TLS layer) that
// sit on top of another stream, exposing both the immediate wrapped
// stream and the innermost one.
type Layer interface {
	NextLayer() any
	LowestLayer() any
}

// ErrShortBuffer is returned by ReadAtLeast/ReadAll when the supplied
// buffer cannot satisfy the requested read.
var ErrShortBuffer = errors.New("ilias: short buffer")

// ErrUnexpectedEOF is returned when a required number of bytes could not
// be read before the stream hit EOF.
var ErrUnexpectedEOF = errors.New("ilias: unexpected EOF")

// ErrWriteZero is returned by WriteAll when a Write call reports 0 bytes
// written without an error, which would otherwise loop forever.
var ErrWriteZero = errors.New("ilias: write returned 0 with no error")

// ReadAtLeast reads from r into buf until at least min bytes have been
// read, EOF, or stop fires. It returns the number of bytes copied into
// buf and, if fewer than min were read, ErrUnexpectedEOF (or EOF itself
// if zero bytes were read).
func ReadAtLeast(stop StopToken, r Readable, buf MutableBuffer, min int) (int, error) {
	if len(buf) < min {
		return 0, ErrShortBuffer
	}
	n := 0
	for n < min {
		nn, err := r.Read(buf[n:]).Await(stop)
		n += nn
		if err != nil {
			return n, err
		}
		if nn == 0 {
			if n == 0 {
				return 0, nil
			}
			return n, ErrUnexpectedEOF
		}
	}
	return n, nil
}

// ReadAll reads from r until buf is completely filled, EOF, or stop
// fires. Equivalent to ReadAtLeast(stop, r, buf, len(buf)).
func ReadAll(stop StopToken, r Readable, buf MutableBuffer) (int, error) {
	return ReadAtLeast(stop, r, buf, len(buf))
}

// ReadToEnd reads from r until EOF or stop fires, returning everything
// read.
func ReadToEnd(stop StopToken, r Readable) ([]byte, error) {
	var out bytes.Buffer
	chunk := make([]byte, 4096)
	for {
		n, err := r.Read(chunk).Await(stop)
		if n > 0 {
			out.Write(chunk[:n])
		}
		if err != nil {
			return out.Bytes(), err
		}
		if n == 0 {
			return out.Bytes(), nil
		}
	}
}

// WriteAll writes every byte of buf to w, looping across short writes,
// until stop fires.
func WriteAll(stop StopToken, w Writable, buf Buffer) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := w.Write(buf[total:]).Await(stop)
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, ErrWriteZero
		}
		total += n
	}
	return total, nil
}

// BufStream layers a StreamBuffer over a Readable to provide
// delimiter-based line reading (getline), refilling from the underlying
// stream only when the buffered data doesn't yet contain the delimiter.
type BufStream struct {
	r   Readable
	buf *StreamBuffer
}

// NewBufStream wraps r with read buffering.
func NewBufStream(r Readable) *BufStream {
	return &BufStream{r: r, buf: NewStreamBuffer()}
}

// GetLine reads from the underlying stream until delim is seen, returning
// everything up to and including it. If the stream ends first without delim
// appearing, it returns everything read together with ErrUnexpectedEOF.
func (s *BufStream) GetLine(stop StopToken, delim byte) (string, error) {
	for {
		if idx := bytes.IndexByte(s.buf.Readable(), delim); idx >= 0 {
			line := append([]byte(nil), s.buf.Readable()[:idx+1]...)
			s.buf.Consume(idx + 1)
			return string(line), nil
		}
		dst, err := s.buf.Prepare(4096)
		if err != nil {
			return "", err
		}
		n, err := s.r.Read(dst).Await(stop)
		s.buf.Commit(n)
		if err != nil {
			return "", err
		}
		if n == 0 {
			rest := string(s.buf.Readable())
			s.buf.Consume(s.buf.Len())
			if rest == "" {
				return "", ErrUnexpectedEOF
			}
			return rest, ErrUnexpectedEOF
		}
	}
}
