// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package ilias

import (
	"fmt"
	"log/slog"

	"github.com/joeycumines/logiface"
	islog "github.com/joeycumines/logiface-slog"
)

// diagLogger receives diagnostic events the executor can't return to a
// caller directly, chiefly panics recovered from task/timer callbacks.
// WithLogger installs one; without it, Executor falls back to the standard
// log package.
type diagLogger interface {
	logTaskPanic(r any)
}

// Logger adapts a logiface.Logger, backed by log/slog, to diagLogger. It's
// the recommended choice for anything beyond the bare log.Printf fallback,
// since structured fields (and whatever sink the embedded slog.Handler
// forwards to) come for free.
type Logger struct {
	l *logiface.Logger[*islog.Event]
}

// NewLogger builds a Logger that writes through the given slog.Handler.
func NewLogger(handler slog.Handler, opts ...islog.Option) *Logger {
	return &Logger{l: logiface.New[*islog.Event](islog.NewLogger(handler, opts...))}
}

func (lg *Logger) logTaskPanic(r any) {
	if lg == nil || lg.l == nil {
		return
	}
	lg.l.Err(asError(r)).
		Str("event", "task_panic").
		Log("ilias: task panicked")
}

func asError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("%v", r)
}
