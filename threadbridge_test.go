// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package ilias

import (
	"errors"
	"testing"
	"time"
)

func TestThread_RunsAndCompletes(t *testing.T) {
	th, err := StartThread(func(ctx *TaskContext) (int, error) {
		return 42, nil
	})
	if err != nil {
		t.Fatalf("StartThread: %v", err)
	}
	v, err := th.Join()
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if v != 42 {
		t.Fatalf("got %d, want 42", v)
	}
	if !th.Done() {
		t.Fatal("expected Done() == true after Join")
	}
}

func TestThread_AwaitForwardsCancellation(t *testing.T) {
	release := make(chan struct{})
	th, err := StartThread(func(ctx *TaskContext) (int, error) {
		select {
		case <-ctx.Stop().Done():
			return 0, &StopError{Reason: ctx.Stop().Reason()}
		case <-release:
			return 1, nil
		}
	})
	if err != nil {
		t.Fatalf("StartThread: %v", err)
	}

	stopSrc := NewStopSource()
	done := make(chan struct{})
	var gotErr error
	go func() {
		_, gotErr = th.Await(stopSrc.Token())
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	stopSrc.RequestStop("caller cancelled")

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Await never returned after forwarded cancellation")
	}

	var stopErr *StopError
	if !errors.As(gotErr, &stopErr) {
		t.Fatalf("expected StopError, got %v", gotErr)
	}
}

func TestThread_Panic(t *testing.T) {
	th, err := StartThread(func(ctx *TaskContext) (int, error) {
		panic("boom")
	})
	if err != nil {
		t.Fatalf("StartThread: %v", err)
	}
	_, err = th.Join()
	if err == nil {
		t.Fatal("expected an error from a panicking thread body")
	}
	var panicErr *PanicError
	if !errors.As(err, &panicErr) {
		t.Fatalf("expected *PanicError, got %v", err)
	}
}
