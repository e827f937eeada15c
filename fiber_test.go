// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package ilias

import (
	"context"
	"testing"
	"time"
)

func TestFiber_AwaitsStacklessTask(t *testing.T) {
	exec, err := NewExecutor()
	if err != nil {
		t.Fatalf("NewExecutor: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		_ = exec.Run(ctx)
	}()
	defer func() { cancel(); <-runDone }()

	f := StartFiber(exec, func(fc *FiberContext) error {
		inner := Spawn(fc.Executor(), func(tc *TaskContext) (int, error) {
			return 7, nil
		})
		v, err := FiberAwait(fc, inner)
		if err != nil {
			return err
		}
		if v != 7 {
			t.Errorf("fiber got %d, want 7", v)
		}
		return nil
	})

	if err := f.Wait(); err != nil {
		t.Fatalf("Fiber.Wait: %v", err)
	}
	if f.Stopped() {
		t.Fatal("fiber should have completed normally, not stopped")
	}
}

func TestFiber_CancelUnwindsViaAwait(t *testing.T) {
	exec, err := NewExecutor()
	if err != nil {
		t.Fatalf("NewExecutor: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		_ = exec.Run(ctx)
	}()
	defer func() { cancel(); <-runDone }()

	reached := make(chan struct{})
	f := StartFiber(exec, func(fc *FiberContext) error {
		never := NewTask(fc.Executor(), func(tc *TaskContext) (int, error) {
			<-tc.Stop().Done()
			return 0, &StopError{Reason: tc.Stop().Reason()}
		})
		close(reached)
		_, err := FiberAwait(fc, never)
		t.Errorf("FiberAwait should have unwound via panic, got err=%v", err)
		return nil
	})

	<-reached
	time.Sleep(10 * time.Millisecond)
	f.Cancel("timeout")

	if err := f.Wait(); err == nil {
		t.Fatal("expected an error from a cancelled fiber")
	}
	if !f.Stopped() {
		t.Fatal("expected Stopped() == true after cancellation")
	}
}
