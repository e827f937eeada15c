// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package ilias

import (
	"context"
	"testing"
)

func TestProcess_EchoRoundTrip(t *testing.T) {
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

	p, err := SpawnProcess(exec, "cat", nil, RedirectStdin|RedirectStdout)
	if err != nil {
		t.Skipf("cat not available: %v", err)
	}

	if _, err := WriteAll(NeverStop, p.Stdin, []byte("hello\n")); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	if _, err := p.Stdin.Shutdown().Wait(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	out, err := ReadToEnd(NeverStop, p.Stdout)
	if err != nil {
		t.Fatalf("ReadToEnd: %v", err)
	}
	if string(out) != "hello\n" {
		t.Fatalf("got %q, want %q", out, "hello\n")
	}

	if code, err := p.Wait().Wait(); err != nil || code != 0 {
		t.Fatalf("Wait: code=%d err=%v", code, err)
	}
}
