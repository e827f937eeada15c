// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package ilias

import "testing"

func TestStreamBuffer_PrepareCommitConsume(t *testing.T) {
	b := NewStreamBuffer()

	dst, err := b.Prepare(5)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	copy(dst, "hello")
	b.Commit(5)

	if got := string(b.Readable()); got != "hello" {
		t.Fatalf("Readable() = %q, want %q", got, "hello")
	}
	b.Consume(3)
	if got := string(b.Readable()); got != "lo" {
		t.Fatalf("Readable() after Consume(3) = %q, want %q", got, "lo")
	}
	if b.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", b.Len())
	}

	dst2, err := b.Prepare(64)
	if err != nil {
		t.Fatalf("Prepare(64): %v", err)
	}
	copy(dst2, "world!!")
	b.Commit(7)
	if got := string(b.Readable()); got != "loworld!!" {
		t.Fatalf("Readable() = %q, want %q", got, "loworld!!")
	}
}

func TestStreamBuffer_LimitEnforced(t *testing.T) {
	b := NewStreamBufferLimit(4)
	if _, err := b.Prepare(4); err != nil {
		t.Fatalf("Prepare(4): %v", err)
	}
	b.Commit(4)
	if _, err := b.Prepare(1); err == nil {
		t.Fatal("expected Prepare to fail once limit is exceeded")
	}
}

func TestIoVecFromBuffer(t *testing.T) {
	if v := IoVecFromBuffer(nil); v.Base != nil || v.Len != 0 {
		t.Fatalf("empty buffer: got %+v", v)
	}
	buf := []byte("abc")
	v := IoVecFromBuffer(buf)
	if v.Len != 3 || v.Base != &buf[0] {
		t.Fatalf("unexpected IoVec: %+v", v)
	}
}
