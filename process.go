// Copyright 2026 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package ilias

import (
	"errors"
	"io"
	osexec "os/exec"
)

// ProcessFlags selects which of a child process's standard streams to
// redirect through a Pipe and expose as Readable/Writable.
type ProcessFlags uint8

const (
	RedirectStdin ProcessFlags = 1 << iota
	RedirectStdout
	RedirectStderr
	RedirectAll = RedirectStdin | RedirectStdout | RedirectStderr
)

// Process owns a spawned child and its optional redirected pipe streams.
// There is no third-party process-spawning library anywhere in the
// example corpus this runtime is otherwise grounded on, so this wraps the
// standard library's os/exec directly - see DESIGN.md.
type Process struct {
	exec *Executor
	cmd  *osexec.Cmd

	Stdin  Writable
	Stdout Readable
	Stderr Readable
}

// SpawnProcess starts name with args, wiring up the streams named in
// flags before starting the child so their pipes exist from the first
// instant it can write/read.
func SpawnProcess(exec *Executor, name string, args []string, flags ProcessFlags) (*Process, error) {
	cmd := osexec.Command(name, args...)
	p := &Process{exec: exec, cmd: cmd}

	if flags&RedirectStdin != 0 {
		w, err := cmd.StdinPipe()
		if err != nil {
			return nil, err
		}
		p.Stdin = &pipeWriter{exec: exec, w: w}
	}
	if flags&RedirectStdout != 0 {
		r, err := cmd.StdoutPipe()
		if err != nil {
			return nil, err
		}
		p.Stdout = &pipeReader{exec: exec, r: r}
	}
	if flags&RedirectStderr != 0 {
		r, err := cmd.StderrPipe()
		if err != nil {
			return nil, err
		}
		p.Stderr = &pipeReader{exec: exec, r: r}
	}

	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return p, nil
}

// Pid returns the child's process ID.
func (p *Process) Pid() int {
	if p.cmd.Process == nil {
		return -1
	}
	return p.cmd.Process.Pid
}

// Wait blocks (on its own goroutine, via Spawn) until the child exits,
// resolving with its exit code.
func (p *Process) Wait() *Task[int] {
	return Spawn(p.exec, func(ctx *TaskContext) (int, error) {
		err := p.cmd.Wait()
		if err == nil {
			return p.cmd.ProcessState.ExitCode(), nil
		}
		var exitErr *osexec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return -1, err
	})
}

// Kill sends the child a terminal signal (SIGKILL on unix, TerminateProcess
// on Windows, via os.Process.Kill).
func (p *Process) Kill() error {
	if p.cmd.Process == nil {
		return errors.New("ilias: process not started")
	}
	return p.cmd.Process.Kill()
}

// Detach releases this Process's hold on the child without waiting for or
// killing it; the OS process keeps running independently.
func (p *Process) Detach() error {
	if p.cmd.Process == nil {
		return errors.New("ilias: process not started")
	}
	return p.cmd.Process.Release()
}

// pipeReader adapts a blocking io.ReadCloser (as returned by
// exec.Cmd.StdoutPipe/StderrPipe) into the Readable trait by running each
// read on its own goroutine via Spawn, the same "block only this
// goroutine, not the executor" shape IOContext's operations use - except
// a process pipe is already a plain blocking fd, so there's no
// readiness-polling step needed before the call.
type pipeReader struct {
	exec *Executor
	r    io.ReadCloser
}

func (p *pipeReader) Read(buf MutableBuffer) *Task[int] {
	return Spawn(p.exec, func(ctx *TaskContext) (int, error) {
		n, err := p.r.Read(buf)
		if err != nil {
			if errors.Is(err, io.EOF) {
				if n > 0 {
					return n, nil
				}
				return 0, nil
			}
			return n, err
		}
		return n, nil
	})
}

// pipeWriter adapts a blocking io.WriteCloser (as returned by
// exec.Cmd.StdinPipe) into the Writable trait.
type pipeWriter struct {
	exec *Executor
	w    io.WriteCloser
}

func (p *pipeWriter) Write(buf Buffer) *Task[int] {
	return Spawn(p.exec, func(ctx *TaskContext) (int, error) {
		return p.w.Write(buf)
	})
}

// Flush is a no-op: os/exec's stdin pipe has no userspace buffering to
// flush.
func (p *pipeWriter) Flush() *Task[struct{}] {
	return Spawn(p.exec, func(ctx *TaskContext) (struct{}, error) { return struct{}{}, nil })
}

func (p *pipeWriter) Shutdown() *Task[struct{}] {
	return Spawn(p.exec, func(ctx *TaskContext) (struct{}, error) { return struct{}{}, p.w.Close() })
}
