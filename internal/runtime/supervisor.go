// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"sync"
	"sync/atomic"
)

// ErrProcessKillFailed is returned when the supervised process could not be terminated.
var ErrProcessKillFailed = errors.New("failed to kill process")

type (
	// Process is a started child registered with a Supervisor.
	Process struct {
		cmd       *exec.Cmd
		pid       int
		done      chan struct{}
		waitOnce  sync.Once
		waitErr   error
		cancelled atomic.Bool
	}

	// Supervisor tracks at most one running analysis process.
	Supervisor struct {
		mu          sync.Mutex
		current     *Process
		execCommand ExecCommandFunc
	}

	// SupervisorOption configures a Supervisor.
	SupervisorOption func(*Supervisor)
)

// WithKillCommand sets the command factory used for taskkill on Windows.
func WithKillCommand(fn ExecCommandFunc) SupervisorOption {
	return func(s *Supervisor) { s.execCommand = fn }
}

// NewSupervisor creates an empty Supervisor.
func NewSupervisor(opts ...SupervisorOption) *Supervisor {
	s := &Supervisor{execCommand: exec.CommandContext}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches cmd in its own process group so the whole tree can be
// signalled later. The caller must call Wait.
func Start(cmd *exec.Cmd) (*Process, error) {
	setProcessGroup(cmd)
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &Process{cmd: cmd, pid: cmd.Process.Pid, done: make(chan struct{})}, nil
}

// Pid returns the operating system process id.
func (p *Process) Pid() int { return p.pid }

// Done is closed once Wait has returned.
func (p *Process) Done() <-chan struct{} { return p.done }

// Cancelled reports whether the Supervisor signalled the process while it was
// still running.
func (p *Process) Cancelled() bool { return p.cancelled.Load() }

// Wait waits for the process to exit. It is safe to call more than once.
func (p *Process) Wait() error {
	p.waitOnce.Do(func() {
		p.waitErr = p.cmd.Wait()
		close(p.done)
	})
	<-p.done
	return p.waitErr
}

// Set registers p as the current process. A previously registered process is
// not killed; callers kill it first when that matters.
func (s *Supervisor) Set(p *Process) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = p
}

// Current returns the registered process, or nil.
func (s *Supervisor) Current() *Process {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Clear drops the registration without signalling anything.
func (s *Supervisor) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
}

// Release clears the registration only if p is still the registered process,
// so a run that finishes late cannot unregister its successor.
func (s *Supervisor) Release(p *Process) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != p {
		return false
	}
	s.current = nil
	return true
}

// KillCurrent terminates the registered process tree and clears the slot.
// With nothing registered it is a no-op.
func (s *Supervisor) KillCurrent() error {
	s.mu.Lock()
	p := s.current
	s.current = nil
	s.mu.Unlock()

	if p == nil {
		return nil
	}
	return s.terminate(p)
}

// Kill terminates p whether or not it is registered, clearing the slot if it is.
func (s *Supervisor) Kill(p *Process) error {
	s.Release(p)
	return s.terminate(p)
}

func (s *Supervisor) terminate(p *Process) error {
	select {
	case <-p.done:
		return nil
	default:
	}

	p.cancelled.Store(true)
	slog.Debug("killing process tree", "pid", p.pid)
	if err := s.killTree(p); err != nil {
		return fmt.Errorf("%w: pid %d: %w", ErrProcessKillFailed, p.pid, err)
	}
	return nil
}
