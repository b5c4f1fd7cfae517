// SPDX-License-Identifier: MPL-2.0

package pyenv

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"sync"
	"time"
)

// DefaultProbeTimeout bounds a single --version probe.
const DefaultProbeTimeout = 10 * time.Second

type (
	// ExecCommandFunc is the function signature for creating exec.Cmd.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// Locator finds and caches a verified Python 3 interpreter.
	Locator struct {
		candidates   []Candidate
		minVersion   string
		probeTimeout time.Duration
		env          []string
		execCommand  ExecCommandFunc

		mu     sync.Mutex
		cached *Interpreter
	}

	// Option configures a Locator.
	Option func(*Locator)

	probeResult struct {
		index  int
		interp *Interpreter
		err    error
	}
)

// WithCandidates replaces the platform candidate list. An empty list keeps the default.
func WithCandidates(c []Candidate) Option {
	return func(l *Locator) {
		if len(c) > 0 {
			l.candidates = c
		}
	}
}

// WithMinVersion sets the lowest accepted release, e.g. "3.8".
func WithMinVersion(v string) Option {
	return func(l *Locator) { l.minVersion = v }
}

// WithProbeTimeout bounds each probe.
func WithProbeTimeout(d time.Duration) Option {
	return func(l *Locator) { l.probeTimeout = d }
}

// WithEnv appends KEY=VALUE pairs to the probe environment.
func WithEnv(env []string) Option {
	return func(l *Locator) { l.env = env }
}

// WithExecCommand sets a custom exec command function for testing.
func WithExecCommand(fn ExecCommandFunc) Option {
	return func(l *Locator) { l.execCommand = fn }
}

// NewLocator creates a Locator for the current platform.
func NewLocator(opts ...Option) *Locator {
	l := &Locator{
		candidates:   DefaultCandidates(runtime.GOOS),
		probeTimeout: DefaultProbeTimeout,
		execCommand:  exec.CommandContext,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Candidates returns the probe list in preference order.
func (l *Locator) Candidates() []Candidate {
	return append([]Candidate(nil), l.candidates...)
}

// Locate returns the cached interpreter or probes every candidate concurrently.
// The first candidate to answer as an acceptable Python 3 wins and the other
// probes are cancelled. When nothing qualifies the error is a *NotFoundError.
func (l *Locator) Locate(ctx context.Context) (*Interpreter, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cached != nil {
		return l.cached, nil
	}

	probeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan probeResult, len(l.candidates))
	for i, c := range l.candidates {
		go func() {
			interp, err := l.Probe(probeCtx, c)
			results <- probeResult{index: i, interp: interp, err: err}
		}()
	}

	failures := make([]ProbeError, len(l.candidates))
	for range l.candidates {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("locate python: %w", ctx.Err())
		case r := <-results:
			if r.err == nil {
				slog.Debug("python interpreter located", "command", r.interp.String(), "version", r.interp.Version)
				l.cached = r.interp
				return r.interp, nil
			}
			failures[r.index] = ProbeError{Candidate: l.candidates[r.index], Err: r.err}
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("locate python: %w", err)
	}

	return nil, &NotFoundError{Probes: failures}
}

// Probe runs "<candidate> --version" and validates the answer.
func (l *Locator) Probe(ctx context.Context, c Candidate) (*Interpreter, error) {
	ctx, cancel := context.WithTimeout(ctx, l.probeTimeout)
	defer cancel()

	argv := c.Argv("--version")
	cmd := l.execCommand(ctx, argv[0], argv[1:]...)
	if len(l.env) > 0 {
		if cmd.Env == nil {
			cmd.Env = os.Environ()
		}
		cmd.Env = append(cmd.Env, l.env...)
	}

	// Python 2 printed its version on stderr; read both streams.
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return nil, err
	}

	version, err := parseVersion(out.String())
	if err != nil {
		return nil, err
	}
	if !atLeast(version, l.minVersion) {
		return nil, fmt.Errorf("%w: %s < %s", ErrTooOld, version, l.minVersion)
	}
	return &Interpreter{Candidate: c, Version: version}, nil
}

// Reset drops the cached interpreter so the next Locate probes again.
func (l *Locator) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cached = nil
}
