// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

type (
	// ExecCommandFunc is the function signature for creating exec.Cmd.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// Output is the captured result of a finished command.
	Output struct {
		Stdout   string
		Stderr   string
		ExitCode int
	}

	// CommandError is returned when a command cannot start or exits non-zero.
	CommandError struct {
		Argv     []string
		ExitCode int
		Stderr   string
		Err      error
	}

	// Executor builds and runs commands with a shared environment.
	Executor struct {
		execCommand ExecCommandFunc
		env         []string
	}

	// ExecutorOption configures an Executor.
	ExecutorOption func(*Executor)
)

// WithExecCommand sets a custom exec command function for testing.
func WithExecCommand(fn ExecCommandFunc) ExecutorOption {
	return func(e *Executor) { e.execCommand = fn }
}

// WithEnv appends KEY=VALUE pairs to the environment of every command.
func WithEnv(env []string) ExecutorOption {
	return func(e *Executor) { e.env = append(e.env, env...) }
}

// NewExecutor creates an Executor backed by exec.CommandContext.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{execCommand: exec.CommandContext}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Env returns the extra environment applied to every command.
func (e *Executor) Env() []string {
	return append([]string(nil), e.env...)
}

// ExecCommand returns the underlying command factory.
func (e *Executor) ExecCommand() ExecCommandFunc {
	return e.execCommand
}

// Command builds an exec.Cmd for argv without starting it.
func (e *Executor) Command(ctx context.Context, argv []string) *exec.Cmd {
	cmd := e.execCommand(ctx, argv[0], argv[1:]...)
	if len(e.env) > 0 {
		if cmd.Env == nil {
			cmd.Env = os.Environ()
		}
		cmd.Env = append(cmd.Env, e.env...)
	}
	return cmd
}

// Run executes argv to completion. A non-zero exit or a start failure is
// reported as *CommandError; the captured output is returned either way.
func (e *Executor) Run(ctx context.Context, argv []string) (*Output, error) {
	if len(argv) == 0 {
		return nil, errors.New("empty command")
	}

	cmd := e.Command(ctx, argv)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Debug("running command", "cmd", FormatCommand(argv))
	err := cmd.Run()
	out := &Output{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return out, nil
	}

	out.ExitCode = -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = fmt.Errorf("%w: %w", ctxErr, err)
	}
	return out, &CommandError{Argv: argv, ExitCode: out.ExitCode, Stderr: out.Stderr, Err: err}
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s: %v", FormatCommand(e.Argv), e.Err)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + lastLines(s, 5)
	}
	return msg
}

func (e *CommandError) Unwrap() error { return e.Err }

// lastLines keeps the tail of long tool output, where pip puts the actual error.
func lastLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
