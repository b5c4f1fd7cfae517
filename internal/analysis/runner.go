// SPDX-License-Identifier: MPL-2.0

package analysis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ingestkit/ingestkit/internal/provision"
	"github.com/ingestkit/ingestkit/internal/pyenv"
	"github.com/ingestkit/ingestkit/internal/runtime"
)

const (
	msgPythonVerified  = "Python installation verified ✓"
	msgPackageVerified = "GitIngest package verified ✓"
	msgAnalyzingRepo   = "Analyzing repository..."
)

type (
	// InterpreterLocator finds a Python 3 interpreter.
	InterpreterLocator interface {
		Locate(ctx context.Context) (*pyenv.Interpreter, error)
	}

	// EnvironmentProvisioner makes the analysis package importable.
	EnvironmentProvisioner interface {
		Ensure(ctx context.Context, interp *pyenv.Interpreter, projectPath string) (provision.State, error)
	}

	// Runner verifies dependencies and runs analyses, one at a time per Supervisor.
	Runner struct {
		locator     InterpreterLocator
		provisioner EnvironmentProvisioner
		executor    *runtime.Executor
		supervisor  *runtime.Supervisor
		excludes    []string
		scriptDir   string

		mu     sync.Mutex
		interp *pyenv.Interpreter
		states map[string]provision.State
		script string
	}

	// RunnerOption configures a Runner.
	RunnerOption func(*Runner)
)

// WithExcludePatterns adds patterns to the script's built-in exclusions.
func WithExcludePatterns(patterns []string) RunnerOption {
	return func(r *Runner) { r.excludes = append(r.excludes, patterns...) }
}

// WithScriptDir sets where the embedded script is written; the default is the user cache dir.
func WithScriptDir(dir string) RunnerOption {
	return func(r *Runner) { r.scriptDir = dir }
}

// NewRunner wires a Runner. The executor supplies the command factory and
// extra environment for the analysis process.
func NewRunner(locator InterpreterLocator, provisioner EnvironmentProvisioner, executor *runtime.Executor, supervisor *runtime.Supervisor, opts ...RunnerOption) *Runner {
	r := &Runner{
		locator:     locator,
		provisioner: provisioner,
		executor:    executor,
		supervisor:  supervisor,
		states:      make(map[string]provision.State),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// VerifyDependencies locates the interpreter and provisions the package for
// projectPath, appending one success message per step. The interpreter
// message always precedes the package message.
func (r *Runner) VerifyDependencies(ctx context.Context, projectPath string, status *StatusLog) (provision.State, error) {
	if projectPath == "" {
		return provision.State{}, ErrNoWorkspace
	}

	interp, err := r.locator.Locate(ctx)
	if err != nil {
		return provision.State{}, cancellation(ctx, err)
	}
	status.Append(msgPythonVerified, SeveritySuccess)

	state, err := r.provisioner.Ensure(ctx, interp, projectPath)
	if err != nil {
		return provision.State{}, cancellation(ctx, err)
	}
	status.Append(msgPackageVerified, SeveritySuccess)

	r.mu.Lock()
	r.interp = interp
	r.states[filepath.Clean(projectPath)] = state
	r.mu.Unlock()
	return state, nil
}

// Command returns the argv that Analyze would run.
func (r *Runner) Command(state provision.State, target string) ([]string, error) {
	script, err := r.scriptPath()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		return nil, fmt.Errorf("resolve target: %w", err)
	}
	return state.Python.Argv(append([]string{script, abs}, r.excludes...)...), nil
}

// Analyze runs the analysis script against target using the interpreter in
// state. The child is registered with the Supervisor for its whole lifetime;
// killing it (Cancel, or ctx ending) yields ErrCancelled.
func (r *Runner) Analyze(ctx context.Context, state provision.State, target string, label string, status *StatusLog) (*Digest, error) {
	if label == "" {
		label = msgAnalyzingRepo
	}
	status.Append(label, SeverityInfo)

	argv, err := r.Command(state, target)
	if err != nil {
		return nil, &ExecutionError{Message: err.Error(), ExitCode: -1, Err: err}
	}

	if ctx.Err() != nil {
		return nil, cancellation(ctx, ctx.Err())
	}

	// The supervisor, not the context, owns the child's lifetime.
	cmd := r.executor.Command(context.WithoutCancel(ctx), argv)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Debug("starting analysis", "cmd", runtime.FormatCommand(argv))
	proc, err := runtime.Start(cmd)
	if err != nil {
		return nil, &ExecutionError{Message: err.Error(), ExitCode: -1, Err: err}
	}
	r.supervisor.Set(proc)
	defer r.supervisor.Release(proc)

	stop := context.AfterFunc(ctx, func() {
		if err := r.supervisor.Kill(proc); err != nil {
			slog.Warn("could not stop analysis after cancellation", "pid", proc.Pid(), "error", err)
		}
	})
	defer stop()

	waitErr := proc.Wait()
	if proc.Cancelled() {
		return nil, ErrCancelled
	}

	if waitErr != nil {
		exitCode := -1
		var exitErr interface{ ExitCode() int }
		if errors.As(waitErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = fmt.Sprintf("analysis exited with code %d", exitCode)
		}
		return nil, &ExecutionError{Message: msg, ExitCode: exitCode, Err: waitErr}
	}

	if strings.TrimSpace(stdout.String()) == "" {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = "analysis produced no output"
		}
		return nil, &ExecutionError{Message: msg}
	}

	if s := strings.TrimSpace(stderr.String()); s != "" {
		slog.Debug("analysis wrote to stderr", "stderr", s)
	}
	return ParseDigest(stdout.String())
}

// Run verifies dependencies for projectPath, then analyzes target.
func (r *Runner) Run(ctx context.Context, projectPath, target string, status *StatusLog) (*Digest, error) {
	state, err := r.VerifyDependencies(ctx, projectPath, status)
	if err != nil {
		return nil, err
	}
	return r.Analyze(ctx, state, target, AnalyzingLabel(projectPath, target), status)
}

// cancellation reports err as ErrCancelled when ctx has ended, so probing or
// installing that was interrupted settles like a killed analysis.
func cancellation(ctx context.Context, err error) error {
	if ctx.Err() == nil {
		return err
	}
	return fmt.Errorf("%w: %w", ErrCancelled, err)
}

// Cancel kills the running analysis, if any.
func (r *Runner) Cancel() error {
	return r.supervisor.KillCurrent()
}

// Interpreter returns the interpreter verified by the last successful
// VerifyDependencies, or nil.
func (r *Runner) Interpreter() *pyenv.Interpreter {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.interp
}

// State returns the provisioned state cached for projectPath.
func (r *Runner) State(projectPath string) (provision.State, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.states[filepath.Clean(projectPath)]
	return st, ok
}

// AnalyzingLabel is the progress text for analyzing target inside projectPath.
func AnalyzingLabel(projectPath, target string) string {
	if projectPath == "" || sameDir(projectPath, target) {
		return msgAnalyzingRepo
	}
	return fmt.Sprintf("Analyzing folder: %s...", filepath.Base(target))
}

func sameDir(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

func (r *Runner) scriptPath() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.script != "" {
		return r.script, nil
	}

	dir := r.scriptDir
	if dir == "" {
		var err error
		if dir, err = defaultScriptDir(); err != nil {
			return "", fmt.Errorf("locate cache directory: %w", err)
		}
	}
	path, err := materializeScript(dir)
	if err != nil {
		return "", err
	}
	r.script = path
	return path, nil
}
