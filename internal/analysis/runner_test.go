// SPDX-License-Identifier: MPL-2.0

package analysis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/ingestkit/ingestkit/internal/provision"
	"github.com/ingestkit/ingestkit/internal/pyenv"
	"github.com/ingestkit/ingestkit/internal/runtime"
	"github.com/ingestkit/ingestkit/internal/testutil"
)

const validDigest = `{"summary":"Directory: demo\nFiles analyzed: 2","tree":"demo/\n  a.go","content":"=== a.go ===\npackage a"}`

func TestHelperProcess(t *testing.T) { testutil.RunHelperProcess() }

type (
	stubLocator struct {
		interp *pyenv.Interpreter
		err    error
	}

	stubProvisioner struct {
		state provision.State
		err   error
		calls []string
	}

	// blockingProvisioner stands in for a long pip install: it only returns
	// once ctx ends, the way Provisioner.Ensure reports it.
	blockingProvisioner struct {
		started chan struct{}
	}
)

func (s *stubLocator) Locate(context.Context) (*pyenv.Interpreter, error) {
	return s.interp, s.err
}

func (s *stubProvisioner) Ensure(_ context.Context, _ *pyenv.Interpreter, projectPath string) (provision.State, error) {
	s.calls = append(s.calls, projectPath)
	return s.state, s.err
}

func (b *blockingProvisioner) Ensure(ctx context.Context, _ *pyenv.Interpreter, _ string) (provision.State, error) {
	close(b.started)
	<-ctx.Done()
	return provision.State{}, fmt.Errorf("provision: %w", ctx.Err())
}

func testState() provision.State {
	return provision.State{
		Kind:   provision.KindUserSite,
		Python: pyenv.Candidate{Command: "python3"},
	}
}

func newTestRunner(t *testing.T, fake *testutil.FakeExec) (*Runner, *runtime.Supervisor) {
	t.Helper()
	loc := &stubLocator{interp: &pyenv.Interpreter{Candidate: pyenv.Candidate{Command: "python3"}, Version: "3.12.1"}}
	prov := &stubProvisioner{state: testState()}
	sup := runtime.NewSupervisor()
	exe := runtime.NewExecutor(runtime.WithExecCommand(fake.Command))
	return NewRunner(loc, prov, exe, sup, WithScriptDir(t.TempDir())), sup
}

func TestRunner_RunSuccess(t *testing.T) {
	t.Parallel()

	fake := testutil.NewFakeExec().On("gitingest_script", testutil.FakeResponse{Stdout: validDigest})
	r, sup := newTestRunner(t, fake)
	status := NewStatusLog(nil)
	root := t.TempDir()

	d, err := r.Run(context.Background(), root, root, status)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if d.Tree != "demo/\n  a.go" {
		t.Errorf("Tree = %q", d.Tree)
	}
	if sup.Current() != nil {
		t.Error("supervisor slot should be empty after the run")
	}

	var texts []string
	for _, m := range status.Messages() {
		texts = append(texts, m.Text)
	}
	want := []string{msgPythonVerified, msgPackageVerified, msgAnalyzingRepo}
	if !slices.Equal(texts, want) {
		t.Errorf("status messages = %q, want %q", texts, want)
	}
	if got := status.Messages()[0].Severity; got != SeveritySuccess {
		t.Errorf("verification severity = %v, want success", got)
	}
}

func TestRunner_CommandLine(t *testing.T) {
	t.Parallel()

	fake := testutil.NewFakeExec().On("gitingest_script", testutil.FakeResponse{Stdout: validDigest})
	r, _ := newTestRunner(t, fake)
	r.excludes = []string{"*.generated.go"}
	target := t.TempDir()

	if _, err := r.Analyze(context.Background(), testState(), target, "", nil); err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	inv := fake.Invocations()
	if len(inv) != 1 {
		t.Fatalf("got %d invocations, want 1", len(inv))
	}
	if !strings.HasPrefix(inv[0], "python3 ") || !strings.HasSuffix(inv[0], target+" *.generated.go") {
		t.Errorf("command line = %q", inv[0])
	}

	argv, err := r.Command(testState(), target)
	if err != nil {
		t.Fatalf("Command() error: %v", err)
	}
	script := argv[1]
	data, err := os.ReadFile(script)
	if err != nil {
		t.Fatalf("script not materialized: %v", err)
	}
	if string(data) != string(ScriptSource()) {
		t.Error("materialized script differs from the embedded source")
	}
}

func TestRunner_AnalyzeFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		resp     testutil.FakeResponse
		wantIs   error
		wantText string
	}{
		{
			name:     "non-zero exit uses stderr",
			resp:     testutil.FakeResponse{ExitCode: 1, Stderr: "  Traceback: boom \n"},
			wantIs:   ErrExecutionFailed,
			wantText: "Traceback: boom",
		},
		{
			name:     "non-zero exit without stderr",
			resp:     testutil.FakeResponse{ExitCode: 3},
			wantIs:   ErrExecutionFailed,
			wantText: "analysis exited with code 3",
		},
		{
			name:     "empty stdout",
			resp:     testutil.FakeResponse{},
			wantIs:   ErrExecutionFailed,
			wantText: "analysis produced no output",
		},
		{
			name:   "invalid json",
			resp:   testutil.FakeResponse{Stdout: "Traceback (most recent call last)"},
			wantIs: ErrOutputParse,
		},
		{
			name:   "missing field",
			resp:   testutil.FakeResponse{Stdout: `{"summary":"s","tree":"t"}`},
			wantIs: ErrOutputParse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fake := testutil.NewFakeExec().On("gitingest_script", tt.resp)
			r, sup := newTestRunner(t, fake)

			_, err := r.Analyze(context.Background(), testState(), t.TempDir(), "", nil)
			if !errors.Is(err, tt.wantIs) {
				t.Fatalf("Analyze() error = %v, want %v", err, tt.wantIs)
			}
			if tt.wantText != "" && err.Error() != tt.wantText {
				t.Errorf("Analyze() error = %q, want %q", err.Error(), tt.wantText)
			}
			if sup.Current() != nil {
				t.Error("supervisor slot should be empty after a failed run")
			}
		})
	}
}

func TestRunner_CancelKillsProcess(t *testing.T) {
	t.Parallel()

	fake := testutil.NewFakeExec().On("gitingest_script", testutil.FakeResponse{Stdout: validDigest, Sleep: 30 * time.Second})
	r, sup := newTestRunner(t, fake)

	errCh := make(chan error, 1)
	go func() {
		_, err := r.Analyze(context.Background(), testState(), t.TempDir(), "", nil)
		errCh <- err
	}()

	waitForProcess(t, sup)
	if err := r.Cancel(); err != nil {
		t.Fatalf("Cancel() error: %v", err)
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, ErrCancelled) {
			t.Errorf("Analyze() error = %v, want ErrCancelled", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Analyze() did not return after Cancel()")
	}
	if sup.Current() != nil {
		t.Error("supervisor slot should be empty after cancellation")
	}
}

func TestRunner_ContextCancelKillsProcess(t *testing.T) {
	t.Parallel()

	fake := testutil.NewFakeExec().On("gitingest_script", testutil.FakeResponse{Stdout: validDigest, Sleep: 30 * time.Second})
	r, sup := newTestRunner(t, fake)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := r.Analyze(ctx, testState(), t.TempDir(), "", nil)
		errCh <- err
	}()

	waitForProcess(t, sup)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, ErrCancelled) {
			t.Errorf("Analyze() error = %v, want ErrCancelled", err)
		}
		if got := NewResult(nil, err); got.Kind != ResultCancelled {
			t.Errorf("NewResult().Kind = %v, want cancelled", got.Kind)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Analyze() did not return after context cancellation")
	}
}

func TestRunner_SequentialRunAfterCancel(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	slow := filepath.Join(root, "slow")
	fast := filepath.Join(root, "fast")
	for _, dir := range []string{slow, fast} {
		if err := os.Mkdir(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}

	fake := testutil.NewFakeExec().
		On(slow, testutil.FakeResponse{Stdout: validDigest, Sleep: 30 * time.Second}).
		On(fast, testutil.FakeResponse{Stdout: validDigest})
	r, sup := newTestRunner(t, fake)

	errCh := make(chan error, 1)
	go func() {
		_, err := r.Run(context.Background(), root, slow, NewStatusLog(nil))
		errCh <- err
	}()

	waitForProcess(t, sup)
	first := sup.Current()
	if err := r.Cancel(); err != nil {
		t.Fatalf("Cancel() error: %v", err)
	}
	select {
	case err := <-errCh:
		if !errors.Is(err, ErrCancelled) {
			t.Fatalf("first Run() error = %v, want ErrCancelled", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("first Run() did not return after Cancel()")
	}

	d, err := r.Run(context.Background(), root, fast, NewStatusLog(nil))
	if err != nil {
		t.Fatalf("second Run() error: %v", err)
	}
	if got := NewResult(d, err); got.Kind != ResultSuccess {
		t.Errorf("second result = %v, want success", got.Kind)
	}
	if !first.Cancelled() {
		t.Error("first process should report Cancelled()")
	}
	if sup.Current() != nil {
		t.Error("supervisor slot should be empty after the second run")
	}
}

func TestRunner_AnalyzeWithEndedContextSpawnsNothing(t *testing.T) {
	t.Parallel()

	fake := testutil.NewFakeExec().On("gitingest_script", testutil.FakeResponse{Stdout: validDigest})
	r, _ := newTestRunner(t, fake)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Analyze(ctx, testState(), t.TempDir(), "", nil)
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("Analyze() error = %v, want ErrCancelled", err)
	}
	if n := len(fake.Invocations()); n != 0 {
		t.Errorf("got %d invocations, want none", n)
	}
}

func TestRunner_CancelDuringVerification(t *testing.T) {
	t.Parallel()

	t.Run("provisioning", func(t *testing.T) {
		t.Parallel()
		prov := &blockingProvisioner{started: make(chan struct{})}
		loc := &stubLocator{interp: &pyenv.Interpreter{Candidate: pyenv.Candidate{Command: "python3"}}}
		r := NewRunner(loc, prov, runtime.NewExecutor(), runtime.NewSupervisor(), WithScriptDir(t.TempDir()))

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() {
			_, err := r.Run(ctx, t.TempDir(), t.TempDir(), NewStatusLog(nil))
			errCh <- err
		}()
		<-prov.started
		cancel()

		err := <-errCh
		if !errors.Is(err, ErrCancelled) {
			t.Fatalf("Run() error = %v, want ErrCancelled", err)
		}
		if got := NewResult(nil, err); got.Kind != ResultCancelled {
			t.Errorf("NewResult().Kind = %v, want cancelled", got.Kind)
		}
	})

	t.Run("interpreter probing", func(t *testing.T) {
		t.Parallel()
		fake := testutil.NewFakeExec().
			On("python3 --version", testutil.FakeResponse{Stdout: "Python 3.12.1\n", Sleep: 30 * time.Second})
		loc := pyenv.NewLocator(
			pyenv.WithExecCommand(fake.Command),
			pyenv.WithCandidates([]pyenv.Candidate{{Command: "python3"}}),
		)
		r := NewRunner(loc, &stubProvisioner{state: testState()}, runtime.NewExecutor(), runtime.NewSupervisor())

		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()
		_, err := r.VerifyDependencies(ctx, t.TempDir(), NewStatusLog(nil))
		if !errors.Is(err, ErrCancelled) {
			t.Fatalf("VerifyDependencies() error = %v, want ErrCancelled", err)
		}
		if errors.Is(err, pyenv.ErrInterpreterNotFound) {
			t.Error("an interrupted probe must not be reported as a missing interpreter")
		}
	})
}

func TestRunner_VerifyDependencies(t *testing.T) {
	t.Parallel()

	t.Run("no workspace", func(t *testing.T) {
		t.Parallel()
		r, _ := newTestRunner(t, testutil.NewFakeExec())
		_, err := r.VerifyDependencies(context.Background(), "", nil)
		if !errors.Is(err, ErrNoWorkspace) {
			t.Errorf("VerifyDependencies() error = %v, want ErrNoWorkspace", err)
		}
	})

	t.Run("python missing stops before provisioning", func(t *testing.T) {
		t.Parallel()
		prov := &stubProvisioner{state: testState()}
		loc := &stubLocator{err: &pyenv.NotFoundError{}}
		r := NewRunner(loc, prov, runtime.NewExecutor(), runtime.NewSupervisor(), WithScriptDir(t.TempDir()))
		status := NewStatusLog(nil)

		_, err := r.VerifyDependencies(context.Background(), t.TempDir(), status)
		if !errors.Is(err, pyenv.ErrInterpreterNotFound) {
			t.Fatalf("VerifyDependencies() error = %v", err)
		}
		if len(prov.calls) != 0 {
			t.Error("provisioner must not run without an interpreter")
		}
		if len(status.Messages()) != 0 {
			t.Errorf("no success message expected, got %v", status.Messages())
		}
		if got := Message(err); got != "Python is not installed or not in PATH" {
			t.Errorf("Message() = %q", got)
		}
	})

	t.Run("provisioning failure", func(t *testing.T) {
		t.Parallel()
		prov := &stubProvisioner{err: &provision.ProvisioningError{}}
		loc := &stubLocator{interp: &pyenv.Interpreter{Candidate: pyenv.Candidate{Command: "python3"}}}
		r := NewRunner(loc, prov, runtime.NewExecutor(), runtime.NewSupervisor())
		status := NewStatusLog(nil)
		root := t.TempDir()

		_, err := r.VerifyDependencies(context.Background(), root, status)
		if !errors.Is(err, provision.ErrProvisioningFailed) {
			t.Fatalf("VerifyDependencies() error = %v", err)
		}
		msgs := status.Messages()
		if len(msgs) != 1 || msgs[0].Text != msgPythonVerified {
			t.Errorf("status = %v, want only the python message", msgs)
		}
		if _, ok := r.State(root); ok {
			t.Error("failed provisioning must not be cached")
		}
	})
}

func TestAnalyzingLabel(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	if got := AnalyzingLabel(root, root); got != "Analyzing repository..." {
		t.Errorf("AnalyzingLabel(root, root) = %q", got)
	}
	if got := AnalyzingLabel(root, filepath.Join(root, "pkg", "api")); got != "Analyzing folder: api..." {
		t.Errorf("AnalyzingLabel(root, api) = %q", got)
	}
}

func waitForProcess(t *testing.T, sup *runtime.Supervisor) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for sup.Current() == nil {
		if time.Now().After(deadline) {
			t.Fatal("analysis process never started")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
