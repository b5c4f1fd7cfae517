// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/ingestkit/ingestkit/internal/testutil"
)

func TestExecutor_Run(t *testing.T) {
	t.Parallel()
	fake := testutil.NewFakeExec().
		On("pip show", testutil.FakeResponse{Stdout: "Name: gitingest\n"}).
		On("pip install", testutil.FakeResponse{Stderr: "line1\nERROR: Permission denied\n", ExitCode: 1})

	e := NewExecutor(WithExecCommand(fake.Command))

	out, err := e.Run(context.Background(), []string{"python3", "-m", "pip", "show", "gitingest"})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if out.Stdout != "Name: gitingest\n" || out.ExitCode != 0 {
		t.Errorf("Run() = %+v", out)
	}

	out, err = e.Run(context.Background(), []string{"python3", "-m", "pip", "install", "gitingest"})
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("Run() error = %v, want *CommandError", err)
	}
	if cmdErr.ExitCode != 1 || out.ExitCode != 1 {
		t.Errorf("ExitCode = %d/%d, want 1", cmdErr.ExitCode, out.ExitCode)
	}
	if !strings.Contains(err.Error(), "Permission denied") {
		t.Errorf("Error() = %q, should carry stderr", err)
	}
}

func TestExecutor_RunEmpty(t *testing.T) {
	t.Parallel()
	if _, err := NewExecutor().Run(context.Background(), nil); err == nil {
		t.Error("Run(nil) should fail")
	}
}

func TestExecutor_EnvAppended(t *testing.T) {
	t.Parallel()
	fake := testutil.NewFakeExec().On("tool", testutil.FakeResponse{})
	e := NewExecutor(WithExecCommand(fake.Command), WithEnv([]string{"PIP_INDEX_URL=https://mirror"}))

	cmd := e.Command(context.Background(), []string{"tool"})
	if !slices.Contains(cmd.Env, "PIP_INDEX_URL=https://mirror") {
		t.Errorf("Command().Env = %v, missing extra variable", cmd.Env)
	}
	if !slices.Contains(cmd.Env, "GO_WANT_HELPER_PROCESS=1") {
		t.Error("Command() must keep the environment set by the command factory")
	}
}

func TestLoadEnvFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	first := filepath.Join(dir, "a.env")
	second := filepath.Join(dir, "b.env")
	testutil.MustWriteFile(t, first, "PIP_INDEX_URL=https://a\nGITHUB_TOKEN=abc\n")
	testutil.MustWriteFile(t, second, "# override\nPIP_INDEX_URL=\"https://b\"\n")

	env, err := LoadEnvFiles(first, second)
	if err != nil {
		t.Fatalf("LoadEnvFiles() error: %v", err)
	}
	want := []string{"GITHUB_TOKEN=abc", "PIP_INDEX_URL=https://b"}
	if !slices.Equal(env, want) {
		t.Errorf("LoadEnvFiles() = %v, want %v", env, want)
	}

	if _, err := LoadEnvFiles(filepath.Join(dir, "missing.env")); err == nil {
		t.Error("LoadEnvFiles() should fail for a missing file")
	}
}

func TestFormatCommand(t *testing.T) {
	t.Parallel()
	tests := []struct {
		argv []string
		want string
	}{
		{[]string{"python3", "-m", "pip"}, "python3 -m pip"},
		{[]string{"py", "/tmp/my project"}, "py '/tmp/my project'"},
		{[]string{"echo", ""}, "echo ''"},
	}
	for _, tt := range tests {
		if got := FormatCommand(tt.argv); got != tt.want {
			t.Errorf("FormatCommand(%q) = %q, want %q", tt.argv, got, tt.want)
		}
	}
}

func TestSplitCommand(t *testing.T) {
	t.Parallel()
	got, err := SplitCommand(`py -3 "C:/Program Files/x"`)
	if err != nil {
		t.Fatalf("SplitCommand() error: %v", err)
	}
	want := []string{"py", "-3", "C:/Program Files/x"}
	if !slices.Equal(got, want) {
		t.Errorf("SplitCommand() = %q, want %q", got, want)
	}
}
