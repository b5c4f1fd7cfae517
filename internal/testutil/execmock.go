// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"
)

const helperEnv = "GO_WANT_HELPER_PROCESS"

type (
	// FakeResponse describes how a faked command behaves.
	FakeResponse struct {
		Stdout   string
		Stderr   string
		ExitCode int
		// Sleep keeps the helper process alive before it writes and exits.
		Sleep time.Duration
		// Do runs in the test process when the command is built, for side
		// effects such as creating the directory a real tool would create.
		Do func(argv []string)
	}

	// FakeExec answers exec requests by re-executing the test binary as a
	// TestHelperProcess that prints the configured response. Each test package
	// using it must define:
	//
	//	func TestHelperProcess(t *testing.T) { testutil.RunHelperProcess() }
	FakeExec struct {
		mu          sync.Mutex
		rules       []fakeRule
		fallback    FakeResponse
		invocations [][]string
	}

	fakeRule struct {
		match func(argv []string) bool
		resp  FakeResponse
	}
)

// NewFakeExec creates a FakeExec whose unmatched commands fail like a missing binary.
func NewFakeExec() *FakeExec {
	return &FakeExec{fallback: FakeResponse{ExitCode: 127, Stderr: "command not found"}}
}

// On answers every command line containing substr. Rules are checked in
// registration order and the first match wins.
func (f *FakeExec) On(substr string, resp FakeResponse) *FakeExec {
	return f.OnFunc(func(argv []string) bool {
		return strings.Contains(strings.Join(argv, " "), substr)
	}, resp)
}

// OnFunc answers commands accepted by match.
func (f *FakeExec) OnFunc(match func(argv []string) bool, resp FakeResponse) *FakeExec {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, fakeRule{match: match, resp: resp})
	return f
}

// Invocations returns every command line seen so far, in call order.
func (f *FakeExec) Invocations() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.invocations))
	for i, argv := range f.invocations {
		out[i] = strings.Join(argv, " ")
	}
	return out
}

// Count returns how many invocations contained substr.
func (f *FakeExec) Count(substr string) int {
	n := 0
	for _, inv := range f.Invocations() {
		if strings.Contains(inv, substr) {
			n++
		}
	}
	return n
}

// Command has the exec.CommandContext signature.
func (f *FakeExec) Command(ctx context.Context, name string, args ...string) *exec.Cmd {
	argv := append([]string{name}, args...)

	f.mu.Lock()
	f.invocations = append(f.invocations, argv)
	resp := f.fallback
	for _, r := range f.rules {
		if r.match(argv) {
			resp = r.resp
			break
		}
	}
	f.mu.Unlock()

	if resp.Do != nil {
		resp.Do(argv)
	}

	cs := append([]string{"-test.run=TestHelperProcess", "--"}, argv...)
	//nolint:gosec // TestHelperProcess is a test-only pattern
	cmd := exec.CommandContext(ctx, os.Args[0], cs...)
	cmd.Env = []string{
		helperEnv + "=1",
		"GO_HELPER_STDOUT=" + resp.Stdout,
		"GO_HELPER_STDERR=" + resp.Stderr,
		"GO_HELPER_EXIT_CODE=" + strconv.Itoa(resp.ExitCode),
		"GO_HELPER_SLEEP=" + resp.Sleep.String(),
	}
	return cmd
}

// RunHelperProcess is the body of a package's TestHelperProcess. It returns
// immediately unless the binary was started by FakeExec.
func RunHelperProcess() {
	if os.Getenv(helperEnv) != "1" {
		return
	}

	if d, err := time.ParseDuration(os.Getenv("GO_HELPER_SLEEP")); err == nil && d > 0 {
		time.Sleep(d)
	}
	if stdout := os.Getenv("GO_HELPER_STDOUT"); stdout != "" {
		fmt.Fprint(os.Stdout, stdout)
	}
	if stderr := os.Getenv("GO_HELPER_STDERR"); stderr != "" {
		fmt.Fprint(os.Stderr, stderr)
	}

	code, _ := strconv.Atoi(os.Getenv("GO_HELPER_EXIT_CODE"))
	os.Exit(code)
}
