// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/ingestkit/ingestkit/internal/analysis"
	"github.com/ingestkit/ingestkit/internal/issue"
)

func TestNewServiceError_PanicsOnNilErr(t *testing.T) {
	t.Parallel()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic on nil Err, got none")
		}
		msg, ok := r.(string)
		if !ok {
			t.Fatalf("expected string panic, got %T", r)
		}
		if msg != "ServiceError: Err must not be nil" {
			t.Fatalf("unexpected panic message: %s", msg)
		}
	}()

	newServiceError(nil, 0, "")
}

func TestServiceError_ErrorAndUnwrap(t *testing.T) {
	t.Parallel()

	underlying := errors.New("underlying error")
	svcErr := newServiceError(underlying, issue.NoWorkspaceId, "")

	if svcErr.Error() != "underlying error" {
		t.Errorf("Error() = %q, want %q", svcErr.Error(), "underlying error")
	}
	if !errors.Is(svcErr, underlying) {
		t.Error("errors.Is should find underlying error via Unwrap")
	}
}

func TestErrorReport_Write(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		svcErr   *ServiceError
		verbose  bool
		want     string
		contains []string
		excludes []string
	}{
		{name: "nil", svcErr: nil, want: ""},
		{name: "headline only", svcErr: newServiceError(errors.New("x"), 0, "Failed to load configuration"), want: "Failed to load configuration\n"},
		{
			name:     "headline falls back to the analysis message",
			svcErr:   newServiceError(fmt.Errorf("%w: /nowhere", analysis.ErrNoWorkspace), issue.NoWorkspaceId, ""),
			contains: []string{"No workspace folder open"},
			excludes: []string{"↳"},
		},
		{
			name:     "guidance page follows the headline",
			svcErr:   newServiceError(errors.New("x"), issue.PythonNotFoundId, "Python is not installed or not in PATH"),
			contains: []string{"Python is not installed or not in PATH", "python"},
		},
		{
			name:     "verbose prints the cause chain",
			svcErr:   newServiceError(fmt.Errorf("provision: %w", errors.New("pip exited 1")), 0, "GitIngest is not installed"),
			verbose:  true,
			contains: []string{"↳ provision: pip exited 1", "  ↳ pip exited 1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			errorReport{style: "notty", verbose: tt.verbose}.write(&buf, tt.svcErr)
			out := buf.String()
			if tt.contains == nil && out != tt.want {
				t.Errorf("output = %q, want %q", out, tt.want)
			}
			for _, s := range tt.contains {
				if !strings.Contains(out, s) {
					t.Errorf("output = %q, want it to contain %q", out, s)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(out, s) {
					t.Errorf("output = %q, should not contain %q", out, s)
				}
			}
		})
	}
}

func TestCauseChain(t *testing.T) {
	t.Parallel()

	root := errors.New("context canceled")
	err := fmt.Errorf("%w: %w", analysis.ErrCancelled, fmt.Errorf("locate python: %w", root))
	if got := causeChain(err); len(got) != 1 || got[0] != err.Error() {
		t.Errorf("causeChain(multi-wrap) = %q, want only the outer message", got)
	}

	single := fmt.Errorf("locate python: %w", root)
	got := causeChain(newServiceError(single, 0, ""))
	want := []string{"locate python: context canceled", "context canceled"}
	if !slices.Equal(got, want) {
		t.Errorf("causeChain() = %q, want %q", got, want)
	}
}

func TestExitError(t *testing.T) {
	t.Parallel()

	if got := (&ExitError{Code: 130}).Error(); got != "exit status 130" {
		t.Errorf("Error() = %q, want %q", got, "exit status 130")
	}
	cause := errors.New("boom")
	err := &ExitError{Code: exitFailure, Err: cause}
	if err.Error() != "boom" || !errors.Is(err, cause) {
		t.Errorf("ExitError should report and unwrap its cause, got %q", err.Error())
	}
}
