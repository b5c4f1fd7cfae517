// SPDX-License-Identifier: MPL-2.0

package analysis

import (
	"errors"
	"os"

	"github.com/ingestkit/ingestkit/internal/issue"
	"github.com/ingestkit/ingestkit/internal/provision"
	"github.com/ingestkit/ingestkit/internal/pyenv"
	"github.com/ingestkit/ingestkit/internal/runtime"
)

const (
	ResultSuccess ResultKind = iota + 1
	ResultError
	ResultCancelled
)

const (
	msgPythonNotInstalled    = "Python is not installed or not in PATH"
	msgGitIngestNotInstalled = "GitIngest is not installed"
	msgNoWorkspace           = "No workspace folder open"
	msgProcessKillFailed     = "Failed to kill process"
	msgUnknownError          = "An unknown error occurred"
	msgCancelled             = "Analysis cancelled"
)

// ErrNoWorkspace is returned when an operation needs a workspace root and none is set.
var ErrNoWorkspace = errors.New("no workspace folder open")

type (
	// ResultKind is the outcome of an analysis request.
	ResultKind int

	// Result is what a UI shows once an analysis settles.
	Result struct {
		Kind    ResultKind
		Data    *Digest
		Message string
	}
)

func (k ResultKind) String() string {
	switch k {
	case ResultSuccess:
		return "success"
	case ResultCancelled:
		return "cancelled"
	default:
		return "error"
	}
}

// NewResult classifies the outcome of Run.
func NewResult(d *Digest, err error) Result {
	if err == nil {
		if d == nil {
			return Result{Kind: ResultError, Message: "Analysis result data is undefined"}
		}
		return Result{Kind: ResultSuccess, Data: d}
	}
	if errors.Is(err, ErrCancelled) {
		return Result{Kind: ResultCancelled, Message: msgCancelled}
	}
	return Result{Kind: ResultError, Message: Message(err)}
}

// Message returns the user-facing text for err.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, pyenv.ErrInterpreterNotFound):
		return msgPythonNotInstalled
	case errors.Is(err, provision.ErrProvisioningFailed):
		return msgGitIngestNotInstalled
	case errors.Is(err, ErrNoWorkspace):
		return msgNoWorkspace
	case errors.Is(err, runtime.ErrProcessKillFailed):
		return msgProcessKillFailed
	case errors.Is(err, ErrCancelled):
		return msgCancelled
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return msgUnknownError
}

// IssueID returns the guidance page for err.
func IssueID(err error) issue.Id {
	var provErr *provision.ProvisioningError
	switch {
	case errors.Is(err, pyenv.ErrInterpreterNotFound):
		return issue.PythonNotFoundId
	case errors.As(err, &provErr) && provErr.PermissionDenied():
		return issue.PermissionDeniedId
	case errors.Is(err, provision.ErrProvisioningFailed):
		return issue.ProvisioningFailedId
	case errors.Is(err, ErrNoWorkspace):
		return issue.NoWorkspaceId
	case errors.Is(err, runtime.ErrProcessKillFailed):
		return issue.ProcessKillFailedId
	case errors.Is(err, ErrOutputParse):
		return issue.OutputParseFailedId
	case errors.Is(err, os.ErrPermission):
		return issue.PermissionDeniedId
	case errors.Is(err, ErrExecutionFailed):
		return issue.ExecutionFailedId
	}
	return issue.SetupGuideId
}
