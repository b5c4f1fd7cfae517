// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ingestkit/ingestkit/internal/runtime"
)

// ErrProvisioningFailed is returned when no strategy made the package available.
var ErrProvisioningFailed = errors.New("failed to install gitingest package")

type (
	// Attempt records one failed strategy.
	Attempt struct {
		Strategy string
		Failure  FailureKind
		Err      error
	}

	// ProvisioningError lists every failed strategy.
	// It wraps ErrProvisioningFailed for errors.Is() compatibility.
	ProvisioningError struct {
		Attempts []Attempt
	}
)

func (e *ProvisioningError) Error() string {
	if len(e.Attempts) == 0 {
		return ErrProvisioningFailed.Error() + ": no strategies configured"
	}
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = fmt.Sprintf("%s (%s): %v", a.Strategy, a.Failure, a.Err)
	}
	return ErrProvisioningFailed.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ProvisioningError) Unwrap() error { return ErrProvisioningFailed }

// PermissionDenied reports whether any attempt failed for lack of permissions.
func (e *ProvisioningError) PermissionDenied() bool {
	for _, a := range e.Attempts {
		if a.Failure == FailurePermission || IsPermissionError(a.Err) {
			return true
		}
	}
	return false
}

// permissionMarkers are the texts Python, pip and the OS print for EACCES/EPERM.
var permissionMarkers = []string{
	"permission denied",
	"eacces",
	"eperm",
	"access is denied",
	"operation not permitted",
	"[errno 13]",
}

// IsPermissionError reports whether err, or the output of the command that
// produced it, indicates a permission failure.
func IsPermissionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, os.ErrPermission) {
		return true
	}

	text := err.Error()
	var cmdErr *runtime.CommandError
	if errors.As(err, &cmdErr) {
		text += "\n" + cmdErr.Stderr
	}
	text = strings.ToLower(text)
	for _, m := range permissionMarkers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}
