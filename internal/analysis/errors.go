// SPDX-License-Identifier: MPL-2.0

package analysis

import (
	"errors"
	"fmt"
)

var (
	// ErrExecutionFailed is returned when the analysis process fails or prints nothing.
	ErrExecutionFailed = errors.New("analysis failed")
	// ErrOutputParse is returned when the analysis output is not a valid digest.
	ErrOutputParse = errors.New("invalid analysis output")
	// ErrCancelled is returned when the analysis process was killed on request.
	ErrCancelled = errors.New("analysis cancelled")
)

type (
	// ExecutionError describes a failed analysis process.
	// It wraps ErrExecutionFailed for errors.Is() compatibility.
	ExecutionError struct {
		// Message is the process stderr, or a generic description when it was empty.
		Message  string
		ExitCode int
		Err      error
	}

	// OutputParseError describes undecodable analysis output.
	// It wraps ErrOutputParse for errors.Is() compatibility.
	OutputParseError struct {
		Err error
	}
)

func (e *ExecutionError) Error() string { return e.Message }

func (e *ExecutionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrExecutionFailed}
	}
	return []error{ErrExecutionFailed, e.Err}
}

func (e *OutputParseError) Error() string {
	return fmt.Sprintf("%s: %v", ErrOutputParse, e.Err)
}

func (e *OutputParseError) Unwrap() []error { return []error{ErrOutputParse, e.Err} }
