// SPDX-License-Identifier: MPL-2.0

package pyenv

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInterpreterNotFound is returned when no candidate answered as Python 3.
	ErrInterpreterNotFound = errors.New("python is not installed or not in PATH")
	// ErrNotPython marks probe output that does not mention Python at all.
	ErrNotPython = errors.New("not a python interpreter")
	// ErrNotPython3 marks a Python interpreter with the wrong major version.
	ErrNotPython3 = errors.New("not python 3")
	// ErrTooOld marks a Python 3 interpreter below the configured minimum.
	ErrTooOld = errors.New("python version below minimum")
)

type (
	// ProbeError records why a single candidate was rejected.
	ProbeError struct {
		Candidate Candidate
		Err       error
	}

	// NotFoundError lists every rejected candidate.
	// It wraps ErrInterpreterNotFound for errors.Is() compatibility.
	NotFoundError struct {
		Probes []ProbeError
	}
)

func (e *ProbeError) Error() string {
	return fmt.Sprintf("%s: %v", e.Candidate, e.Err)
}

func (e *ProbeError) Unwrap() error { return e.Err }

func (e *NotFoundError) Error() string {
	if len(e.Probes) == 0 {
		return ErrInterpreterNotFound.Error()
	}
	parts := make([]string, len(e.Probes))
	for i := range e.Probes {
		parts[i] = e.Probes[i].Error()
	}
	return fmt.Sprintf("%s (tried %s)", ErrInterpreterNotFound, strings.Join(parts, "; "))
}

func (e *NotFoundError) Unwrap() error { return ErrInterpreterNotFound }
