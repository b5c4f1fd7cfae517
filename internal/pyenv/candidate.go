// SPDX-License-Identifier: MPL-2.0

package pyenv

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/ingestkit/ingestkit/internal/platform"
)

type (
	// Candidate is a command (plus leading arguments) that may start a Python 3 interpreter.
	Candidate struct {
		Command string
		Args    []string
	}

	// Interpreter is a candidate that answered the version probe.
	Interpreter struct {
		Candidate
		// Version is the dotted release reported by --version, e.g. "3.12.4".
		Version string
	}
)

// DefaultCandidates returns the probe list for goos, in preference order.
func DefaultCandidates(goos string) []Candidate {
	if goos == platform.Windows {
		return []Candidate{
			{Command: "py", Args: []string{"-3"}},
			{Command: "python"},
			{Command: "python3"},
		}
	}
	return []Candidate{
		{Command: "python3"},
		{Command: "python"},
	}
}

// CandidatesFromArgv converts configured argv lists into candidates,
// skipping empty entries.
func CandidatesFromArgv(lists [][]string) []Candidate {
	out := make([]Candidate, 0, len(lists))
	for _, argv := range lists {
		if len(argv) == 0 || strings.TrimSpace(argv[0]) == "" {
			continue
		}
		out = append(out, Candidate{Command: argv[0], Args: slices.Clone(argv[1:])})
	}
	return out
}

// Argv returns the full argument vector used to start the interpreter.
func (c Candidate) Argv(extra ...string) []string {
	argv := make([]string, 0, 1+len(c.Args)+len(extra))
	argv = append(argv, c.Command)
	argv = append(argv, c.Args...)
	return append(argv, extra...)
}

func (c Candidate) String() string {
	return strings.Join(c.Argv(), " ")
}

// VenvBinDir returns the directory holding executables inside a virtual environment.
func VenvBinDir(venv, goos string) string {
	if goos == platform.Windows {
		return filepath.Join(venv, "Scripts")
	}
	return filepath.Join(venv, "bin")
}

// VenvPython returns the interpreter path inside a virtual environment.
func VenvPython(venv, goos string) string {
	if goos == platform.Windows {
		return filepath.Join(VenvBinDir(venv, goos), "python.exe")
	}
	return filepath.Join(VenvBinDir(venv, goos), "python")
}
