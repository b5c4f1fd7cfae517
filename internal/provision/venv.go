// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/ingestkit/ingestkit/internal/pyenv"
	"github.com/ingestkit/ingestkit/internal/uroot"
)

// VenvStrategy provisions into a virtual environment at Dir(projectPath).
//
// An existing environment whose interpreter still runs is reused; a broken one
// is removed and recreated. When the interpreter lacks the venv module the
// virtualenv package is installed into the user site and used instead.
// For KindProjectVenv a permission failure lets the next strategy try; any
// other failure, and every failure for other kinds, is fatal.
type VenvStrategy struct {
	Run     CommandRunner
	Package string
	Kind    Kind
	GOOS    string
	Dir     func(projectPath string) (string, error)
}

func (s *VenvStrategy) Name() string { return s.Kind.String() }

func (s *VenvStrategy) Attempt(ctx context.Context, interp *pyenv.Interpreter, projectPath string) Outcome {
	dir, err := s.Dir(projectPath)
	if err != nil {
		return s.fail(err)
	}
	if dir == "" {
		return s.fail(errors.New("no environment directory configured"))
	}

	venvPython := pyenv.Candidate{Command: pyenv.VenvPython(dir, s.GOOS)}
	state := State{Kind: s.Kind, Path: dir, Python: venvPython}

	if info, statErr := os.Stat(dir); statErr == nil && info.IsDir() {
		if _, err := s.Run.Run(ctx, venvPython.Argv("--version")); err == nil {
			if err := s.ensurePackage(ctx, venvPython); err != nil {
				return s.fail(err)
			}
			return Outcome{State: state}
		}

		slog.Warn("removing broken virtual environment", "path", dir)
		if err := uroot.RemoveAll(ctx, dir); err != nil {
			return s.fail(fmt.Errorf("remove broken environment: %w", err))
		}
	}

	if err := s.create(ctx, interp, dir); err != nil {
		return s.fail(err)
	}
	if _, err := s.Run.Run(ctx, venvPython.Argv("-m", "pip", "install", "--upgrade", "pip")); err != nil {
		slog.Warn("could not upgrade pip in new environment", "path", dir, "error", err)
	}
	if _, err := s.Run.Run(ctx, venvPython.Argv("-m", "pip", "install", s.Package)); err != nil {
		return s.fail(err)
	}
	return Outcome{State: state}
}

func (s *VenvStrategy) ensurePackage(ctx context.Context, venvPython pyenv.Candidate) error {
	if _, err := s.Run.Run(ctx, venvPython.Argv("-m", "pip", "show", s.Package)); err == nil {
		return nil
	}
	_, err := s.Run.Run(ctx, venvPython.Argv("-m", "pip", "install", s.Package))
	return err
}

// create builds the environment with the venv module, falling back to
// virtualenv installed into the user site.
func (s *VenvStrategy) create(ctx context.Context, interp *pyenv.Interpreter, dir string) error {
	module := "venv"
	if _, err := s.Run.Run(ctx, interp.Argv("-m", "venv", "--help")); err != nil {
		slog.Debug("venv module unavailable, using virtualenv", "python", interp.String())
		if _, err := s.Run.Run(ctx, interp.Argv("-m", "pip", "install", "--user", "virtualenv")); err != nil {
			return fmt.Errorf("install virtualenv: %w", err)
		}
		module = "virtualenv"
	}

	if _, err := s.Run.Run(ctx, interp.Argv("-m", module, dir)); err != nil {
		return fmt.Errorf("create environment: %w", err)
	}
	return nil
}

func (s *VenvStrategy) fail(err error) Outcome {
	if s.Kind == KindProjectVenv && IsPermissionError(err) {
		return Outcome{Failure: FailurePermission, Err: err}
	}
	return Outcome{Failure: FailureFatal, Err: err}
}
