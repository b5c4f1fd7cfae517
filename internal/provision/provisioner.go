// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/ingestkit/ingestkit/internal/pyenv"
	"github.com/ingestkit/ingestkit/internal/runtime"
)

const (
	// KindUserSite means the package lives in the system interpreter's user site.
	KindUserSite Kind = iota + 1
	// KindProjectVenv means the package lives in <project>/.venv.
	KindProjectVenv
	// KindHomeVenv means the package lives in the home-directory environment.
	KindHomeVenv
)

const (
	// FailureNone means the strategy succeeded.
	FailureNone FailureKind = iota
	// FailureRecoverable lets the next strategy try.
	FailureRecoverable
	// FailurePermission is a permission-denied failure; the next strategy tries.
	FailurePermission
	// FailureFatal stops provisioning.
	FailureFatal
)

type (
	// Kind identifies where the package was provisioned.
	Kind int

	// FailureKind classifies a strategy failure.
	FailureKind int

	// State is a usable installation: Python is the interpreter that can
	// import the package.
	State struct {
		Kind   Kind
		Path   string
		Python pyenv.Candidate
	}

	// Outcome is the result of one strategy attempt.
	Outcome struct {
		State   State
		Failure FailureKind
		Err     error
	}

	// Strategy is one way of making the package available.
	Strategy interface {
		Name() string
		Attempt(ctx context.Context, interp *pyenv.Interpreter, projectPath string) Outcome
	}

	// CommandRunner runs a helper command to completion; *runtime.Executor satisfies it.
	CommandRunner interface {
		Run(ctx context.Context, argv []string) (*runtime.Output, error)
	}

	// Provisioner drives the strategies and caches the resulting State per project.
	Provisioner struct {
		strategies []Strategy

		mu    sync.Mutex
		cache map[string]State
	}
)

func (k Kind) String() string {
	switch k {
	case KindUserSite:
		return "user-site"
	case KindProjectVenv:
		return "project-venv"
	case KindHomeVenv:
		return "home-venv"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (f FailureKind) String() string {
	switch f {
	case FailureNone:
		return "none"
	case FailureRecoverable:
		return "recoverable"
	case FailurePermission:
		return "permission"
	case FailureFatal:
		return "fatal"
	default:
		return fmt.Sprintf("FailureKind(%d)", int(f))
	}
}

// New creates a Provisioner that tries strategies in order.
func New(strategies ...Strategy) *Provisioner {
	return &Provisioner{strategies: strategies, cache: make(map[string]State)}
}

// Ensure returns a State in which the package is importable, provisioning it
// on first use for projectPath. Failures of the last strategy, and fatal
// failures of any strategy, yield a *ProvisioningError.
func (p *Provisioner) Ensure(ctx context.Context, interp *pyenv.Interpreter, projectPath string) (State, error) {
	key := filepath.Clean(projectPath)

	p.mu.Lock()
	defer p.mu.Unlock()

	if st, ok := p.cache[key]; ok {
		return st, nil
	}

	var attempts []Attempt
	for _, s := range p.strategies {
		out := s.Attempt(ctx, interp, projectPath)
		if err := ctx.Err(); err != nil {
			return State{}, fmt.Errorf("provision: %w", err)
		}

		if out.Failure == FailureNone {
			slog.Debug("analysis package available", "strategy", s.Name(), "python", out.State.Python.String())
			p.cache[key] = out.State
			return out.State, nil
		}

		attempts = append(attempts, Attempt{Strategy: s.Name(), Failure: out.Failure, Err: out.Err})
		if out.Failure == FailureFatal {
			break
		}
		slog.Debug("provisioning strategy failed, trying next", "strategy", s.Name(), "failure", out.Failure, "error", out.Err)
	}

	return State{}, &ProvisioningError{Attempts: attempts}
}

// Invalidate forgets the cached State for projectPath.
func (p *Provisioner) Invalidate(projectPath string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.cache, filepath.Clean(projectPath))
}

// Settings configures the standard strategy chain.
type Settings struct {
	Package     string
	UserSite    bool
	ProjectVenv string
	HomeVenv    string
	GOOS        string
}

// NewDefault builds the standard chain: user site (when enabled), project
// environment, home environment.
func NewDefault(run CommandRunner, s Settings) *Provisioner {
	var strategies []Strategy
	if s.UserSite {
		strategies = append(strategies, &UserSiteStrategy{Run: run, Package: s.Package})
	}
	strategies = append(strategies,
		&VenvStrategy{
			Run:     run,
			Package: s.Package,
			Kind:    KindProjectVenv,
			GOOS:    s.GOOS,
			Dir: func(projectPath string) (string, error) {
				return filepath.Join(projectPath, s.ProjectVenv), nil
			},
		},
		&VenvStrategy{
			Run:     run,
			Package: s.Package,
			Kind:    KindHomeVenv,
			GOOS:    s.GOOS,
			Dir: func(string) (string, error) {
				return s.HomeVenv, nil
			},
		},
	)
	return New(strategies...)
}
