// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"

	"github.com/ingestkit/ingestkit/internal/pyenv"
)

// UserSiteStrategy uses the system interpreter, installing the package with
// "pip install --user" when it is missing. Every failure is recoverable.
type UserSiteStrategy struct {
	Run     CommandRunner
	Package string
}

func (s *UserSiteStrategy) Name() string { return KindUserSite.String() }

func (s *UserSiteStrategy) Attempt(ctx context.Context, interp *pyenv.Interpreter, _ string) Outcome {
	state := State{Kind: KindUserSite, Python: interp.Candidate}

	if _, err := s.Run.Run(ctx, interp.Argv("-m", "pip", "show", s.Package)); err == nil {
		return Outcome{State: state}
	}
	if _, err := s.Run.Run(ctx, interp.Argv("-m", "pip", "install", "--user", s.Package)); err != nil {
		return Outcome{Failure: FailureRecoverable, Err: err}
	}
	return Outcome{State: state}
}
