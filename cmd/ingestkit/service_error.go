// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ingestkit/ingestkit/internal/analysis"
	"github.com/ingestkit/ingestkit/internal/issue"
)

type (
	// ServiceError is a failure the CLI explains to the user: a one-line
	// headline, the guidance page for IssueID and, in verbose mode, the chain
	// of causes. Create it with newServiceError; Err is never nil.
	ServiceError struct {
		Err     error
		IssueID issue.Id
		// Headline replaces analysis.Message(Err) as the first line.
		Headline string
	}

	// errorReport writes ServiceErrors to the terminal.
	errorReport struct {
		// style is the glamour style of the guidance page.
		style   string
		verbose bool
	}
)

func newServiceError(err error, issueID issue.Id, headline string) *ServiceError {
	if err == nil {
		panic("ServiceError: Err must not be nil")
	}
	return &ServiceError{Err: err, IssueID: issueID, Headline: headline}
}

func (e *ServiceError) Error() string { return e.Err.Error() }

func (e *ServiceError) Unwrap() error { return e.Err }

func (r errorReport) write(w io.Writer, svcErr *ServiceError) {
	if svcErr == nil {
		return
	}

	headline := svcErr.Headline
	if headline == "" {
		headline = analysis.Message(svcErr.Err)
	}
	fmt.Fprintln(w, ErrorStyle.Render(headline))

	if entry := issue.Get(svcErr.IssueID); svcErr.IssueID != 0 && entry != nil {
		rendered, err := entry.Render(r.style)
		if err != nil {
			slog.Warn("failed to render guidance page", "issueID", svcErr.IssueID, "error", err)
		} else {
			fmt.Fprint(w, rendered)
		}
	}

	if !r.verbose {
		return
	}
	for i, cause := range causeChain(svcErr.Err) {
		fmt.Fprintln(w, VerboseStyle.Render(strings.Repeat("  ", i)+"↳ "+cause))
	}
}

// causeChain lists err and its single-unwrap causes, outermost first. A level
// whose text equals the previous one is dropped.
func causeChain(err error) []string {
	var chain []string
	for err != nil {
		msg := err.Error()
		if ae, ok := err.(*issue.ActionableError); ok {
			msg = ae.Format(true)
		}
		if len(chain) == 0 || chain[len(chain)-1] != msg {
			chain = append(chain, msg)
		}
		err = errors.Unwrap(err)
	}
	return chain
}
