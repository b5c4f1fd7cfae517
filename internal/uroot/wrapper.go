// SPDX-License-Identifier: MPL-2.0

package uroot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/u-root/u-root/pkg/core"
)

// baseWrapper provides common functionality for pkg/core wrappers.
type baseWrapper struct {
	name string
	dir  string
}

// Name returns the command name.
func (w *baseWrapper) Name() string {
	return w.name
}

// run configures cmd for w and executes it with args. Anything the utility
// prints on stderr becomes part of the returned error.
func (w *baseWrapper) run(ctx context.Context, cmd core.Command, args ...string) error {
	var stderr bytes.Buffer
	cmd.SetIO(bytes.NewReader(nil), io.Discard, &stderr)
	cmd.SetWorkingDir(w.dir)
	cmd.SetLookupEnv(os.LookupEnv)

	err := cmd.RunContext(ctx, args...)
	if err == nil && stderr.Len() > 0 {
		err = errors.New(strings.TrimSpace(stderr.String()))
	}
	return wrapError(w.name, err)
}

// wrapError wraps an error with the [uroot] prefix format. Returns nil if err is nil.
func wrapError(cmdName string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("[uroot] %s: %w", cmdName, err)
}
