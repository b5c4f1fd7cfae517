// SPDX-License-Identifier: MPL-2.0

package uroot

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/u-root/u-root/pkg/core/cp"
)

// Copy copies src to dst recursively without following symbolic links.
// An existing dst is never overwritten.
func Copy(ctx context.Context, src, dst string) error {
	w := &baseWrapper{name: "cp"}
	// u-root cp overwrites silently unless -i is given, and -i would prompt.
	if _, err := os.Lstat(dst); err == nil {
		return wrapError(w.name, fmt.Errorf("%s: %w", dst, fs.ErrExist))
	} else if !errors.Is(err, fs.ErrNotExist) {
		return wrapError(w.name, err)
	}
	return w.run(ctx, cp.New(), "-r", "-P", src, dst)
}
