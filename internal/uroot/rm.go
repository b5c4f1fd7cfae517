// SPDX-License-Identifier: MPL-2.0

package uroot

import (
	"context"

	"github.com/u-root/u-root/pkg/core/rm"
)

// RemoveAll removes path and everything below it. A missing path is not an error.
func RemoveAll(ctx context.Context, path string) error {
	w := &baseWrapper{name: "rm"}
	return w.run(ctx, rm.New(), "-r", "-f", path)
}
