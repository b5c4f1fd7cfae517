// SPDX-License-Identifier: MPL-2.0

package uroot

import (
	"context"

	"github.com/u-root/u-root/pkg/core/mkdir"
)

// MkdirAll creates path and any missing parents.
func MkdirAll(ctx context.Context, path string) error {
	w := &baseWrapper{name: "mkdir"}
	return w.run(ctx, mkdir.New(), "-p", path)
}
