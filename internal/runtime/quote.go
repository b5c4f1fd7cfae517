// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"strconv"
	"strings"

	"mvdan.cc/sh/v3/shell"
	"mvdan.cc/sh/v3/syntax"
)

// FormatCommand renders argv as a line that can be pasted into a POSIX shell.
func FormatCommand(argv []string) string {
	parts := make([]string, len(argv))
	for i, arg := range argv {
		quoted, err := syntax.Quote(arg, syntax.LangBash)
		if err != nil {
			// Quote rejects NUL bytes and similar; fall back to Go quoting for display.
			quoted = strconv.Quote(arg)
		}
		parts[i] = quoted
	}
	return strings.Join(parts, " ")
}

// SplitCommand parses a shell-style command line such as `py -3` into argv.
// Environment variables are expanded from the current process.
func SplitCommand(line string) ([]string, error) {
	return shell.Fields(line, nil)
}
