// SPDX-License-Identifier: MPL-2.0

package pyenv

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/mod/semver"
)

// versionPattern extracts the release from output such as "Python 3.12.4".
var versionPattern = regexp.MustCompile(`(?i)python\s+(\d+)\.(\d+)(?:\.(\d+))?`)

// parseVersion validates --version output and returns the dotted release.
// The output must name the runtime and report major version 3.
func parseVersion(output string) (string, error) {
	lower := strings.ToLower(output)
	if !strings.Contains(lower, "python") {
		return "", fmt.Errorf("%w: %q", ErrNotPython, strings.TrimSpace(output))
	}
	m := versionPattern.FindStringSubmatch(output)
	if m == nil || m[1] != "3" {
		return "", fmt.Errorf("%w: %q", ErrNotPython3, strings.TrimSpace(output))
	}
	version := m[1] + "." + m[2]
	if m[3] != "" {
		version += "." + m[3]
	}
	return version, nil
}

// atLeast reports whether version >= minimum; an empty minimum accepts everything.
func atLeast(version, minimum string) bool {
	if minimum == "" {
		return true
	}
	return semver.Compare("v"+version, "v"+minimum) >= 0
}
