// SPDX-License-Identifier: MPL-2.0

// Package analysis turns a directory into a digest.
//
// A Runner verifies that a Python 3 interpreter exists and that the analysis
// package is installed, then runs an embedded script against the target under
// the process supervisor and decodes its JSON output. Progress is reported as
// an append-only list of status messages.
package analysis
