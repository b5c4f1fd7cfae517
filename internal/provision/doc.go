// SPDX-License-Identifier: MPL-2.0

// Package provision makes the analysis package importable by some Python
// interpreter.
//
// A Provisioner walks an ordered list of strategies: install into the user
// site of the system interpreter, then into a virtual environment inside the
// project, then into one under the home directory. A strategy either succeeds,
// fails in a way that lets the next one try, or fails terminally.
package provision
