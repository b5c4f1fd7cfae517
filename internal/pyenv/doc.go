// SPDX-License-Identifier: MPL-2.0

// Package pyenv finds a working Python 3 interpreter.
//
// Every candidate command is probed concurrently with --version; the first
// probe that reports a Python 3 release at or above the configured minimum
// wins and the remaining probes are abandoned. The verified interpreter is
// cached on the Locator until Reset is called.
package pyenv
