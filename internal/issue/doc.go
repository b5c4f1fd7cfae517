// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// Errors carry the failed operation, the resource involved and remediation hints.
// A small catalog of Markdown guidance pages, rendered with glamour, backs the
// "view setup guidance" action offered for every terminal failure.
package issue
