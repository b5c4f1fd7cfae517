// SPDX-License-Identifier: MPL-2.0

// Package uroot runs file utilities from the u-root project
// (github.com/u-root/u-root) in-process, so staging copies and cleanups behave
// the same on every platform without external binaries.
//
// # Error Format
//
// Errors are prefixed with "[uroot]" and the utility name:
//
//	[uroot] cp: /source/file: no such file or directory
//	[uroot] rm: /protected: permission denied
//
// All copies stream through io.Copy, so memory use does not grow with file size.
package uroot
