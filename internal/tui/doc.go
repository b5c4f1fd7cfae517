// SPDX-License-Identifier: MPL-2.0

// Package tui is the interactive analysis panel: a bubbletea program that
// shows progress while an analysis runs, then the digest in three sections
// with copy and save actions, or the failure with setup guidance.
package tui
