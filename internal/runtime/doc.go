// SPDX-License-Identifier: MPL-2.0

// Package runtime runs child processes for ingestkit.
//
// Executor runs short-lived helper commands (version probes, pip, venv) and
// captures their output. Supervisor owns the single long-running analysis
// process and can terminate it, including any children it spawned.
package runtime
