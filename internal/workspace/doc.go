// SPDX-License-Identifier: MPL-2.0

// Package workspace handles the files ingestkit writes into a project: saved
// digests and the staging folder that collects resources for a focused analysis.
package workspace
