// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs an action when files below a directory change.
//
// Events are debounced and coalesced so one burst of writes produces one
// callback. A burst that settles while the previous callback is still running
// triggers OnBusy, which is expected to make that callback return early; the
// new changes are then delivered in a fresh callback.
package watch
