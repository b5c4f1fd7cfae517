// SPDX-License-Identifier: MPL-2.0

// Package config loads ingestkit settings.
//
// Defaults and INGESTKIT_* environment overrides come from Viper; the optional
// config.cue file is validated against an embedded CUE schema before it is
// merged on top of the defaults.
package config
