// SPDX-License-Identifier: MPL-2.0

// Package config handles the dispatcher configuration using Viper with CUE as the file format.
//
// Configuration is read from the first existing file of: the --config flag,
// <config dir>/recipe/config.cue (XDG on Linux, ~/Library/Application Support on macOS,
// %APPDATA% on Windows) and ./recipe.cue. Without a file the built-in defaults apply.
// RECIPE_* environment variables override single keys (RECIPE_WATCH_MODE=builtin).
//
// Files are validated against the embedded CUE schema (config_schema.cue) before they
// are merged into Viper, so type and enum errors point at the offending field.
package config
