// SPDX-License-Identifier: MPL-2.0

// Package dispatch runs one recipe: resolve the alias and sub-command
// against the recipe table, then hand the invocation to a Runner and relay
// the child's exit code.
//
// Resolution failures never spawn a process. The builtin watch mode of
// `service dev` is also driven from here: the child is restarted after every
// debounced change, with at most one child alive at a time.
package dispatch
