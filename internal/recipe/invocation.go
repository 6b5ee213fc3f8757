// SPDX-License-Identifier: MPL-2.0

package recipe

import (
	"maps"
	"slices"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// EnvSlice returns the environment overrides as sorted KEY=VALUE pairs.
func (i Invocation) EnvSlice() []string {
	out := make([]string, 0, len(i.Env))
	for _, k := range slices.Sorted(maps.Keys(i.Env)) {
		out = append(out, k+"="+i.Env[k])
	}
	return out
}

// Argv returns the executable followed by its arguments.
func (i Invocation) Argv() []string {
	argv := make([]string, 0, 1+len(i.Args))
	argv = append(argv, i.Executable)
	return append(argv, i.Args...)
}

// CommandLine renders the invocation as a single bash-quoted line with the
// environment overrides as assignment prefixes, e.g.
//
//	RUST_LOG=debug cargo watch --ignore cli -x 'shuttle run'
func (i Invocation) CommandLine() string {
	words := make([]string, 0, len(i.Env)+1+len(i.Args))
	for _, kv := range i.EnvSlice() {
		name, value, _ := strings.Cut(kv, "=")
		words = append(words, name+"="+quote(value))
	}
	for _, a := range i.Argv() {
		words = append(words, quote(a))
	}
	return strings.Join(words, " ")
}

// quote shell-quotes s for bash. Strings bash cannot represent (e.g., NUL
// bytes) are returned as-is.
func quote(s string) string {
	q, err := syntax.Quote(s, syntax.LangBash)
	if err != nil {
		return s
	}
	return q
}
