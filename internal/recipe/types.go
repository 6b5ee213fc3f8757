// SPDX-License-Identifier: MPL-2.0

package recipe

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrUnknownRecipe is returned when an alias is not in the table.
	ErrUnknownRecipe = errors.New("unknown recipe")
	// ErrEmptySubCommand is returned when no sub-command is given.
	ErrEmptySubCommand = errors.New("empty sub-command")
	// ErrDuplicateRule is returned when two rules of one recipe share a literal.
	ErrDuplicateRule = errors.New("duplicate sub-command rule")
	// ErrDuplicateAlias is returned when two recipes share an alias.
	ErrDuplicateAlias = errors.New("duplicate recipe alias")
	// ErrInvalidRecipe is the sentinel error wrapped by InvalidRecipeError.
	ErrInvalidRecipe = errors.New("invalid recipe")
)

type (
	// Alias is the short name selecting a recipe (e.g., "cli").
	Alias string

	// TargetPackage is the name of the workspace package a recipe acts on.
	TargetPackage string

	// Recipe binds an alias to its target package and sub-command rules.
	Recipe struct {
		Alias   Alias
		Package TargetPackage
		// Path is the package directory relative to the workspace root.
		// Empty means the directory is named after the package.
		Path string
		// Rules are checked in order; first literal match wins.
		Rules []Rule
	}

	// Rule maps one literal sub-command to a rewrite policy.
	Rule struct {
		Literal string
		Policy  Policy
	}

	// Policy turns a matched sub-command into an Invocation. The set of
	// implementations is closed: Passthrough and Rewrite.
	Policy interface {
		build(t target, subCommand string, args []string) Invocation
		kind() string
	}

	// Passthrough forwards the sub-command unchanged to the build tool against
	// the recipe's package. Every recipe falls back to it.
	Passthrough struct{}

	// Rewrite replaces the default invocation.
	Rewrite struct {
		// Executable replaces the build tool. Empty keeps the build tool.
		Executable string
		// LeadingArgs are placed before the caller's trailing arguments.
		LeadingArgs []string
		// TrailingArgs are placed after the caller's trailing arguments.
		TrailingArgs []string
		// Env is applied to the child process only.
		Env map[string]string
		// Offline appends OfflineFlag after LeadingArgs and marks the
		// invocation as offline.
		Offline bool
		// Watch, when set, asks the dispatcher to supervise the invocation
		// under the built-in watcher instead of running it once.
		Watch *WatchSpec
	}

	// WatchSpec describes how the built-in watcher re-runs an invocation.
	WatchSpec struct {
		// Ignore are doublestar patterns relative to the workspace root.
		Ignore   []string
		Debounce time.Duration
	}

	// Invocation is the fully resolved execution unit.
	Invocation struct {
		Executable string
		Args       []string
		// Env holds overrides layered on top of the parent environment for
		// the child only.
		Env map[string]string
		// Dir is the working directory of the child (the workspace root).
		Dir     string
		Offline bool
		Watch   *WatchSpec
	}

	// UnknownRecipeError is returned by Resolve for an alias not in the table.
	// It wraps ErrUnknownRecipe for errors.Is() compatibility.
	UnknownRecipeError struct {
		Alias Alias
		Known []Alias
	}

	// InvalidRecipeError is returned when a recipe definition is malformed.
	InvalidRecipeError struct {
		Alias  Alias
		Reason string
	}

	// target is the per-recipe context a policy builds against.
	target struct {
		buildTool string
		pkg       TargetPackage
		path      string
		dir       string
	}
)

// String returns the alias as a string.
func (a Alias) String() string { return string(a) }

// String returns the package name as a string.
func (p TargetPackage) String() string { return string(p) }

// Error implements the error interface.
func (e *UnknownRecipeError) Error() string {
	known := make([]string, len(e.Known))
	for i, a := range e.Known {
		known[i] = string(a)
	}
	return fmt.Sprintf("unknown recipe %q (available: %s)", e.Alias, strings.Join(known, ", "))
}

// Unwrap returns ErrUnknownRecipe for errors.Is() compatibility.
func (e *UnknownRecipeError) Unwrap() error { return ErrUnknownRecipe }

// Error implements the error interface.
func (e *InvalidRecipeError) Error() string {
	return fmt.Sprintf("invalid recipe %q: %s", e.Alias, e.Reason)
}

// Unwrap returns ErrInvalidRecipe for errors.Is() compatibility.
func (e *InvalidRecipeError) Unwrap() error { return ErrInvalidRecipe }

// PackagePath returns the package directory relative to the workspace root.
func (r Recipe) PackagePath() string {
	if r.Path != "" {
		return r.Path
	}
	return string(r.Package)
}

// Kind reports "passthrough" or "rewrite".
func (r Rule) Kind() string { return r.Policy.kind() }
