// SPDX-License-Identifier: MPL-2.0

package recipe

import (
	"maps"
	"slices"
	"strings"
)

const (
	// PackagePlaceholder is replaced by the recipe's package name in rewrite arguments.
	PackagePlaceholder = "{package}"
	// PathPlaceholder is replaced by the recipe's package directory in rewrite arguments.
	PathPlaceholder = "{path}"
	// OfflineFlag is the build tool flag that forbids index updates and downloads.
	OfflineFlag = "--offline"
	// PackageFlag selects the workspace package for passthrough invocations.
	PackageFlag = "--package"
)

var (
	_ Policy = Passthrough{}
	_ Policy = Rewrite{}
)

func (Passthrough) kind() string { return "passthrough" }

func (Passthrough) build(t target, subCommand string, args []string) Invocation {
	argv := make([]string, 0, 3+len(args))
	argv = append(argv, subCommand, PackageFlag, string(t.pkg))
	argv = append(argv, args...)
	return Invocation{
		Executable: t.buildTool,
		Args:       argv,
		Dir:        t.dir,
	}
}

func (Rewrite) kind() string { return "rewrite" }

func (r Rewrite) build(t target, _ string, args []string) Invocation {
	exe := r.Executable
	if exe == "" {
		exe = t.buildTool
	}

	expand := strings.NewReplacer(PackagePlaceholder, string(t.pkg), PathPlaceholder, t.path)

	argv := make([]string, 0, len(r.LeadingArgs)+1+len(args)+len(r.TrailingArgs))
	for _, a := range r.LeadingArgs {
		argv = append(argv, expand.Replace(a))
	}
	if r.Offline {
		argv = append(argv, OfflineFlag)
	}
	argv = append(argv, args...)
	for _, a := range r.TrailingArgs {
		argv = append(argv, expand.Replace(a))
	}

	inv := Invocation{
		Executable: exe,
		Args:       argv,
		Dir:        t.dir,
		Offline:    r.Offline,
	}
	if len(r.Env) > 0 {
		inv.Env = maps.Clone(r.Env)
	}
	if r.Watch != nil {
		inv.Watch = &WatchSpec{
			Ignore:   slices.Clone(r.Watch.Ignore),
			Debounce: r.Watch.Debounce,
		}
	}
	return inv
}
