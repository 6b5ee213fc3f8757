// SPDX-License-Identifier: MPL-2.0

package recipe

import "strconv"

const (
	// DefaultBuildTool drives every passthrough invocation.
	DefaultBuildTool = "cargo"
	// DefaultLoadGenerator is the HTTP load generator used by `service stress`.
	DefaultLoadGenerator = "oha"

	// AliasCLI selects the CLI package.
	AliasCLI Alias = "cli"
	// AliasService selects the network service package.
	AliasService Alias = "service"
	// AliasLibs selects the shared libraries package.
	AliasLibs Alias = "libs"
	// AliasImpl selects the derive/code-generation package.
	AliasImpl Alias = "impl"

	// DebugLogEnv is the logging filter variable read by the service.
	DebugLogEnv = "RUST_LOG"
	// DebugLogLevel is the value DebugLogEnv is set to by `service dev`.
	DebugLogLevel = "debug"

	// ServiceRunCommand is the cloud-deployment run command the watcher re-runs.
	ServiceRunCommand = "shuttle run"

	// StressEndpoint is the fixed target of `service stress`.
	StressEndpoint = "http://localhost:8000/v1/record/all"
	// StressConcurrency is the number of concurrent connections.
	StressConcurrency = 50
	// StressRequests is the total number of requests.
	StressRequests = 250
	// StressRate is the request rate per second.
	StressRate = 4
)

// DefaultRecipes returns the workspace's recipe definitions. The result is
// freshly allocated on every call.
func DefaultRecipes(opts Options) []Recipe {
	opts = opts.withDefaults()

	return []Recipe{
		{
			Alias:   AliasCLI,
			Package: "cli",
			Rules: []Rule{
				{Literal: "ir", Policy: Rewrite{
					LeadingArgs: []string{"install", "--path", PathPlaceholder},
				}},
				{Literal: "ir:now", Policy: Rewrite{
					LeadingArgs: []string{"install", "--path", PathPlaceholder},
					Offline:     true,
				}},
				{Literal: "build:now", Policy: Rewrite{
					LeadingArgs: []string{"build", PackageFlag, PackagePlaceholder},
					Offline:     true,
				}},
			},
		},
		{
			Alias:   AliasService,
			Package: "service",
			Rules: []Rule{
				{Literal: "dev", Policy: devPolicy(opts)},
				{Literal: "stress", Policy: Rewrite{
					Executable: opts.LoadGenerator,
					LeadingArgs: []string{
						"-c", strconv.Itoa(StressConcurrency),
						"-n", strconv.Itoa(StressRequests),
						"-q", strconv.Itoa(StressRate),
					},
					TrailingArgs: []string{StressEndpoint},
				}},
			},
		},
		{Alias: AliasLibs, Package: "libs"},
		{Alias: AliasImpl, Package: "impl"},
	}
}

// devPolicy re-runs the service under the cloud runner whenever sources
// change, never watching the CLI package.
func devPolicy(opts Options) Rewrite {
	env := map[string]string{DebugLogEnv: DebugLogLevel}

	if opts.BuiltinWatch {
		return Rewrite{
			LeadingArgs: []string{"shuttle", "run"},
			Env:         env,
			Watch: &WatchSpec{
				Ignore:   []string{"cli/**", "target/**"},
				Debounce: opts.WatchDebounce,
			},
		}
	}

	return Rewrite{
		LeadingArgs: []string{"watch", "--ignore", "cli", "-x", ServiceRunCommand},
		Env:         env,
	}
}
