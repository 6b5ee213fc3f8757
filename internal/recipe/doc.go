// SPDX-License-Identifier: MPL-2.0

// Package recipe holds the static recipe table of the dispatcher.
//
// A recipe is selected by a short alias (cli, service, libs, impl) and targets
// one package of the Cargo workspace. Each recipe carries an ordered list of
// sub-command rules; the first rule whose literal matches the requested
// sub-command decides how the final Invocation is built, and an unmatched
// sub-command falls through to the recipe's passthrough policy:
//
//	<build-tool> <sub-command> --package <target> <trailing args...>
//
// Tables are built once at process start and never mutated. Resolve returns a
// fresh Invocation on every call, so resolving the same input twice yields
// deeply equal results that share no memory with the table.
package recipe
