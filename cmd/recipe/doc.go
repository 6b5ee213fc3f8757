// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the CLI commands for recipe.
//
// Every recipe alias is a Cobra command with flag parsing disabled: the
// dispatcher flags (--dry-run, --verbose, --config, --root) are recognised
// only before the sub-command, and everything from the sub-command on is
// forwarded to the child untouched. Execute wraps the tree with fang and is
// the only place that calls os.Exit.
package cmd
