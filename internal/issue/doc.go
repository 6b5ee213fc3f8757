// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved and
// remediation hints. The issue catalog holds Markdown help for the failures a
// developer is most likely to hit (unknown recipe, missing tool, broken
// configuration); the CLI renders it with glamour below the error.
package issue
