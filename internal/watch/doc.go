// SPDX-License-Identifier: MPL-2.0

// Package watch reports debounced changes under a workspace root.
//
// It backs the builtin watch mode of `recipe service dev`: every burst of
// edits outside the ignored trees (build output, VCS metadata, editor swap
// files) is coalesced into one OnChange call carrying the changed paths.
package watch
