// SPDX-License-Identifier: MPL-2.0

// Package runtime spawns and supervises the child process of a resolved
// invocation.
//
// The child inherits the dispatcher's standard streams unless the Supervisor
// overrides them, receives the parent environment plus the invocation's
// overrides (the parent environment itself is never mutated), and runs in the
// invocation's working directory. Termination signals received by the
// dispatcher, as well as context cancellation, are forwarded to the child; the
// supervisor keeps waiting until the child exits so no child is orphaned.
// No timeout is imposed on the child and nothing is retried.
package runtime
