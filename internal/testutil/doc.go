// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Helpers cover directory and file creation (MustMkdirAll, MustWriteFile) and
// throwaway Cargo workspaces (NewCargoWorkspace).
package testutil
