// SPDX-License-Identifier: MPL-2.0

// Package workspace locates the Cargo workspace the dispatcher runs in.
//
// Every recipe runs with the workspace root as its working directory, so
// `recipe cli ir` behaves the same from any sub-directory of the repository.
package workspace
