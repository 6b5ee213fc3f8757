// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"errors"
	"fmt"
)

// ErrSpawnFailure is the sentinel error wrapped by SpawnError.
var ErrSpawnFailure = errors.New("failed to start child process")

// SpawnError is returned when the resolved executable cannot be located or
// started. Err holds the underlying OS error.
type SpawnError struct {
	Executable string
	Err        error
}

// Error implements the error interface.
func (e *SpawnError) Error() string {
	return fmt.Sprintf("start %q: %v", e.Executable, e.Err)
}

// Unwrap returns both the sentinel and the OS error so errors.Is matches
// ErrSpawnFailure as well as exec.ErrNotFound or fs.ErrPermission.
func (e *SpawnError) Unwrap() []error { return []error{ErrSpawnFailure, e.Err} }
