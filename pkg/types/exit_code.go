// SPDX-License-Identifier: MPL-2.0

// Package types holds small value types shared by the dispatcher layers.
package types

import (
	"errors"
	"fmt"
	"strconv"
)

const (
	// ExitSuccess is returned when the child exits cleanly.
	ExitSuccess ExitCode = 0
	// ExitFailure is the generic failure code (configuration and internal errors).
	ExitFailure ExitCode = 1
	// ExitUsage is returned for caller errors such as an unknown recipe alias.
	// No process is spawned when this code is produced by the dispatcher.
	ExitUsage ExitCode = 2
	// ExitSpawnFailure is returned when the resolved executable cannot be
	// located or started. It mirrors the shell convention for "command not found".
	ExitSpawnFailure ExitCode = 127
	// signalExitBase is added to a signal number when a child is killed by it.
	signalExitBase ExitCode = 128
)

// ErrInvalidExitCode is the sentinel error wrapped by InvalidExitCodeError.
var ErrInvalidExitCode = errors.New("invalid exit code")

type (
	// ExitCode represents a process exit status code.
	// Exit codes are in the range 0-255 on POSIX systems.
	// The zero value (0) means success.
	ExitCode int

	// InvalidExitCodeError is returned when an ExitCode is outside the
	// valid range (0-255).
	InvalidExitCodeError struct {
		Value ExitCode
	}
)

// Error implements the error interface.
func (e *InvalidExitCodeError) Error() string {
	return fmt.Sprintf("invalid exit code %d (must be in range 0-255)", e.Value)
}

// Unwrap returns ErrInvalidExitCode so callers can use errors.Is for programmatic detection.
func (e *InvalidExitCodeError) Unwrap() error { return ErrInvalidExitCode }

// Validate returns an error if the ExitCode is outside the valid range (0-255).
func (c ExitCode) Validate() error {
	if c < 0 || c > 255 {
		return &InvalidExitCodeError{Value: c}
	}
	return nil
}

// IsSuccess returns true if the exit code indicates successful execution.
func (c ExitCode) IsSuccess() bool { return c == 0 }

// String returns the decimal string representation of the ExitCode.
func (c ExitCode) String() string { return strconv.Itoa(int(c)) }

// SignalExitCode returns the conventional exit code for a process killed by
// the given signal number (128 + signo).
func SignalExitCode(signo int) ExitCode {
	return signalExitBase + ExitCode(signo)
}
