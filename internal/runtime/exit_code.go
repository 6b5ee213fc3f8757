// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"os"
	"syscall"

	"github.com/invowk/recipe/pkg/types"
)

// exitCodeOf converts a finished process state into the dispatcher's exit
// code. A child killed by a signal reports 128+signo, the shell convention.
func exitCodeOf(state *os.ProcessState) types.ExitCode {
	if state == nil {
		return types.ExitFailure
	}
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return types.SignalExitCode(int(ws.Signal()))
	}
	code := state.ExitCode()
	if code < 0 {
		return types.ExitFailure
	}
	return types.ExitCode(code)
}
