// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package runtime

import (
	"os"
	"syscall"
)

// forwardedSignals are relayed from the dispatcher to the running child.
var forwardedSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT}

// terminalSignals are generated by the keyboard for the whole foreground
// process group.
var terminalSignals = []os.Signal{syscall.SIGINT, syscall.SIGQUIT}

// terminateSignal is sent to the child when the dispatcher's context is
// cancelled.
var terminateSignal os.Signal = syscall.SIGTERM

func sendSignal(p *os.Process, sig os.Signal) error {
	return p.Signal(sig)
}
