// SPDX-License-Identifier: MPL-2.0

//go:build windows

package runtime

import "os"

// forwardedSignals are relayed from the dispatcher to the running child.
var forwardedSignals = []os.Signal{os.Interrupt}

// terminalSignals are delivered by the console to every attached process.
var terminalSignals = []os.Signal{os.Interrupt}

// terminateSignal is sent to the child when the dispatcher's context is
// cancelled.
var terminateSignal = os.Interrupt

// sendSignal kills the child: Windows cannot deliver os.Interrupt to another
// process. Console children already received the Ctrl+C event themselves.
func sendSignal(p *os.Process, _ os.Signal) error {
	return p.Kill()
}
