// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"slices"
	"sync"

	"github.com/invowk/recipe/internal/recipe"
	"github.com/invowk/recipe/pkg/types"

	"github.com/charmbracelet/log"
	"golang.org/x/term"
)

type (
	// Supervisor runs invocations as child processes.
	Supervisor struct {
		// Stdin, Stdout and Stderr default to the dispatcher's own streams.
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
		// Logger receives debug records about spawn and exit. nil discards them.
		Logger *log.Logger

		// execCommand is swapped by tests to run a helper process instead.
		execCommand func(name string, args ...string) *exec.Cmd
		// isTerminal overrides the stdin terminal check in tests.
		isTerminal func() bool
	}

	// Process is a started child.
	Process struct {
		cmd  *exec.Cmd
		done chan struct{}

		mu      sync.Mutex
		waitErr error
	}
)

// NewSupervisor creates a Supervisor bound to the process's standard streams.
func NewSupervisor(logger *log.Logger) *Supervisor {
	return &Supervisor{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Logger: logger,
	}
}

// Run starts inv, relays termination signals and context cancellation to it,
// and blocks until it exits. A non-zero child exit is not an error: the code
// is returned verbatim. The only error is a SpawnError, returned together
// with types.ExitSpawnFailure.
func (s *Supervisor) Run(ctx context.Context, inv recipe.Invocation) (types.ExitCode, error) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, forwardedSignals...)
	defer signal.Stop(sigCh)

	p, err := s.Start(inv)
	if err != nil {
		return types.ExitSpawnFailure, err
	}

	code := p.supervise(ctx, sigCh, s.terminalDelivered(), s.logger())
	s.logger().Debug("child exited", "executable", inv.Executable, "code", code)
	return code, nil
}

// Start spawns inv without waiting for it. Callers must eventually call Wait.
func (s *Supervisor) Start(inv recipe.Invocation) (*Process, error) {
	newCmd := s.execCommand
	if newCmd == nil {
		newCmd = exec.Command
	}
	cmd := newCmd(inv.Executable, inv.Args...)
	cmd.Dir = inv.Dir
	cmd.Env = MergeEnv(os.Environ(), inv.Env)
	cmd.Stdin = s.stdin()
	cmd.Stdout = s.stdout()
	cmd.Stderr = s.stderr()

	s.logger().Debug("spawning child",
		"executable", inv.Executable,
		"args", inv.Args,
		"dir", inv.Dir,
		"env", inv.EnvSlice(),
	)

	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Executable: inv.Executable, Err: err}
	}

	p := &Process{cmd: cmd, done: make(chan struct{})}
	go func() {
		err := cmd.Wait()
		p.mu.Lock()
		p.waitErr = err
		p.mu.Unlock()
		close(p.done)
	}()
	return p, nil
}

// supervise forwards signals until the child exits, except those in skip,
// which the child already received from the terminal. Context cancellation is
// forwarded once as terminateSignal; it never abandons the child.
func (p *Process) supervise(ctx context.Context, sigCh <-chan os.Signal, skip []os.Signal, logger *log.Logger) types.ExitCode {
	ctxDone := ctx.Done()
	for {
		select {
		case <-p.done:
			return p.exitCode()
		case sig := <-sigCh:
			if slices.Contains(skip, sig) {
				logger.Debug("child received signal from the terminal", "signal", sig, "pid", p.Pid())
				continue
			}
			logger.Debug("forwarding signal to child", "signal", sig, "pid", p.Pid())
			if err := p.Signal(sig); err != nil {
				logger.Debug("signal delivery failed", "error", err)
			}
		case <-ctxDone:
			ctxDone = nil
			logger.Debug("context cancelled, terminating child", "pid", p.Pid())
			if err := p.Signal(terminateSignal); err != nil {
				logger.Debug("signal delivery failed", "error", err)
			}
		}
	}
}

// Pid returns the child's process id.
func (p *Process) Pid() int { return p.cmd.Process.Pid }

// Done is closed once the child has exited.
func (p *Process) Done() <-chan struct{} { return p.done }

// Signal delivers sig to the child. Signalling an exited child is a no-op.
func (p *Process) Signal(sig os.Signal) error {
	select {
	case <-p.done:
		return nil
	default:
	}
	if err := sendSignal(p.cmd.Process, sig); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}

// Terminate sends terminateSignal and waits for the child to exit.
func (p *Process) Terminate() types.ExitCode {
	_ = p.Signal(terminateSignal) //nolint:errcheck // the child may already be gone
	return p.Wait()
}

// Wait blocks until the child exits and returns its exit code.
func (p *Process) Wait() types.ExitCode {
	<-p.done
	return p.exitCode()
}

func (p *Process) exitCode() types.ExitCode {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd.ProcessState != nil {
		return exitCodeOf(p.cmd.ProcessState)
	}
	if p.waitErr != nil {
		return types.ExitFailure
	}
	return types.ExitSuccess
}

// terminalDelivered returns the signals the child gets straight from the
// terminal. A child reading the dispatcher's terminal shares its foreground
// process group, so Ctrl+C and Ctrl+\ reach it without help.
func (s *Supervisor) terminalDelivered() []os.Signal {
	if !s.sharesTerminal() {
		return nil
	}
	return terminalSignals
}

func (s *Supervisor) sharesTerminal() bool {
	if s.isTerminal != nil {
		return s.isTerminal()
	}
	f, ok := s.stdin().(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (s *Supervisor) logger() *log.Logger {
	if s.Logger == nil {
		return discardLogger
	}
	return s.Logger
}

func (s *Supervisor) stdin() io.Reader {
	if s.Stdin == nil {
		return os.Stdin
	}
	return s.Stdin
}

func (s *Supervisor) stdout() io.Writer {
	if s.Stdout == nil {
		return os.Stdout
	}
	return s.Stdout
}

func (s *Supervisor) stderr() io.Writer {
	if s.Stderr == nil {
		return os.Stderr
	}
	return s.Stderr
}

var discardLogger = log.New(io.Discard)

// TerminationSignals returns the signals Run forwards to the child. Callers
// that supervise children through Start relay the same set.
func TerminationSignals() []os.Signal {
	return slices.Clone(forwardedSignals)
}
