// SPDX-License-Identifier: MPL-2.0

package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/invowk/recipe/internal/issue"
	"github.com/invowk/recipe/internal/recipe"
	"github.com/invowk/recipe/internal/runtime"
	"github.com/invowk/recipe/internal/workspace"
	"github.com/invowk/recipe/pkg/types"

	"github.com/charmbracelet/log"
)

type (
	// Dispatcher resolves recipes and executes them through a Runner.
	Dispatcher struct {
		table     *recipe.Table
		runner    Runner
		workspace *workspace.Workspace
		logger    *log.Logger
		dryRun    bool
		out       io.Writer
	}

	// Option configures a Dispatcher.
	Option func(*Dispatcher)
)

// WithRunner replaces the default supervisor.
func WithRunner(r Runner) Option {
	return func(d *Dispatcher) { d.runner = r }
}

// WithLogger sets the logger for pre-spawn and post-exit records.
func WithLogger(l *log.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// WithWorkspace enables the workspace membership check.
func WithWorkspace(ws *workspace.Workspace) Option {
	return func(d *Dispatcher) { d.workspace = ws }
}

// WithDryRun prints each resolved command line to w instead of spawning it.
func WithDryRun(w io.Writer) Option {
	return func(d *Dispatcher) {
		d.dryRun = true
		d.out = w
	}
}

// New creates a Dispatcher over table. Without WithRunner, children are
// supervised on the process's own standard streams.
func New(table *recipe.Table, opts ...Option) *Dispatcher {
	d := &Dispatcher{table: table}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = log.New(io.Discard)
	}
	if d.runner == nil {
		d.runner = NewSupervisorRunner(runtime.NewSupervisor(d.logger))
	}
	if d.out == nil {
		d.out = os.Stdout
	}
	return d
}

// Dispatch resolves (alias, subCommand, args) and runs the result, returning
// the child's exit code. A non-zero child exit is not an error.
//
// Errors: an unknown alias or empty sub-command returns types.ExitUsage and
// spawns nothing; a child that cannot be started returns
// types.ExitSpawnFailure.
func (d *Dispatcher) Dispatch(ctx context.Context, alias recipe.Alias, subCommand string, args []string) (types.ExitCode, error) {
	inv, err := d.table.Resolve(alias, subCommand, args)
	if err != nil {
		return types.ExitUsage, resolveError(alias, err)
	}

	d.checkMembership(alias, subCommand)

	if d.dryRun {
		return d.printDryRun(inv)
	}

	d.logger.Debug("dispatching", "recipe", alias, "sub-command", subCommand, "command", inv.CommandLine())

	if inv.Watch != nil {
		return d.runWatched(ctx, inv)
	}

	code, err := d.runner.Run(ctx, inv)
	if err != nil {
		return code, spawnError(inv, err)
	}
	d.logger.Debug("recipe finished", "recipe", alias, "code", code)
	return code, nil
}

func (d *Dispatcher) printDryRun(inv recipe.Invocation) (types.ExitCode, error) {
	line := inv.CommandLine()
	if inv.Watch != nil {
		line += fmt.Sprintf("  # restarted on change, ignoring %s", strings.Join(inv.Watch.Ignore, ", "))
	}
	if _, err := fmt.Fprintln(d.out, line); err != nil {
		return types.ExitFailure, fmt.Errorf("write dry run: %w", err)
	}
	return types.ExitSuccess, nil
}

// checkMembership warns when a recipe targets a package the workspace
// manifest does not list. cargo reports the authoritative error, so the
// invocation always proceeds.
func (d *Dispatcher) checkMembership(alias recipe.Alias, subCommand string) {
	if d.workspace == nil || !d.workspace.Found() {
		return
	}
	r, ok := d.table.Lookup(alias)
	if !ok || d.workspace.HasMember(r.PackagePath()) {
		return
	}

	logFn := d.logger.Warn
	if _, special := r.Match(subCommand); !special {
		logFn = d.logger.Debug
	}
	logFn("package is not a workspace member", "package", r.Package, "manifest", d.workspace.Manifest)
}

// CheckAlias fails with the unknown recipe error when table has no recipe for
// alias. It performs no I/O and spawns nothing.
func CheckAlias(table *recipe.Table, alias recipe.Alias) error {
	if _, ok := table.Lookup(alias); ok {
		return nil
	}
	return resolveError(alias, &recipe.UnknownRecipeError{Alias: alias, Known: table.Aliases()})
}

func resolveError(alias recipe.Alias, err error) error {
	ec := issue.NewErrorContext().
		WithOperation("resolve recipe").
		WithResource(string(alias))

	var unknown *recipe.UnknownRecipeError
	switch {
	case errors.As(err, &unknown):
		known := make([]string, 0, len(unknown.Known))
		for _, a := range unknown.Known {
			known = append(known, string(a))
		}
		ec.WithSuggestion("Use one of: " + strings.Join(known, ", ")).
			WithSuggestion("Run 'recipe list' to see every recipe")
	case errors.Is(err, recipe.ErrEmptySubCommand):
		ec.WithSuggestion(fmt.Sprintf("Pass a sub-command, e.g. 'recipe %s build'", alias))
	}

	return ec.Wrap(err).BuildError()
}

func spawnError(inv recipe.Invocation, err error) error {
	if !errors.Is(err, runtime.ErrSpawnFailure) {
		return err
	}
	return issue.NewErrorContext().
		WithOperation("start child process").
		WithResource(inv.Executable).
		WithSuggestion(fmt.Sprintf("Check that %q is installed and on your PATH", inv.Executable)).
		Wrap(err).
		BuildError()
}
