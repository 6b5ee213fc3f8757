// SPDX-License-Identifier: MPL-2.0

package dispatch

import (
	"context"
	"fmt"
	"os/signal"

	"github.com/invowk/recipe/internal/recipe"
	"github.com/invowk/recipe/internal/runtime"
	"github.com/invowk/recipe/internal/watch"
	"github.com/invowk/recipe/pkg/types"
)

// runWatched runs inv, then restarts it after every debounced change under
// inv.Dir until ctx is cancelled or a termination signal arrives. The old
// child is terminated and awaited before the new one starts. The exit code
// is that of the last child.
func (d *Dispatcher) runWatched(ctx context.Context, inv recipe.Invocation) (types.ExitCode, error) {
	ctx, stop := signal.NotifyContext(ctx, runtime.TerminationSignals()...)
	defer stop()

	proc, err := d.runner.Start(inv)
	if err != nil {
		return types.ExitSpawnFailure, spawnError(inv, err)
	}
	lastCode := types.ExitSuccess

	restart := func(_ context.Context, changed []string) error {
		if proc != nil {
			select {
			case <-proc.Done():
				d.logger.Debug("previous run had exited", "code", proc.Wait())
			default:
			}
			lastCode = proc.Terminate()
			proc = nil
		}

		d.logger.Info("restarting", "changed", len(changed), "first", changed[0])
		next, err := d.runner.Start(inv)
		if err != nil {
			lastCode = types.ExitSpawnFailure
			return spawnError(inv, err)
		}
		proc = next
		return nil
	}

	w, err := watch.New(watch.Config{
		Root:     inv.Dir,
		Ignore:   inv.Watch.Ignore,
		Debounce: inv.Watch.Debounce,
		OnChange: restart,
		Logger:   d.logger,
	})
	if err != nil {
		proc.Terminate()
		return types.ExitFailure, fmt.Errorf("watch %s: %w", inv.Dir, err)
	}

	d.logger.Info("watching for changes", "root", w.Root())

	// OnChange runs on this goroutine, inside Run.
	runErr := w.Run(ctx)

	if proc != nil {
		lastCode = proc.Terminate()
	}
	if runErr != nil {
		return lastCode, runErr
	}
	return lastCode, nil
}
