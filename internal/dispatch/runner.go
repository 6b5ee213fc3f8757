// SPDX-License-Identifier: MPL-2.0

package dispatch

import (
	"context"

	"github.com/invowk/recipe/internal/recipe"
	"github.com/invowk/recipe/internal/runtime"
	"github.com/invowk/recipe/pkg/types"
)

type (
	// Runner spawns invocations. *runtime.Supervisor is the production
	// implementation, adapted by NewSupervisorRunner.
	Runner interface {
		// Run spawns inv and blocks until it exits.
		Run(ctx context.Context, inv recipe.Invocation) (types.ExitCode, error)
		// Start spawns inv and returns without waiting.
		Start(inv recipe.Invocation) (Process, error)
	}

	// Process is a started child.
	Process interface {
		Done() <-chan struct{}
		Terminate() types.ExitCode
		Wait() types.ExitCode
	}

	supervisorRunner struct {
		s *runtime.Supervisor
	}
)

// NewSupervisorRunner adapts a Supervisor to Runner.
func NewSupervisorRunner(s *runtime.Supervisor) Runner {
	return supervisorRunner{s: s}
}

func (r supervisorRunner) Run(ctx context.Context, inv recipe.Invocation) (types.ExitCode, error) {
	return r.s.Run(ctx, inv)
}

func (r supervisorRunner) Start(inv recipe.Invocation) (Process, error) {
	p, err := r.s.Start(inv)
	if err != nil {
		return nil, err
	}
	return p, nil
}
