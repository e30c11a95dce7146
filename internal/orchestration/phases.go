// Package orchestration runs the deployment phases strictly in sequence:
// prerequisite checks, then secret provisioning, then chart resolution,
// then the install invocation. A phase failure stops the run.
package orchestration

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"
)

// Phase is one sequential step of a deployment run.
type Phase interface {
	Name() string
	Run(ctx context.Context) error
}

// phaseFunc adapts a function to the Phase interface.
type phaseFunc struct {
	name string
	fn   func(ctx context.Context) error
}

func (p phaseFunc) Name() string { return p.name }

func (p phaseFunc) Run(ctx context.Context) error { return p.fn(ctx) }

// NewPhase wraps a function as a named Phase.
func NewPhase(name string, fn func(ctx context.Context) error) Phase {
	return phaseFunc{name: name, fn: fn}
}

// RunPhases executes all phases sequentially, stopping at the first failure.
func RunPhases(ctx context.Context, log logr.Logger, phases []Phase) error {
	start := time.Now()
	log.Info("starting deployment", "phases", len(phases))

	for i, phase := range phases {
		phaseStart := time.Now()
		log.Info("phase starting", "phase", phase.Name(), "position", fmt.Sprintf("%d/%d", i+1, len(phases)))

		if err := phase.Run(ctx); err != nil {
			log.Info("phase failed", "phase", phase.Name(), "error", err.Error())
			return fmt.Errorf("%s phase failed: %w", phase.Name(), err)
		}

		log.Info("phase completed", "phase", phase.Name(),
			"elapsed", time.Since(phaseStart).Round(time.Millisecond).String())
	}

	log.Info("deployment completed", "elapsed", time.Since(start).Round(time.Millisecond).String())
	return nil
}
