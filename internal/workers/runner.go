package workers

import (
	"context"

	"github.com/cardfile/cardfile/internal/ingest"
	"github.com/cardfile/cardfile/internal/think"
)

// EngineRunner adapts the suggestion engine and context refiner to the
// AnalysisRunner surface the worker consumes.
type EngineRunner struct {
	engine  *think.Engine
	refiner *ingest.Refiner
}

// NewEngineRunner creates a runner over the suggestion engine and refiner
func NewEngineRunner(engine *think.Engine, refiner *ingest.Refiner) *EngineRunner {
	return &EngineRunner{
		engine:  engine,
		refiner: refiner,
	}
}

// RunAnalysis executes a full suggestion analysis and reports how many
// suggestions were stored. Partial persistence failures surface as errors
// after the successful drafts are counted.
func (r *EngineRunner) RunAnalysis(ctx context.Context) (int, error) {
	created, err := r.engine.Analyze(ctx)
	return len(created), err
}

// RunContextSweep seeds project contexts from envelopes and purges stale ones
func (r *EngineRunner) RunContextSweep(ctx context.Context) error {
	return r.refiner.Sweep(ctx)
}

var _ AnalysisRunner = (*EngineRunner)(nil)
