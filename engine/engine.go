package engine

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"

	"reportauto/domain/recipe"
	"reportauto/domain/table"
	"reportauto/internal"
	"reportauto/internal/errors"
)

// Engine runs validated recipes. It holds no per-execution state, so a
// single Engine serves concurrent requests.
type Engine struct {
	log         *internal.Logger
	parallelism int64
}

// New creates an engine bounded to the given number of concurrently
// executing steps.
func New(log *internal.Logger, parallelism int) *Engine {
	if parallelism < 1 {
		parallelism = 1
	}
	return &Engine{log: log.With("Engine"), parallelism: int64(parallelism)}
}

// Execute runs every step of the recipe against the table and assembles
// the report bundle. Step failures are soft: a failed step becomes an
// error section and the remaining steps still run. Only recipe
// validation and context cancellation abort the whole execution.
func (e *Engine) Execute(ctx context.Context, tbl *table.Table, rec *recipe.Recipe) (*Bundle, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}

	outcomes := make([]stepOutcome, len(rec.Steps))
	sem := semaphore.NewWeighted(e.parallelism)
	var wg sync.WaitGroup

	base := newView(tbl)
	for i := range rec.Steps {
		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		wg.Add(1)
		go func(slot int, step *recipe.Step) {
			defer wg.Done()
			defer sem.Release(1)
			outcomes[slot] = e.runStep(base, step)
		}(i, &rec.Steps[i])
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	failed := 0
	for i := range outcomes {
		if outcomes[i].err != nil {
			failed++
			e.log.Warn("step %q failed: %v", rec.Steps[i].OutputName, outcomes[i].err)
		}
	}
	e.log.Info("executed %d steps (%d failed)", len(rec.Steps), failed)

	return assemble(rec, tbl, outcomes)
}

// runStep filters, dispatches and recovers. A panic inside an analysis
// is downgraded to a per-step compute error so one pathological step
// cannot take down the request.
func (e *Engine) runStep(base view, step *recipe.Step) (out stepOutcome) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("step %q panicked: %v", step.OutputName, r)
			out = stepOutcome{err: errors.Computef("analysis panicked: %v", r)}
		}
	}()

	v, err := applyFilters(base, step.Filters)
	if err != nil {
		return stepOutcome{err: err}
	}

	var section *SectionResult
	var artifact *artifactRows
	switch step.Type {
	case recipe.KindCustom:
		section, artifact, err = runCustom(v, step)
	case recipe.KindCorrelation:
		section, artifact, err = runCorrelation(v, step)
	case recipe.KindCrosstab:
		section, artifact, err = runCrosstab(v, step)
	case recipe.KindKeyDriver:
		section, artifact, err = runKeyDriver(v, step)
	case recipe.KindOutlier:
		section, artifact, err = runOutlier(v, step)
	case recipe.KindSummary:
		section, artifact, err = runSummary(v, step)
	case recipe.KindTimeSeries:
		section, artifact, err = runTimeSeries(v, step)
	default:
		err = errors.Computef("unknown analysis type %q", string(step.Type))
	}
	if err != nil {
		return stepOutcome{err: err}
	}
	return stepOutcome{section: section, artifact: artifact}
}

// errorSection renders a soft step failure into the report so the
// reader sees what went missing and why.
func errorSection(step *recipe.Step, err error) *SectionResult {
	return &SectionResult{
		OutputName: fmt.Sprintf("Error in step: %s", step.OutputName),
		Header:     []string{"Error"},
		Rows:       [][]string{{err.Error()}},
	}
}
