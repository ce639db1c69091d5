package runner

import (
	"context"
	"time"

	"github.com/loadpulse/loadpulse/internal/gate"
	"github.com/loadpulse/loadpulse/internal/metrics"
)

// Result captures the run's wall-clock envelope.
type Result struct {
	Start   time.Time
	Elapsed time.Duration
}

// Runner owns the run lifecycle: it fixes the test window, drives the
// selected pacing strategy, and drains every outstanding dispatch before
// handing the recorder to the caller.
type Runner struct {
	opt Options
	rec *metrics.Recorder
}

// New returns a Runner for the given options.
func New(opt Options) *Runner {
	opt.normalize()
	return &Runner{opt: opt, rec: metrics.NewRecorder()}
}

// Recorder returns the outcome recorder the run writes into. It is live
// during Run, so progress reporters may poll it concurrently.
func (r *Runner) Recorder() *metrics.Recorder {
	return r.rec
}

// Run executes the load test. It returns only after every dispatch launched
// during the run has completed, including ones still in flight when the test
// window closed; those are allowed to finish or hit their own timeout rather
// than being cancelled.
func (r *Runner) Run(ctx context.Context) Result {
	start := time.Now()
	d := &driver{
		opt:   r.opt,
		rec:   r.rec,
		gate:  gate.New(r.opt.Concurrency),
		start: start,
		end:   start.Add(r.opt.Duration),
	}

	r.strategy().run(ctx, d)
	d.wg.Wait()

	return Result{Start: start, Elapsed: time.Since(start)}
}

func (r *Runner) strategy() strategy {
	switch r.opt.Pattern {
	case PatternSpike:
		return &spikeStrategy{window: r.opt.SpikeWindow, rest: r.opt.RestWindow}
	case PatternRamp:
		return rampStrategy{}
	default:
		return constantStrategy{}
	}
}
