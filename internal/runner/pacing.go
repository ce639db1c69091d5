package runner

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// strategy computes when each dispatch fires across the test window. run
// returns once the scheduling loop stops issuing; draining in-flight work is
// the Runner's job.
type strategy interface {
	run(ctx context.Context, d *driver)
}

// constantStrategy repeats once per wall-clock second: launch the configured
// rate's worth of dispatches, wait for them, then sleep out the remainder of
// the second. An iteration that overran its second starts the next one
// immediately, degrading the rate instead of queueing.
type constantStrategy struct{}

func (constantStrategy) run(ctx context.Context, d *driver) {
	for time.Now().Before(d.end) {
		loopStart := time.Now()
		if !d.runIteration(ctx, d.opt.Rate) {
			return
		}
		if !sleepRemainder(ctx, loopStart) {
			return
		}
	}
}

// rampStrategy interpolates the per-second dispatch count from 1 at the
// start of the run to the configured rate at its end.
type rampStrategy struct{}

func (rampStrategy) run(ctx context.Context, d *driver) {
	for time.Now().Before(d.end) {
		loopStart := time.Now()
		if !d.runIteration(ctx, d.rampCount(time.Since(d.start))) {
			return
		}
		if !sleepRemainder(ctx, loopStart) {
			return
		}
	}
}

func (d *driver) rampCount(elapsed time.Duration) int {
	if d.opt.Duration <= 0 {
		if d.opt.Rate < 1 {
			return 1
		}
		return d.opt.Rate
	}
	progress := float64(elapsed) / float64(d.opt.Duration)
	if progress > 1 {
		progress = 1
	}
	n := int(1 + float64(d.opt.Rate-1)*progress)
	if n < 1 {
		n = 1
	}
	return n
}

// spikeStrategy alternates active windows, paced at the configured rate,
// with idle rest windows of the same default length.
type spikeStrategy struct {
	window time.Duration
	rest   time.Duration
}

func (s *spikeStrategy) run(ctx context.Context, d *driver) {
	if d.opt.Rate <= 0 {
		sleepUntil(ctx, d.end)
		return
	}

	for time.Now().Before(d.end) {
		windowEnd := time.Now().Add(s.window)
		if windowEnd.After(d.end) {
			windowEnd = d.end
		}

		// A fresh limiter per window starts with one token, so the first
		// slot fires immediately and later slots accrue at 1/rate. Burst
		// equal to the rate lets the loop catch up after a slow gate
		// acquisition instead of silently skipping slots.
		limiter := rate.NewLimiter(rate.Limit(d.opt.Rate), d.opt.Rate)
		limiter.AllowN(time.Now(), d.opt.Rate-1)

		for time.Now().Before(windowEnd) && time.Now().Before(d.end) {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
			if !d.launch(ctx, nil) {
				return
			}
		}

		// Rest window; skipped entirely once the test window has closed.
		if !time.Now().Before(d.end) {
			return
		}
		restEnd := time.Now().Add(s.rest)
		if restEnd.After(d.end) {
			restEnd = d.end
		}
		if !sleepUntil(ctx, restEnd) {
			return
		}
	}
}

// runIteration launches n dispatches, each admitted through the gate, and
// waits for every one launched this iteration to complete.
func (d *driver) runIteration(ctx context.Context, n int) bool {
	var iter sync.WaitGroup
	ok := true
	for i := 0; i < n; i++ {
		if !d.launch(ctx, &iter) {
			ok = false
			break
		}
	}
	iter.Wait()
	return ok
}

// sleepRemainder holds the one-second cadence, returning false on
// cancellation. No sleep happens when the iteration already consumed its
// second.
func sleepRemainder(ctx context.Context, loopStart time.Time) bool {
	remaining := time.Second - time.Since(loopStart)
	if remaining <= 0 {
		return ctx.Err() == nil
	}
	return sleepFor(ctx, remaining)
}

func sleepUntil(ctx context.Context, deadline time.Time) bool {
	return sleepFor(ctx, time.Until(deadline))
}

func sleepFor(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
