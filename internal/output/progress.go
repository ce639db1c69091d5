package output

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/loadpulse/loadpulse/internal/metrics"
)

// ProgressReporter displays real-time progress updates on a single
// carriage-return line.
type ProgressReporter struct {
	recorder *metrics.Recorder
	ticker   *time.Ticker
	done     chan struct{}
	finished chan struct{}
	writer   io.Writer
	active   int32
	start    time.Time
}

// NewProgressReporter creates a progress reporter that updates at the given interval.
func NewProgressReporter(recorder *metrics.Recorder, interval time.Duration, writer io.Writer) *ProgressReporter {
	if writer == nil {
		writer = io.Discard
	}
	return &ProgressReporter{
		recorder: recorder,
		ticker:   time.NewTicker(interval),
		done:     make(chan struct{}),
		finished: make(chan struct{}),
		writer:   writer,
		start:    time.Now(),
	}
}

// Start begins displaying progress updates in a background goroutine.
func (p *ProgressReporter) Start() {
	if !atomic.CompareAndSwapInt32(&p.active, 0, 1) {
		return // already running
	}
	go p.run()
}

// Stop halts progress updates.
func (p *ProgressReporter) Stop() {
	if atomic.CompareAndSwapInt32(&p.active, 1, 0) {
		close(p.done)
		p.ticker.Stop()
		<-p.finished
	}
}

func (p *ProgressReporter) run() {
	defer close(p.finished)
	for {
		select {
		case <-p.ticker.C:
			total, errs := p.recorder.Counts()
			elapsed := time.Since(p.start)
			rps := 0.0
			if elapsed > 0 {
				rps = float64(total) / elapsed.Seconds()
			}
			fmt.Fprintf(p.writer, "\rRequests: %d | Errors: %d | RPS: %.1f | Elapsed: %s",
				total, errs, rps, elapsed.Truncate(time.Second))
		case <-p.done:
			return
		}
	}
}
