package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Point is one completed request in the latency time series. Offset is the
// dispatch time relative to the start of the run, not the completion time.
type Point struct {
	Offset  time.Duration `json:"offset"`
	Latency time.Duration `json:"latency"`
}

// Recorder accumulates per-request outcomes from many concurrent dispatches.
// All methods are safe for concurrent use; once a run has drained the
// recorder is read-only.
type Recorder struct {
	mu            sync.Mutex
	hist          *hdrhistogram.Histogram
	byStatus      map[int][]time.Duration
	latencySeries []Point
	dispatchTimes []time.Duration
	total         int64
	errors        int64
	timeouts      int64
	errorsByType  map[string]int64
	sumLatency    time.Duration
	minLatency    time.Duration
	maxLatency    time.Duration
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	// Track latencies from 1µs up to 60s with 3 significant figures.
	return &Recorder{
		hist:         hdrhistogram.New(1, 60_000_000, 3),
		byStatus:     make(map[int][]time.Duration),
		errorsByType: make(map[string]int64),
	}
}

// RecordDispatch notes one attempted request. It is called before the
// transport call is made, so the dispatch count can run ahead of the
// completion count while requests are in flight.
func (r *Recorder) RecordDispatch(offset time.Duration) {
	r.mu.Lock()
	r.dispatchTimes = append(r.dispatchTimes, offset)
	r.mu.Unlock()
}

// RecordSuccess records a completed request. Any HTTP status counts as a
// completion here, including 4xx and 5xx; the status breakdown is the
// report's concern.
func (r *Recorder) RecordSuccess(offset time.Duration, status int, latency time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.total++
	r.byStatus[status] = append(r.byStatus[status], latency)
	r.latencySeries = append(r.latencySeries, Point{Offset: offset, Latency: latency})

	us := latency.Microseconds()
	if us < r.hist.LowestTrackableValue() {
		us = r.hist.LowestTrackableValue()
	}
	if us > r.hist.HighestTrackableValue() {
		us = r.hist.HighestTrackableValue()
	}
	_ = r.hist.RecordValue(us)

	r.sumLatency += latency
	if r.minLatency == 0 || latency < r.minLatency {
		r.minLatency = latency
	}
	if latency > r.maxLatency {
		r.maxLatency = latency
	}
}

// RecordTimeout records a request that exceeded its timeout. No latency is
// recorded; a timed-out request has no meaningful completion time.
func (r *Recorder) RecordTimeout(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.total++
	r.errors++
	r.timeouts++
	r.countErrorType(err)
}

// RecordTransportError records a request that failed before receiving a
// response: connection refused, DNS failure, protocol error.
func (r *Recorder) RecordTransportError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.total++
	r.errors++
	r.countErrorType(err)
}

func (r *Recorder) countErrorType(err error) {
	if err == nil {
		return
	}
	errorType := fmt.Sprintf("%T", err)
	if len(errorType) > 40 {
		errorType = errorType[len(errorType)-40:]
	}
	r.errorsByType[errorType]++
}

// Counts returns the running totals. Cheap enough for a progress ticker.
func (r *Recorder) Counts() (total, errors int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total, r.errors
}

// LatencySeries returns a copy of the (dispatch offset, latency) pairs in
// completion order.
func (r *Recorder) LatencySeries() []Point {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Point(nil), r.latencySeries...)
}

// DispatchTimes returns a copy of the dispatch offsets in issuance order.
func (r *Recorder) DispatchTimes() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.dispatchTimes...)
}

// StatusLatencies returns a copy of the per-status latency sequences.
func (r *Recorder) StatusLatencies() map[int][]time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[int][]time.Duration, len(r.byStatus))
	for status, latencies := range r.byStatus {
		out[status] = append([]time.Duration(nil), latencies...)
	}
	return out
}
