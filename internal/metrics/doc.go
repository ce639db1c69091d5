// Package metrics collects per-request outcomes during a load test and
// aggregates them into summary statistics.
//
// The central [Recorder] type is shared by every concurrent dispatch. It
// keeps the per-status latency sequences, the latency time series, the
// dispatch-time series, and the running totals, and feeds an HDR histogram
// for percentile computation. The invariant the rest of the system relies
// on: total == errors + the sum of all per-status sequence lengths.
//
// After a run drains, [Recorder.Summary] produces a [Summary] for the
// reporting and artifact stages; the raw series stay available through
// [Recorder.LatencySeries] and [Recorder.DispatchTimes] for charting.
package metrics
