// Package runner is the request-scheduling engine: given a target rate, a
// concurrency ceiling, and a load shape, it decides when each request fires,
// bounds how many are in flight, and funnels every outcome into the shared
// recorder.
//
// Three pacing strategies implement one contract:
//
//   - constant: the configured rate every wall-clock second
//   - spike: alternating 10s active and rest windows, paced at 1/rate
//     within a window
//   - ramp: a linear climb from 1 rps at the start to the configured rate
//     at the end of the run
//
// A strategy returns once it stops issuing dispatches. [Runner.Run] then
// drains: it waits for every in-flight request to complete or hit its own
// timeout before returning the recorder. Requests begun inside the test
// window are never cancelled at its edge, so totals can slightly exceed
// rate x duration; the reported actual QPS keeps the configured duration as
// its denominator.
//
// The transport is abstracted behind [Requester]; anything that can perform
// one request and report a status code can be driven by this package.
package runner
