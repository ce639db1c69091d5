package metrics_test

import (
	"errors"
	"fmt"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/loadpulse/loadpulse/internal/metrics"
)

func TestRecorderConservation(t *testing.T) {
	rec := metrics.NewRecorder()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			offset := time.Duration(i) * time.Millisecond
			rec.RecordDispatch(offset)
			switch i % 5 {
			case 0:
				rec.RecordTimeout(&url.Error{Op: "Get", URL: "http://x", Err: errors.New("timeout")})
			case 1:
				rec.RecordTransportError(errors.New("connection refused"))
			case 2:
				rec.RecordSuccess(offset, 500, 5*time.Millisecond)
			default:
				rec.RecordSuccess(offset, 200, 10*time.Millisecond)
			}
		}(i)
	}
	wg.Wait()

	s := rec.Summary(time.Second)
	var statusTotal int64
	for _, count := range s.StatusCounts {
		statusTotal += count
	}
	if s.Total != s.Errors+statusTotal {
		t.Fatalf("conservation violated: total=%d errors=%d statuses=%d", s.Total, s.Errors, statusTotal)
	}
	if s.Total != 50 {
		t.Fatalf("total = %d, want 50", s.Total)
	}
	if got := len(rec.DispatchTimes()); got != 50 {
		t.Fatalf("dispatch times length = %d, want 50", got)
	}
	if got := len(rec.LatencySeries()); int64(got) != statusTotal {
		t.Fatalf("latency series length = %d, want %d", got, statusTotal)
	}
}

func TestRecorderTimeoutClassification(t *testing.T) {
	rec := metrics.NewRecorder()
	for i := 0; i < 8; i++ {
		rec.RecordDispatch(time.Duration(i) * 100 * time.Millisecond)
		rec.RecordTimeout(&url.Error{Op: "Get", URL: "http://x", Err: errors.New("timeout")})
	}

	s := rec.Summary(time.Second)
	if s.Errors != s.Total {
		t.Fatalf("errors = %d, total = %d, want equal", s.Errors, s.Total)
	}
	if s.Timeouts != 8 {
		t.Fatalf("timeouts = %d, want 8", s.Timeouts)
	}
	if len(s.StatusCounts) != 0 {
		t.Fatalf("expected empty status map, got %v", s.StatusCounts)
	}
	if len(rec.LatencySeries()) != 0 {
		t.Fatal("timeouts must not enter the latency series")
	}
	if s.ErrorsByType["Request URL error"] != 8 {
		t.Fatalf("errors by type = %v", s.ErrorsByType)
	}
}

func TestSummaryStatistics(t *testing.T) {
	rec := metrics.NewRecorder()
	// 1ms..100ms in 1ms steps makes the quantiles easy to predict.
	for i := 1; i <= 100; i++ {
		latency := time.Duration(i) * time.Millisecond
		rec.RecordDispatch(0)
		rec.RecordSuccess(0, 200, latency)
	}

	s := rec.Summary(10 * time.Second)
	if s.MinLatency != time.Millisecond {
		t.Errorf("min = %s, want 1ms", s.MinLatency)
	}
	if s.MaxLatency != 100*time.Millisecond {
		t.Errorf("max = %s, want 100ms", s.MaxLatency)
	}
	assertNear(t, "mean", s.MeanLatency, 50500*time.Microsecond)
	assertNear(t, "median", s.MedianLatency, 50*time.Millisecond)
	assertNear(t, "p90", s.P90Latency, 90*time.Millisecond)
	assertNear(t, "p95", s.P95Latency, 95*time.Millisecond)
	assertNear(t, "p99", s.P99Latency, 99*time.Millisecond)
	assertNear(t, "stddev", s.StdDevLatency, 28866*time.Microsecond)
	if s.ActualQPS != 10 {
		t.Errorf("actual qps = %.2f, want 10.00", s.ActualQPS)
	}
	if s.ErrorRate != 0 {
		t.Errorf("error rate = %f, want 0", s.ErrorRate)
	}
}

// assertNear allows for the histogram's 3-significant-figure resolution.
func assertNear(t *testing.T, name string, got, want time.Duration) {
	t.Helper()
	tolerance := want / 50
	if tolerance < time.Millisecond {
		tolerance = time.Millisecond
	}
	diff := got - want
	if diff < 0 {
		diff = -diff
	}
	if diff > tolerance {
		t.Errorf("%s = %s, want %s (±%s)", name, got, want, tolerance)
	}
}

func TestStatusLatenciesCompletionOrder(t *testing.T) {
	rec := metrics.NewRecorder()
	latencies := []time.Duration{30 * time.Millisecond, 10 * time.Millisecond, 20 * time.Millisecond}
	for _, l := range latencies {
		rec.RecordDispatch(0)
		rec.RecordSuccess(0, 200, l)
	}

	got := rec.StatusLatencies()[200]
	if len(got) != len(latencies) {
		t.Fatalf("length = %d, want %d", len(got), len(latencies))
	}
	for i, l := range latencies {
		if got[i] != l {
			t.Fatalf("byStatus[200][%d] = %s, want %s (insertion order must be completion order)", i, got[i], l)
		}
	}
}

func TestFriendlyErrorName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"*url.Error", "Request URL error"},
		{"net.OpError", "Connection error"},
		{"*context.deadlineExceededError", "Context deadline exceeded"},
		{"*errors.errorString", "errors.errorString"},
		{"", "Unknown error"},
		{"*github.com/example/pkg.CustomError", "pkg.CustomError"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			if got := metrics.FriendlyErrorName(tc.in); got != tc.want {
				t.Fatalf("FriendlyErrorName(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestErrorsByTypeUsesDynamicType(t *testing.T) {
	rec := metrics.NewRecorder()
	rec.RecordDispatch(0)
	rec.RecordTransportError(fmt.Errorf("wrapped: %w", errors.New("inner")))

	s := rec.Summary(time.Second)
	if len(s.ErrorsByType) != 1 {
		t.Fatalf("errors by type = %v, want one entry", s.ErrorsByType)
	}
}
