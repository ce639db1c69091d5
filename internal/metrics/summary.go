package metrics

import "time"

// Summary is the aggregated view of a finished run, handed to the reporting
// and artifact stages.
type Summary struct {
	Total    int64 `json:"total" yaml:"total"`
	Errors   int64 `json:"errors" yaml:"errors"`
	Timeouts int64 `json:"timeouts" yaml:"timeouts"`

	// ErrorRate is errors over total; ActualQPS divides total by the
	// configured test duration, so requests that complete after the nominal
	// window still count. Both match what the console report prints.
	ErrorRate float64 `json:"error_rate" yaml:"error_rate"`
	ActualQPS float64 `json:"actual_qps" yaml:"actual_qps"`

	Window          time.Duration `json:"-" yaml:"-"`
	DurationSeconds float64       `json:"duration_seconds" yaml:"duration_seconds"`

	MinLatency    time.Duration `json:"-" yaml:"-"`
	MaxLatency    time.Duration `json:"-" yaml:"-"`
	MeanLatency   time.Duration `json:"-" yaml:"-"`
	MedianLatency time.Duration `json:"-" yaml:"-"`
	P90Latency    time.Duration `json:"-" yaml:"-"`
	P95Latency    time.Duration `json:"-" yaml:"-"`
	P99Latency    time.Duration `json:"-" yaml:"-"`
	StdDevLatency time.Duration `json:"-" yaml:"-"`

	// Millisecond mirrors for JSON and YAML consumers.
	MinLatencyMs    float64 `json:"min_latency_ms" yaml:"min_latency_ms"`
	MaxLatencyMs    float64 `json:"max_latency_ms" yaml:"max_latency_ms"`
	MeanLatencyMs   float64 `json:"mean_latency_ms" yaml:"mean_latency_ms"`
	MedianLatencyMs float64 `json:"median_latency_ms" yaml:"median_latency_ms"`
	P90LatencyMs    float64 `json:"p90_latency_ms" yaml:"p90_latency_ms"`
	P95LatencyMs    float64 `json:"p95_latency_ms" yaml:"p95_latency_ms"`
	P99LatencyMs    float64 `json:"p99_latency_ms" yaml:"p99_latency_ms"`
	StdDevLatencyMs float64 `json:"stddev_latency_ms" yaml:"stddev_latency_ms"`

	StatusCounts map[int]int64  `json:"status_counts,omitempty" yaml:"status_counts,omitempty"`
	ErrorsByType map[string]int `json:"errors_by_type,omitempty" yaml:"errors_by_type,omitempty"`
}

// Summary computes aggregate statistics. window is the configured test
// duration used as the actual-QPS denominator.
func (r *Recorder) Summary(window time.Duration) Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Summary{
		Window:          window,
		DurationSeconds: window.Seconds(),
		Total:           r.total,
		Errors:          r.errors,
		Timeouts:        r.timeouts,
		MinLatency:      r.minLatency,
		MaxLatency:      r.maxLatency,
	}

	if r.total > 0 {
		s.ErrorRate = float64(r.errors) / float64(r.total)
	}
	if window > 0 {
		s.ActualQPS = float64(r.total) / window.Seconds()
	}

	if samples := r.hist.TotalCount(); samples > 0 {
		s.MeanLatency = r.sumLatency / time.Duration(samples)
		s.MedianLatency = time.Duration(r.hist.ValueAtQuantile(50)) * time.Microsecond
		s.P90Latency = time.Duration(r.hist.ValueAtQuantile(90)) * time.Microsecond
		s.P95Latency = time.Duration(r.hist.ValueAtQuantile(95)) * time.Microsecond
		s.P99Latency = time.Duration(r.hist.ValueAtQuantile(99)) * time.Microsecond
		s.StdDevLatency = time.Duration(r.hist.StdDev() * float64(time.Microsecond))
	}

	s.MinLatencyMs = toMs(s.MinLatency)
	s.MaxLatencyMs = toMs(s.MaxLatency)
	s.MeanLatencyMs = toMs(s.MeanLatency)
	s.MedianLatencyMs = toMs(s.MedianLatency)
	s.P90LatencyMs = toMs(s.P90Latency)
	s.P95LatencyMs = toMs(s.P95Latency)
	s.P99LatencyMs = toMs(s.P99Latency)
	s.StdDevLatencyMs = toMs(s.StdDevLatency)

	if len(r.byStatus) > 0 {
		s.StatusCounts = make(map[int]int64, len(r.byStatus))
		for status, latencies := range r.byStatus {
			s.StatusCounts[status] = int64(len(latencies))
		}
	}
	if len(r.errorsByType) > 0 {
		s.ErrorsByType = make(map[string]int, len(r.errorsByType))
		for name, count := range r.errorsByType {
			s.ErrorsByType[FriendlyErrorName(name)] += int(count)
		}
	}

	return s
}

func toMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
