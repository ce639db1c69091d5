package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/loadpulse/loadpulse/internal/metrics"
)

// PrintReport outputs a human-readable summary report.
func PrintReport(w io.Writer, s metrics.Summary) {
	fmt.Fprintln(w, "\n--- Load Test Results ---")
	fmt.Fprintf(w, "Total Requests:    %d\n", s.Total)
	fmt.Fprintf(w, "Errors:            %d\n", s.Errors)
	fmt.Fprintf(w, "Timeouts:          %d\n", s.Timeouts)
	fmt.Fprintf(w, "Error Rate:        %.2f%%\n", s.ErrorRate*100)
	fmt.Fprintf(w, "Duration:          %s\n", s.Window)
	fmt.Fprintf(w, "Actual QPS:        %.2f\n", s.ActualQPS)
	fmt.Fprintln(w, "\nLatency:")
	fmt.Fprintf(w, "  Min:             %s\n", s.MinLatency)
	fmt.Fprintf(w, "  Max:             %s\n", s.MaxLatency)
	fmt.Fprintf(w, "  Mean:            %s\n", s.MeanLatency)
	fmt.Fprintf(w, "  Median:          %s\n", s.MedianLatency)
	fmt.Fprintf(w, "  P90:             %s\n", s.P90Latency)
	fmt.Fprintf(w, "  P95:             %s\n", s.P95Latency)
	fmt.Fprintf(w, "  P99:             %s\n", s.P99Latency)
	fmt.Fprintf(w, "  StdDev:          %s\n", s.StdDevLatency)

	if len(s.StatusCounts) > 0 {
		fmt.Fprintln(w, "\nStatus Codes:")
		codes := make([]int, 0, len(s.StatusCounts))
		for code := range s.StatusCounts {
			codes = append(codes, code)
		}
		sort.Ints(codes)
		for _, code := range codes {
			share := 0.0
			if s.Total > 0 {
				share = (float64(s.StatusCounts[code]) / float64(s.Total)) * 100
			}
			fmt.Fprintf(w, "  %d: %d (%.1f%%)\n", code, s.StatusCounts[code], share)
		}
	}

	if len(s.ErrorsByType) > 0 {
		fmt.Fprintln(w, "\nErrors:")
		names := make([]string, 0, len(s.ErrorsByType))
		for name := range s.ErrorsByType {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool {
			if s.ErrorsByType[names[i]] != s.ErrorsByType[names[j]] {
				return s.ErrorsByType[names[i]] > s.ErrorsByType[names[j]]
			}
			return names[i] < names[j]
		})
		for _, name := range names {
			fmt.Fprintf(w, "  %s: %d\n", name, s.ErrorsByType[name])
		}
	}
}

// PrintJSONReport outputs a JSON-formatted report.
func PrintJSONReport(w io.Writer, s metrics.Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
