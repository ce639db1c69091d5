package output

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"sort"
	"time"

	"github.com/loadpulse/loadpulse/internal/metrics"
)

// HTMLReportData contains all data needed for the HTML report template.
type HTMLReportData struct {
	GeneratedAt  string
	Target       string
	Pattern      string
	Summary      metrics.Summary
	SeriesJSON   string
	DispatchJSON string
	StatusRows   []StatusRow
	ErrorRows    []ErrorRow
	HasSeries    bool
}

// StatusRow is one line of the status-code table.
type StatusRow struct {
	Code  int
	Count int64
	Share string
}

// ErrorRow is one line of the error-breakdown table.
type ErrorRow struct {
	Name  string
	Count int
}

// GenerateHTMLReport generates a standalone HTML report with embedded charts.
func GenerateHTMLReport(w io.Writer, summary metrics.Summary, series []metrics.Point, dispatches []time.Duration, target, pattern string) error {
	seriesJSON, err := json.Marshal(series)
	if err != nil {
		return fmt.Errorf("failed to marshal latency series: %w", err)
	}

	dispatchMs := make([]float64, len(dispatches))
	for i, d := range dispatches {
		dispatchMs[i] = float64(d) / float64(time.Millisecond)
	}
	dispatchJSON, err := json.Marshal(dispatchMs)
	if err != nil {
		return fmt.Errorf("failed to marshal dispatch times: %w", err)
	}

	statusRows := make([]StatusRow, 0, len(summary.StatusCounts))
	for code, count := range summary.StatusCounts {
		share := "0.0"
		if summary.Total > 0 {
			share = fmt.Sprintf("%.1f", (float64(count)/float64(summary.Total))*100)
		}
		statusRows = append(statusRows, StatusRow{Code: code, Count: count, Share: share})
	}
	sort.Slice(statusRows, func(i, j int) bool { return statusRows[i].Code < statusRows[j].Code })

	errorRows := make([]ErrorRow, 0, len(summary.ErrorsByType))
	for name, count := range summary.ErrorsByType {
		errorRows = append(errorRows, ErrorRow{Name: name, Count: count})
	}
	sort.Slice(errorRows, func(i, j int) bool {
		if errorRows[i].Count != errorRows[j].Count {
			return errorRows[i].Count > errorRows[j].Count
		}
		return errorRows[i].Name < errorRows[j].Name
	})

	data := HTMLReportData{
		GeneratedAt:  time.Now().Format(time.RFC3339),
		Target:       target,
		Pattern:      pattern,
		Summary:      summary,
		SeriesJSON:   string(seriesJSON),
		DispatchJSON: string(dispatchJSON),
		StatusRows:   statusRows,
		ErrorRows:    errorRows,
		HasSeries:    len(series) > 0 || len(dispatches) > 0,
	}

	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"formatDuration": func(d time.Duration) string {
			return d.String()
		},
		"formatFloat": func(f float64) string {
			return fmt.Sprintf("%.2f", f)
		},
	}).Parse(htmlTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return nil
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>LoadPulse Report</title>
    <style>
        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            background: #f5f7fa;
            color: #2c3e50;
            line-height: 1.6;
            padding: 20px;
        }
        .container {
            max-width: 1400px;
            margin: 0 auto;
            background: white;
            border-radius: 8px;
            box-shadow: 0 2px 8px rgba(0,0,0,0.1);
            overflow: hidden;
        }
        header {
            background: linear-gradient(135deg, #0ea5e9 0%, #6366f1 100%);
            color: white;
            padding: 30px 40px;
        }
        header h1 {
            font-size: 2rem;
            margin-bottom: 10px;
        }
        header .meta {
            opacity: 0.9;
            font-size: 0.9rem;
        }
        .content {
            padding: 40px;
        }
        .grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(250px, 1fr));
            gap: 20px;
            margin-bottom: 40px;
        }
        .card {
            background: #f8f9fa;
            border-radius: 8px;
            padding: 20px;
            border-left: 4px solid #6366f1;
        }
        .card h3 {
            font-size: 0.9rem;
            color: #6c757d;
            text-transform: uppercase;
            letter-spacing: 0.5px;
            margin-bottom: 10px;
        }
        .card .value {
            font-size: 2rem;
            font-weight: bold;
            color: #2c3e50;
        }
        .card .subvalue {
            font-size: 0.85rem;
            color: #6c757d;
            margin-top: 5px;
        }
        .card.error {
            border-left-color: #ef4444;
        }
        .card.warning {
            border-left-color: #f59e0b;
        }
        .section {
            margin-bottom: 40px;
        }
        .section h2 {
            font-size: 1.5rem;
            margin-bottom: 20px;
            padding-bottom: 10px;
            border-bottom: 2px solid #e5e7eb;
        }
        .chart-container {
            background: white;
            border-radius: 8px;
            padding: 20px;
            margin-bottom: 30px;
            border: 1px solid #e5e7eb;
        }
        .chart-container h3 {
            font-size: 1.1rem;
            margin-bottom: 15px;
            color: #4b5563;
        }
        .chart {
            width: 100%;
            height: 300px;
        }
        table {
            width: 100%;
            border-collapse: collapse;
            background: white;
        }
        th, td {
            text-align: left;
            padding: 12px;
            border-bottom: 1px solid #e5e7eb;
        }
        th {
            background: #f8f9fa;
            font-weight: 600;
            color: #4b5563;
            font-size: 0.9rem;
            text-transform: uppercase;
            letter-spacing: 0.5px;
        }
        tr:hover {
            background: #f8f9fa;
        }
        .latency-grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(150px, 1fr));
            gap: 15px;
            margin-top: 20px;
        }
        .latency-item {
            background: #f8f9fa;
            padding: 15px;
            border-radius: 6px;
            text-align: center;
        }
        .latency-item .label {
            font-size: 0.85rem;
            color: #6c757d;
            margin-bottom: 5px;
        }
        .latency-item .value {
            font-size: 1.3rem;
            font-weight: bold;
            color: #2c3e50;
        }
    </style>
    <script src="https://cdn.jsdelivr.net/npm/uplot@1.6.24/dist/uPlot.iife.min.js"></script>
    <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/uplot@1.6.24/dist/uPlot.min.css">
</head>
<body>
    <div class="container">
        <header>
            <h1>LoadPulse Report</h1>
            {{if .Target}}
            <div class="meta" style="margin-top: 5px;">Target: {{.Target}}</div>
            {{end}}
            <div class="meta">Generated: {{.GeneratedAt}} | Pattern: {{.Pattern}} | Duration: {{formatDuration .Summary.Window}}</div>
        </header>

        <div class="content">
            <!-- Summary Cards -->
            <div class="grid">
                <div class="card">
                    <h3>Total Requests</h3>
                    <div class="value">{{.Summary.Total}}</div>
                </div>
                <div class="card error">
                    <h3>Errors</h3>
                    <div class="value">{{.Summary.Errors}}</div>
                    <div class="subvalue">{{formatFloat .Summary.ErrorRate}} error rate</div>
                </div>
                <div class="card warning">
                    <h3>Timeouts</h3>
                    <div class="value">{{.Summary.Timeouts}}</div>
                </div>
                <div class="card">
                    <h3>Actual QPS</h3>
                    <div class="value">{{formatFloat .Summary.ActualQPS}}</div>
                </div>
            </div>

            <!-- Charts Section -->
            {{if .HasSeries}}
            <div class="section">
                <h2>Run Timeline</h2>

                <div class="chart-container">
                    <h3>Dispatch Rate (requests/sec)</h3>
                    <div id="rate-chart" class="chart"></div>
                </div>

                <div class="chart-container">
                    <h3>Latency Over Time (ms)</h3>
                    <div id="latency-chart" class="chart"></div>
                </div>
            </div>
            {{end}}

            <!-- Latency Statistics -->
            <div class="section">
                <h2>Latency Statistics</h2>
                <div class="latency-grid">
                    <div class="latency-item">
                        <div class="label">Min</div>
                        <div class="value">{{formatDuration .Summary.MinLatency}}</div>
                    </div>
                    <div class="latency-item">
                        <div class="label">Max</div>
                        <div class="value">{{formatDuration .Summary.MaxLatency}}</div>
                    </div>
                    <div class="latency-item">
                        <div class="label">Mean</div>
                        <div class="value">{{formatDuration .Summary.MeanLatency}}</div>
                    </div>
                    <div class="latency-item">
                        <div class="label">Median</div>
                        <div class="value">{{formatDuration .Summary.MedianLatency}}</div>
                    </div>
                    <div class="latency-item">
                        <div class="label">P90</div>
                        <div class="value">{{formatDuration .Summary.P90Latency}}</div>
                    </div>
                    <div class="latency-item">
                        <div class="label">P95</div>
                        <div class="value">{{formatDuration .Summary.P95Latency}}</div>
                    </div>
                    <div class="latency-item">
                        <div class="label">P99</div>
                        <div class="value">{{formatDuration .Summary.P99Latency}}</div>
                    </div>
                    <div class="latency-item">
                        <div class="label">StdDev</div>
                        <div class="value">{{formatDuration .Summary.StdDevLatency}}</div>
                    </div>
                </div>
            </div>

            <!-- Status Codes -->
            {{if .StatusRows}}
            <div class="section">
                <h2>Status Codes</h2>
                <table>
                    <thead>
                        <tr>
                            <th>Code</th>
                            <th>Count</th>
                            <th>Share</th>
                        </tr>
                    </thead>
                    <tbody>
                        {{range .StatusRows}}
                        <tr>
                            <td><strong>{{.Code}}</strong></td>
                            <td>{{.Count}}</td>
                            <td>{{.Share}}%</td>
                        </tr>
                        {{end}}
                    </tbody>
                </table>
            </div>
            {{end}}

            <!-- Errors -->
            {{if .ErrorRows}}
            <div class="section">
                <h2>Errors</h2>
                <table>
                    <thead>
                        <tr>
                            <th>Type</th>
                            <th>Count</th>
                        </tr>
                    </thead>
                    <tbody>
                        {{range .ErrorRows}}
                        <tr>
                            <td>{{.Name}}</td>
                            <td>{{.Count}}</td>
                        </tr>
                        {{end}}
                    </tbody>
                </table>
            </div>
            {{end}}
        </div>
    </div>

    {{if .HasSeries}}
    <script>
        const seriesJSON = {{.SeriesJSON}};
        const dispatchJSON = {{.DispatchJSON}};
        const series = JSON.parse(seriesJSON);
        const dispatches = JSON.parse(dispatchJSON);

        if (dispatches && dispatches.length > 0) {
            // Bucket dispatch offsets into one-second bins. Offsets arrive
            // in completion order, not sorted.
            const lastSec = Math.floor(Math.max(...dispatches) / 1000);
            const bins = new Array(lastSec + 1).fill(0);
            dispatches.forEach(ms => { bins[Math.floor(ms / 1000)]++; });
            const seconds = bins.map((_, i) => i);

            new uPlot({
                title: "Dispatch Rate",
                width: document.getElementById('rate-chart').offsetWidth,
                height: 300,
                scales: { x: { time: false } },
                series: [
                    { label: "Time (s)" },
                    {
                        label: "Dispatches",
                        stroke: "#6366f1",
                        fill: "rgba(99, 102, 241, 0.1)",
                        width: 2
                    }
                ],
                axes: [
                    { label: "Time (seconds)" },
                    { label: "Requests/sec" }
                ]
            }, [seconds, bins], document.getElementById('rate-chart'));
        }

        if (series && series.length > 0) {
            // Durations marshal as nanoseconds.
            const offsets = series.map(p => p.offset / 1e9);
            const latencies = series.map(p => p.latency / 1e6);

            new uPlot({
                title: "Latency",
                width: document.getElementById('latency-chart').offsetWidth,
                height: 300,
                scales: { x: { time: false } },
                series: [
                    { label: "Time (s)" },
                    {
                        label: "Latency (ms)",
                        stroke: "#10b981",
                        width: 2
                    }
                ],
                axes: [
                    { label: "Time (seconds)" },
                    { label: "Latency (ms)" }
                ]
            }, [offsets, latencies], document.getElementById('latency-chart'));
        }
    </script>
    {{end}}
</body>
</html>
`
