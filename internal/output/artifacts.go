package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gofrs/flock"
	"github.com/oklog/ulid/v2"
	"gopkg.in/yaml.v3"

	"github.com/loadpulse/loadpulse/internal/metrics"
)

// ArtifactWriter persists the raw series and the summary of a run under a
// per-run directory. The artifact root is shared between invocations, so a
// file lock serializes directory creation when several runs write to the
// same root.
type ArtifactWriter struct {
	root string
}

func NewArtifactWriter(root string) *ArtifactWriter {
	return &ArtifactWriter{root: root}
}

// Write creates a fresh run directory and writes latency_series.csv,
// dispatch_times.csv and summary.yaml into it. It returns the directory
// path.
func (a *ArtifactWriter) Write(rec *metrics.Recorder, summary metrics.Summary) (string, error) {
	if a == nil || a.root == "" {
		return "", fmt.Errorf("artifact root is not configured")
	}

	if err := os.MkdirAll(a.root, 0o755); err != nil {
		return "", fmt.Errorf("create artifact root: %w", err)
	}

	lock := flock.New(filepath.Join(a.root, ".lock"))
	if err := lock.Lock(); err != nil {
		return "", fmt.Errorf("lock artifact root: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	runID := ulid.Make().String()
	dir := filepath.Join(a.root, "run-"+runID)
	if err := os.Mkdir(dir, 0o755); err != nil {
		return "", fmt.Errorf("create run directory: %w", err)
	}

	if err := writeLatencySeries(filepath.Join(dir, "latency_series.csv"), rec.LatencySeries()); err != nil {
		return "", err
	}
	if err := writeDispatchTimes(filepath.Join(dir, "dispatch_times.csv"), rec.DispatchTimes()); err != nil {
		return "", err
	}
	if err := writeSummaryYAML(filepath.Join(dir, "summary.yaml"), summary); err != nil {
		return "", err
	}

	return dir, nil
}

func writeLatencySeries(path string, points []metrics.Point) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"offset_ms", "latency_ms"}); err != nil {
		return err
	}
	for _, p := range points {
		row := []string{
			formatMs(p.Offset),
			formatMs(p.Latency),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func writeDispatchTimes(path string, offsets []time.Duration) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"offset_ms"}); err != nil {
		return err
	}
	for _, offset := range offsets {
		if err := w.Write([]string{formatMs(offset)}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func writeSummaryYAML(path string, summary metrics.Summary) error {
	data, err := yaml.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func formatMs(d time.Duration) string {
	return strconv.FormatFloat(float64(d)/float64(time.Millisecond), 'f', 3, 64)
}
