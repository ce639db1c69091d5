package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Pattern names the temporal shape of the generated load.
type Pattern string

const (
	PatternConstant Pattern = "constant"
	PatternSpike    Pattern = "spike"
	PatternRamp     Pattern = "ramp"
)

// Config is the immutable test configuration, assembled once from flags and
// an optional config file before any scheduling starts.
type Config struct {
	Target      string            `mapstructure:"target"`
	Rate        int               `mapstructure:"rate"`
	Concurrency int               `mapstructure:"concurrency"`
	Duration    time.Duration     `mapstructure:"duration"`
	Headers     map[string]string `mapstructure:"headers"`
	Payload     string            `mapstructure:"payload"`
	Timeout     time.Duration     `mapstructure:"timeout"`
	Pattern     Pattern           `mapstructure:"pattern"`

	JSONOutput bool          `mapstructure:"json_output"`
	OutputDir  string        `mapstructure:"output_dir"`
	HTMLOutput string        `mapstructure:"html_output"`
	Quiet      bool          `mapstructure:"quiet"`
	ConfigFile string        `mapstructure:"-"`
	Tracing    TracingConfig `mapstructure:"tracing"`
}

// TracingConfig configures the optional OpenTelemetry exporter.
type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"` // "grpc" or "http"
	ServiceName string  `mapstructure:"service_name"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	Propagate   bool    `mapstructure:"propagate"`
	Insecure    bool    `mapstructure:"insecure"`
}

// Enabled reports whether spans should be exported anywhere.
func (t TracingConfig) Enabled() bool {
	return strings.TrimSpace(t.Endpoint) != "" || os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != ""
}

// ValidationError aggregates every configuration problem found.
type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

// Issues returns the individual problems.
func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

// Validate checks the configuration before a run is allowed to start.
func (c Config) Validate() error {
	var issues []string

	if strings.TrimSpace(c.Target) == "" {
		issues = append(issues, "target is required")
	}
	if c.Rate < 0 {
		issues = append(issues, "rate must be >= 0")
	}
	if c.Concurrency < 1 {
		issues = append(issues, "concurrency must be >= 1")
	}
	if c.Duration < time.Second {
		issues = append(issues, "duration must be >= 1s")
	}
	if c.Timeout < time.Second {
		issues = append(issues, "timeout must be >= 1s")
	}

	switch c.Pattern {
	case PatternConstant, PatternSpike, PatternRamp:
	default:
		issues = append(issues, fmt.Sprintf("pattern %q is not supported (constant, spike, ramp)", c.Pattern))
	}

	if c.Payload != "" && !gjson.Valid(c.Payload) {
		issues = append(issues, "payload must be valid JSON")
	}

	for key := range c.Headers {
		if strings.TrimSpace(key) == "" || strings.ContainsAny(key, "\r\n") {
			issues = append(issues, fmt.Sprintf("invalid header key %q", key))
		}
	}

	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		issues = append(issues, "tracing sample_rate must be between 0.0 and 1.0")
	}

	if c.Rate > 1000 {
		fmt.Fprintf(os.Stderr, "WARNING: high rate configured (%d QPS); make sure you are authorized to test the target.\n", c.Rate)
	}
	if c.Concurrency > 500 {
		fmt.Fprintf(os.Stderr, "WARNING: high concurrency configured (%d); make sure you are authorized to test the target.\n", c.Concurrency)
	}

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}
