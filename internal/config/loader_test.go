package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := NewLoader().Load([]string{"--target", "http://localhost:9000"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Target != "http://localhost:9000" {
		t.Errorf("target = %q", cfg.Target)
	}
	if cfg.Rate != 10 {
		t.Errorf("rate = %d, want default 10", cfg.Rate)
	}
	if cfg.Concurrency != 10 {
		t.Errorf("concurrency = %d, want default 10", cfg.Concurrency)
	}
	if cfg.Duration != 60*time.Second {
		t.Errorf("duration = %s, want default 60s", cfg.Duration)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("timeout = %s, want default 30s", cfg.Timeout)
	}
	if cfg.Pattern != PatternConstant {
		t.Errorf("pattern = %q, want constant", cfg.Pattern)
	}
	if cfg.Payload != "" {
		t.Errorf("payload = %q, want absent", cfg.Payload)
	}
}

func TestLoadFlags(t *testing.T) {
	cfg, err := NewLoader().Load([]string{
		"--target", "http://svc.internal/health",
		"--rate", "25",
		"--concurrency", "8",
		"--duration", "90s",
		"--pattern", "Ramp",
		"--header", "Authorization=Bearer tok",
		"--header", "x-request-source=loadpulse",
		"--payload", `{"ping": true}`,
		"--timeout", "5s",
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Rate != 25 || cfg.Concurrency != 8 {
		t.Errorf("rate/concurrency = %d/%d", cfg.Rate, cfg.Concurrency)
	}
	if cfg.Duration != 90*time.Second || cfg.Timeout != 5*time.Second {
		t.Errorf("duration/timeout = %s/%s", cfg.Duration, cfg.Timeout)
	}
	if cfg.Pattern != PatternRamp {
		t.Errorf("pattern = %q, want ramp (lowercased)", cfg.Pattern)
	}
	if cfg.Headers["Authorization"] != "Bearer tok" {
		t.Errorf("headers = %v", cfg.Headers)
	}
	if cfg.Headers["X-Request-Source"] != "loadpulse" {
		t.Errorf("header keys not canonicalized: %v", cfg.Headers)
	}
	if cfg.Payload != `{"ping": true}` {
		t.Errorf("payload = %q", cfg.Payload)
	}
}

func TestLoadConfigFileWithFlagOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	content := `
target: http://file.example/api
rate: 40
concurrency: 12
duration: 2m
pattern: spike
headers:
  x-env: staging
tracing:
  endpoint: collector:4317
  sample_rate: 0.25
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewLoader().Load([]string{"--config", path, "--rate", "99"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Target != "http://file.example/api" {
		t.Errorf("target = %q", cfg.Target)
	}
	if cfg.Rate != 99 {
		t.Errorf("rate = %d, want flag override 99", cfg.Rate)
	}
	if cfg.Concurrency != 12 {
		t.Errorf("concurrency = %d, want file value 12", cfg.Concurrency)
	}
	if cfg.Duration != 2*time.Minute {
		t.Errorf("duration = %s", cfg.Duration)
	}
	if cfg.Pattern != PatternSpike {
		t.Errorf("pattern = %q", cfg.Pattern)
	}
	if cfg.Headers["X-Env"] != "staging" {
		t.Errorf("headers = %v", cfg.Headers)
	}
	if cfg.Tracing.Endpoint != "collector:4317" || cfg.Tracing.SampleRate != 0.25 {
		t.Errorf("tracing = %+v", cfg.Tracing)
	}
}

func TestLoadBareSecondsDuration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	if err := os.WriteFile(path, []byte("target: http://x\nduration: 45\ntimeout: 10\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewLoader().Load([]string{"--config", path})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Duration != 45*time.Second {
		t.Errorf("duration = %s, want 45s", cfg.Duration)
	}
	if cfg.Timeout != 10*time.Second {
		t.Errorf("timeout = %s, want 10s", cfg.Timeout)
	}
}

func TestLoadHelp(t *testing.T) {
	_, err := NewLoader().Load([]string{"--help"})
	if !errors.Is(err, ErrHelpRequested) {
		t.Fatalf("err = %v, want ErrHelpRequested", err)
	}
}

func TestLoadNoArgsShowsHelp(t *testing.T) {
	_, err := NewLoader().Load(nil)
	if !errors.Is(err, ErrHelpRequested) {
		t.Fatalf("err = %v, want ErrHelpRequested", err)
	}
}
