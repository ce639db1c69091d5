package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/loadpulse/loadpulse/internal/config"
	"github.com/loadpulse/loadpulse/internal/httpclient"
)

func newRequester(t *testing.T, cfg *config.Config) *httpRequester {
	t.Helper()
	builder, err := httpclient.NewRequestBuilder(cfg)
	if err != nil {
		t.Fatalf("build request builder: %v", err)
	}
	return newHTTPRequester(httpclient.NewClient(5*time.Second), builder)
}

func TestHTTPRequesterGet(t *testing.T) {
	var gotMethod, gotHeader atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod.Store(r.Method)
		gotHeader.Store(r.Header.Get("X-Run-Id"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	req := newRequester(t, &config.Config{
		Target:  srv.URL,
		Headers: map[string]string{"X-Run-Id": "abc"},
	})

	status, err := req.Do(context.Background())
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if status != http.StatusOK {
		t.Errorf("status = %d, want 200", status)
	}
	if gotMethod.Load() != http.MethodGet {
		t.Errorf("method = %v, want GET", gotMethod.Load())
	}
	if gotHeader.Load() != "abc" {
		t.Errorf("X-Run-Id = %v, want abc", gotHeader.Load())
	}
}

func TestHTTPRequesterPostsPayload(t *testing.T) {
	var gotBody atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody.Store(string(body))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	req := newRequester(t, &config.Config{
		Target:  srv.URL,
		Payload: `{"k":"v"}`,
	})

	status, err := req.Do(context.Background())
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if status != http.StatusCreated {
		t.Errorf("status = %d, want 201", status)
	}
	if gotBody.Load() != `{"k":"v"}` {
		t.Errorf("body = %v, want payload echoed", gotBody.Load())
	}
}

// Server-side failures are still completed requests; only transport
// problems surface as errors.
func TestHTTPRequesterReportsServerErrorsAsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	req := newRequester(t, &config.Config{Target: srv.URL})

	status, err := req.Do(context.Background())
	if err != nil {
		t.Fatalf("Do() error = %v, want nil for HTTP 500", err)
	}
	if status != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", status)
	}
}

func TestHTTPRequesterTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	req := newRequester(t, &config.Config{Target: srv.URL})

	status, err := req.Do(context.Background())
	if err == nil {
		t.Fatal("Do() error = nil, want transport error")
	}
	if status != 0 {
		t.Errorf("status = %d, want 0 on transport error", status)
	}
}

func TestHTTPRequesterTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	builder, err := httpclient.NewRequestBuilder(&config.Config{Target: srv.URL})
	if err != nil {
		t.Fatalf("build request builder: %v", err)
	}
	req := newHTTPRequester(httpclient.NewClient(50*time.Millisecond), builder)

	if _, err := req.Do(context.Background()); err == nil {
		t.Fatal("Do() error = nil, want timeout")
	}
}

func TestToRunnerPattern(t *testing.T) {
	tests := []struct {
		input config.Pattern
		want  string
	}{
		{config.PatternConstant, "constant"},
		{config.PatternSpike, "spike"},
		{config.PatternRamp, "ramp"},
		{"unknown", "constant"}, // Default fallback
	}

	for _, tt := range tests {
		if got := toRunnerPattern(tt.input); string(got) != tt.want {
			t.Errorf("toRunnerPattern(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
