package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/loadpulse/loadpulse/internal/config"
)

// RequestBuilder produces identical HTTP requests for every dispatch of a
// run. Requests with a payload are sent as POST with a JSON content type,
// everything else is a GET.
type RequestBuilder struct {
	method  string
	target  string
	headers http.Header
	payload string
}

func NewRequestBuilder(cfg *config.Config) (*RequestBuilder, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	target := strings.TrimSpace(cfg.Target)
	if target == "" {
		return nil, errors.New("target URL is required")
	}

	method := http.MethodGet
	if cfg.Payload != "" {
		method = http.MethodPost
	}

	headers := http.Header{}
	for key, value := range cfg.Headers {
		trimmedKey := strings.TrimSpace(key)
		if trimmedKey == "" || strings.ContainsAny(trimmedKey, "\r\n") {
			return nil, fmt.Errorf("invalid header key %q", key)
		}
		if strings.ContainsAny(value, "\r\n") {
			return nil, fmt.Errorf("invalid header value for %s", trimmedKey)
		}
		headers.Set(http.CanonicalHeaderKey(trimmedKey), value)
	}
	if cfg.Payload != "" && headers.Get("Content-Type") == "" {
		headers.Set("Content-Type", "application/json")
	}

	return &RequestBuilder{
		method:  method,
		target:  target,
		headers: headers,
		payload: cfg.Payload,
	}, nil
}

// Method reports the HTTP method requests will use.
func (b *RequestBuilder) Method() string {
	return b.method
}

// Target reports the URL requests are sent to.
func (b *RequestBuilder) Target() string {
	return b.target
}

func (b *RequestBuilder) Build(ctx context.Context) (*http.Request, error) {
	if b == nil {
		return nil, errors.New("builder cannot be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var body *strings.Reader
	if b.payload != "" {
		body = strings.NewReader(b.payload)
	}

	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, b.method, b.target, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, b.method, b.target, nil)
	}
	if err != nil {
		return nil, err
	}

	req.Header = make(http.Header, len(b.headers))
	for key, values := range b.headers {
		for _, val := range values {
			req.Header.Add(key, val)
		}
	}

	if b.payload != "" {
		req.ContentLength = int64(len(b.payload))
		payload := b.payload
		req.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(payload)), nil
		}
	}

	return req, nil
}

// NewClient builds an http.Client tuned for sustained load generation.
// Connection pooling is sized so that idle keep-alive connections are
// reused across dispatches instead of being redialed.
func NewClient(timeout time.Duration) *http.Client {
	if timeout < 0 {
		timeout = 0
	}

	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          256,
		MaxIdleConnsPerHost:   32,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
