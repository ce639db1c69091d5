package main

import (
	"context"
	"io"
	"net/http"

	"go.opentelemetry.io/otel/trace"

	"github.com/loadpulse/loadpulse/internal/httpclient"
	"github.com/loadpulse/loadpulse/internal/tracing"
)

// httpRequester fires one HTTP request per dispatch. The response body is
// always drained so keep-alive connections return to the pool.
type httpRequester struct {
	client    *http.Client
	builder   *httpclient.RequestBuilder
	tracer    trace.Tracer
	traced    bool
	propagate bool
}

func newHTTPRequester(client *http.Client, builder *httpclient.RequestBuilder) *httpRequester {
	return &httpRequester{
		client:  client,
		builder: builder,
	}
}

func (r *httpRequester) withTracing(tracer trace.Tracer, propagate bool) *httpRequester {
	r.tracer = tracer
	r.traced = tracer != nil
	r.propagate = propagate
	return r
}

// Do executes an HTTP request and reports the response status code.
// Transport failures and timeouts surface as errors.
func (r *httpRequester) Do(ctx context.Context) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var span trace.Span
	if r.traced {
		ctx, span = tracing.StartRequestSpan(ctx, r.tracer, r.builder.Method(), r.builder.Target())
	}

	req, err := r.builder.Build(ctx)
	if err != nil {
		if span != nil {
			tracing.EndSpan(span, 0, err)
		}
		return 0, err
	}
	if r.propagate {
		tracing.InjectHTTPHeaders(ctx, req.Header)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		if span != nil {
			tracing.EndSpan(span, 0, err)
		}
		return 0, err
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	if span != nil {
		tracing.EndSpan(span, resp.StatusCode, nil)
	}
	return resp.StatusCode, nil
}
