package runner

import (
	"context"
	"time"
)

// Pattern selects the temporal shape of the generated load.
type Pattern string

const (
	PatternConstant Pattern = "constant"
	PatternSpike    Pattern = "spike"
	PatternRamp     Pattern = "ramp"
)

// Requester issues a single HTTP request and reports the response status.
// The dispatcher measures latency around the call, so implementations only
// need to perform the request, consume the body, and classify nothing.
type Requester interface {
	Do(ctx context.Context) (status int, err error)
}

// Options configure a Runner.
type Options struct {
	Rate        int           // requests per second to schedule
	Concurrency int           // maximum in-flight dispatches
	Duration    time.Duration // total test window
	Pattern     Pattern       // load shape, defaults to constant
	Requester   Requester     // transport capability (required)

	// SpikeWindow and RestWindow override the spike pattern's fixed 10s
	// active/idle alternation. Zero means the default; tests shrink them.
	SpikeWindow time.Duration
	RestWindow  time.Duration
}

const defaultSpikeWindow = 10 * time.Second

func (o *Options) normalize() {
	if o.Rate < 0 {
		o.Rate = 0
	}
	if o.Concurrency < 1 {
		o.Concurrency = 1
	}
	if o.Pattern == "" {
		o.Pattern = PatternConstant
	}
	if o.SpikeWindow <= 0 {
		o.SpikeWindow = defaultSpikeWindow
	}
	if o.RestWindow <= 0 {
		o.RestWindow = defaultSpikeWindow
	}
}
