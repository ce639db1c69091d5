package runner

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/loadpulse/loadpulse/internal/gate"
	"github.com/loadpulse/loadpulse/internal/metrics"
)

type instantRequester struct{}

func (instantRequester) Do(ctx context.Context) (int, error) { return 200, nil }

func newTestDriver(opt Options) *driver {
	opt.normalize()
	start := time.Now()
	return &driver{
		opt:   opt,
		rec:   metrics.NewRecorder(),
		gate:  gate.New(opt.Concurrency),
		start: start,
		end:   start.Add(opt.Duration),
	}
}

func TestRampCount(t *testing.T) {
	cases := []struct {
		name    string
		rate    int
		elapsed time.Duration
		want    int
	}{
		{"start", 9, 0, 1},
		{"quarter", 9, time.Second, 3},
		{"half", 9, 2 * time.Second, 5},
		{"end", 9, 4 * time.Second, 9},
		{"past end clamps", 9, 8 * time.Second, 9},
		{"zero rate floors at one", 0, 2 * time.Second, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := newTestDriver(Options{
				Rate:        tc.rate,
				Concurrency: 1,
				Duration:    4 * time.Second,
				Requester:   instantRequester{},
			})
			if got := d.rampCount(tc.elapsed); got != tc.want {
				t.Fatalf("rampCount(%s) = %d, want %d", tc.elapsed, got, tc.want)
			}
		})
	}
}

// TestRampMonotonicity checks that the ramp issues strictly fewer dispatches
// in the first quarter of the run than in the last.
func TestRampMonotonicity(t *testing.T) {
	const duration = 4 * time.Second
	d := newTestDriver(Options{
		Rate:        9,
		Concurrency: 9,
		Duration:    duration,
		Requester:   instantRequester{},
	})

	rampStrategy{}.run(context.Background(), d)
	d.wg.Wait()

	var first, last int
	for _, offset := range d.rec.DispatchTimes() {
		switch {
		case offset < duration/4:
			first++
		case offset >= 3*duration/4:
			last++
		}
	}
	if first >= last {
		t.Fatalf("ramp not increasing: first quarter=%d, last quarter=%d", first, last)
	}
}

// TestSpikeShape verifies the bimodal gap distribution: short intervals near
// 1/rate inside an active window, one long gap per rest window.
func TestSpikeShape(t *testing.T) {
	const (
		window   = 700 * time.Millisecond
		rest     = 700 * time.Millisecond
		duration = 2100 * time.Millisecond
	)
	d := newTestDriver(Options{
		Rate:        20,
		Concurrency: 20,
		Duration:    duration,
		SpikeWindow: window,
		RestWindow:  rest,
		Requester:   instantRequester{},
	})

	(&spikeStrategy{window: window, rest: rest}).run(context.Background(), d)
	d.wg.Wait()

	offsets := d.rec.DispatchTimes()
	if len(offsets) < 10 {
		t.Fatalf("too few dispatches for shape analysis: %d", len(offsets))
	}
	sort.Slice(offsets, func(i, j int) bool { return offsets[i] < offsets[j] })

	gaps := make([]time.Duration, 0, len(offsets)-1)
	for i := 1; i < len(offsets); i++ {
		gaps = append(gaps, offsets[i]-offsets[i-1])
	}
	sort.Slice(gaps, func(i, j int) bool { return gaps[i] < gaps[j] })

	if median := gaps[len(gaps)/2]; median > 150*time.Millisecond {
		t.Fatalf("median gap = %s, want near the 50ms pacing interval", median)
	}
	if longest := gaps[len(gaps)-1]; longest < rest/2 {
		t.Fatalf("longest gap = %s, want a rest-window gap of roughly %s", longest, rest)
	}

	// The second active window must have fired.
	if last := offsets[len(offsets)-1]; last < window+rest {
		t.Fatalf("last dispatch at %s, want dispatches after the rest window", last)
	}
}

// TestSpikeStopsAtWindowEnd ensures no dispatch is scheduled at or past the
// run's end beyond the bounded overrun of an in-progress unit.
func TestSpikeStopsAtWindowEnd(t *testing.T) {
	const duration = 900 * time.Millisecond
	d := newTestDriver(Options{
		Rate:        10,
		Concurrency: 10,
		Duration:    duration,
		SpikeWindow: 400 * time.Millisecond,
		RestWindow:  400 * time.Millisecond,
		Requester:   instantRequester{},
	})

	(&spikeStrategy{window: 400 * time.Millisecond, rest: 400 * time.Millisecond}).run(context.Background(), d)
	d.wg.Wait()

	for _, offset := range d.rec.DispatchTimes() {
		if offset > duration+200*time.Millisecond {
			t.Fatalf("dispatch at %s, well past the %s window", offset, duration)
		}
	}
}

// TestGateSlotsRestored verifies the no-leak property: after the strategy
// stops and the driver drains, every slot is back.
func TestGateSlotsRestored(t *testing.T) {
	d := newTestDriver(Options{
		Rate:        10,
		Concurrency: 4,
		Duration:    time.Second,
		Requester:   instantRequester{},
	})

	constantStrategy{}.run(context.Background(), d)
	d.wg.Wait()

	if got, want := d.gate.Available(), d.gate.Capacity(); got != want {
		t.Fatalf("gate available = %d, want %d (leaked slots)", got, want)
	}
}

func TestIsTimeout(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"net timeout", timeoutNetError{}, true},
		{"deadline exceeded", context.DeadlineExceeded, true},
		{"plain error", errPlain, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isTimeout(tc.err); got != tc.want {
				t.Fatalf("isTimeout(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

type timeoutNetError struct{}

func (timeoutNetError) Error() string   { return "i/o timeout" }
func (timeoutNetError) Timeout() bool   { return true }
func (timeoutNetError) Temporary() bool { return false }

var errPlain = &plainError{}

type plainError struct{}

func (*plainError) Error() string { return "refused" }
