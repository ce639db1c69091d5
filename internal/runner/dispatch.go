package runner

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/loadpulse/loadpulse/internal/gate"
	"github.com/loadpulse/loadpulse/internal/metrics"
)

// driver is the shared state a strategy schedules against: the run window,
// the gate, the recorder, and the wait group the orchestrator drains.
type driver struct {
	opt   Options
	rec   *metrics.Recorder
	gate  *gate.Gate
	start time.Time
	end   time.Time
	wg    sync.WaitGroup
}

// launch admits one dispatch through the gate and runs it concurrently.
// Acquiring before spawning is what gives the scheduling loop backpressure:
// a saturated gate stalls issuance instead of queueing unboundedly. The
// return is false when ctx was cancelled before admission, in which case
// nothing was launched.
func (d *driver) launch(ctx context.Context, iter *sync.WaitGroup) bool {
	if err := d.gate.Acquire(ctx); err != nil {
		return false
	}
	d.wg.Add(1)
	if iter != nil {
		iter.Add(1)
	}
	go func() {
		defer d.wg.Done()
		if iter != nil {
			defer iter.Done()
		}
		d.dispatch(ctx)
	}()
	return true
}

// dispatch performs one request attempt end to end. The gate slot is
// released by defer so that every exit path, success, timeout, or transport
// failure, returns it exactly once.
func (d *driver) dispatch(ctx context.Context) {
	defer d.gate.Release()

	offset := time.Since(d.start)
	d.rec.RecordDispatch(offset)

	callStart := time.Now()
	status, err := d.opt.Requester.Do(ctx)
	latency := time.Since(callStart)

	switch {
	case err == nil:
		d.rec.RecordSuccess(offset, status, latency)
	case isTimeout(err):
		d.rec.RecordTimeout(err)
	default:
		d.rec.RecordTransportError(err)
	}
}

// isTimeout classifies an error as a per-request timeout. http.Client
// timeouts surface as a *url.Error whose Timeout method reports true;
// context deadlines cover requesters that bound the call themselves.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
