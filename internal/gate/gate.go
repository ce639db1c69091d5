// Package gate provides the admission-control primitive that bounds the
// number of requests in flight at once.
package gate

import "context"

// Gate is a counting semaphore with a fixed capacity. Acquire admits one
// holder, blocking while the capacity is exhausted; Release returns the slot.
// Callers must pair every successful Acquire with exactly one Release.
type Gate struct {
	slots chan struct{}
}

// New returns a Gate admitting at most capacity concurrent holders.
// A capacity below one is raised to one.
func New(capacity int) *Gate {
	if capacity < 1 {
		capacity = 1
	}
	return &Gate{slots: make(chan struct{}, capacity)}
}

// Acquire blocks until a slot is free or ctx is done. It returns ctx.Err()
// when cancelled before admission; in that case no Release is owed.
func (g *Gate) Acquire(ctx context.Context) error {
	select {
	case g.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns one slot, waking a blocked acquirer if any. Releasing a
// gate that has no holders is a pairing bug and panics.
func (g *Gate) Release() {
	select {
	case <-g.slots:
	default:
		panic("gate: release without matching acquire")
	}
}

// Available reports how many slots are currently free.
func (g *Gate) Available() int {
	return cap(g.slots) - len(g.slots)
}

// Capacity reports the configured ceiling.
func (g *Gate) Capacity() int {
	return cap(g.slots)
}
