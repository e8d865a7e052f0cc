// Package dispatch launches fire-and-forget background work units. Dispatch
// returns before the work runs; completion is observable only through the
// writes the unit itself makes.
package dispatch

import (
	"context"

	"golang.org/x/sync/semaphore"

	"archive-backend/internal/shared/telemetry"
)

// Dispatcher schedules background units, one goroutine per unit. With a
// positive cap, at most that many units run at once; queued units wait inside
// their goroutine so the caller is never blocked. A zero cap means unbounded.
type Dispatcher struct {
	sem *semaphore.Weighted
}

// New constructs a Dispatcher with the given concurrency cap (0 = unbounded).
func New(maxConcurrent int) *Dispatcher {
	d := &Dispatcher{}
	if maxConcurrent > 0 {
		d.sem = semaphore.NewWeighted(int64(maxConcurrent))
	}
	return d
}

// Dispatch schedules fn and returns immediately. Panics inside fn are
// recovered and logged; no result is reported back.
func (d *Dispatcher) Dispatch(name string, fn func(ctx context.Context)) {
	go func() {
		ctx := context.Background()
		defer func() {
			if rec := recover(); rec != nil {
				telemetry.Error("task.panic", map[string]any{"task": name, "error": rec})
			}
		}()
		if d.sem != nil {
			if err := d.sem.Acquire(ctx, 1); err != nil {
				return
			}
			defer d.sem.Release(1)
		}
		fn(ctx)
	}()
}
