// Package debounce provides a cancellable timer abstraction and a debouncer
// built on it.
package debounce

import (
	"sync"
	"time"
)

// Handle is a scheduled action that can still be cancelled.
type Handle interface {
	// Stop cancels the action. It reports false if the action already ran
	// or was already stopped.
	Stop() bool
}

// Scheduler runs fn once after delay.
type Scheduler interface {
	Schedule(delay time.Duration, fn func()) Handle
}

type systemScheduler struct{}

func (systemScheduler) Schedule(delay time.Duration, fn func()) Handle {
	return time.AfterFunc(delay, fn)
}

// System schedules on the runtime timer.
var System Scheduler = systemScheduler{}

// Debouncer runs only the most recently triggered action, once delay has
// passed without another trigger.
type Debouncer struct {
	mu        sync.Mutex
	scheduler Scheduler
	delay     time.Duration
	pending   Handle
	gen       uint64
}

func New(s Scheduler, delay time.Duration) *Debouncer {
	if s == nil {
		s = System
	}
	return &Debouncer{scheduler: s, delay: delay}
}

// Trigger cancels any pending action and schedules fn.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	d.gen++
	gen := d.gen
	d.pending = d.scheduler.Schedule(d.delay, func() {
		d.mu.Lock()
		// A timer can fire while Trigger or Cancel holds the lock; if a
		// newer generation exists this firing is stale.
		if gen != d.gen {
			d.mu.Unlock()
			return
		}
		d.pending = nil
		d.mu.Unlock()
		fn()
	})
}

// Cancel stops the pending action, if any. It reports whether one was pending.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	had := d.pending != nil
	d.stopLocked()
	d.gen++
	return had
}

// Pending reports whether an action is waiting to run.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

func (d *Debouncer) stopLocked() {
	if d.pending != nil {
		d.pending.Stop()
		d.pending = nil
	}
}
