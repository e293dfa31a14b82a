// Package debounce coalesces bursts of calls into one call made after the
// input goes quiet.
package debounce

import (
	"sync"
	"time"
)

// DefaultDelay is the quiet period used for search input.
const DefaultDelay = 300 * time.Millisecond

type Timer interface {
	Stop() bool
}

// AfterFunc schedules f to run after d. New uses time.AfterFunc.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type Debouncer struct {
	delay     time.Duration
	afterFunc AfterFunc

	mu      sync.Mutex
	timer   Timer
	pending func()
	seq     uint64
}

func New(delay time.Duration) *Debouncer {
	return NewWithAfterFunc(delay, realAfterFunc)
}

func NewWithAfterFunc(delay time.Duration, af AfterFunc) *Debouncer {
	if delay < 0 {
		delay = 0
	}
	return &Debouncer{delay: delay, afterFunc: af}
}

// Trigger cancels any scheduled call and schedules fn after the quiet period.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.pending = fn
	d.timer = d.afterFunc(d.delay, func() { d.fire(seq) })
}

// fire runs the pending call if seq still identifies it. A timer that was
// stopped too late to prevent its callback is ignored here.
func (d *Debouncer) fire(seq uint64) {
	d.mu.Lock()
	if seq != d.seq || d.pending == nil {
		d.mu.Unlock()
		return
	}
	fn := d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()
	fn()
}

// Stop cancels the scheduled call, if any. It reports whether one was
// pending.
func (d *Debouncer) Stop() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending == nil {
		return false
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	d.pending = nil
	d.timer = nil
	return true
}

// Flush runs the scheduled call now instead of waiting.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	if d.pending == nil {
		d.mu.Unlock()
		return false
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	fn := d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()
	fn()
	return true
}

func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}
