package app

import (
	"sync"
	"time"
)

// Debouncer runs fn for the latest input once no newer input has arrived
// for delay. Each Trigger starts a new generation; work belonging to an
// older generation must check Current before publishing its result.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
	gen   uint64
	fn    func(gen uint64, input string)
}

func NewDebouncer(delay time.Duration, fn func(gen uint64, input string)) *Debouncer {
	return &Debouncer{delay: delay, fn: fn}
}

// Trigger schedules fn(input) and discards any pending, unfired call.
func (d *Debouncer) Trigger(input string) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() {
		if d.Current(gen) {
			d.fn(gen, input)
		}
	})
	return gen
}

// Current reports whether gen is still the newest generation.
func (d *Debouncer) Current(gen uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return gen == d.gen
}

// Stop cancels the pending call and invalidates any running one.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
}
