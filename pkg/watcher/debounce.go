package watcher

import (
	"sync"
	"time"

	"github.com/snapdrop/cli/pkg/clock"
)

// DebounceQueue delays per-file callbacks until writes have quieted
// down, so half-written files are not submitted. Each new event for a
// path resets that path's timer; only the last event fires.
type DebounceQueue struct {
	clk      clock.Clock
	duration time.Duration

	mu      sync.Mutex
	entries map[string]clock.Timer
}

// NewDebounceQueue creates a queue with the given quiet duration.
func NewDebounceQueue(clk clock.Clock, duration time.Duration) *DebounceQueue {
	return &DebounceQueue{
		clk:      clk,
		duration: duration,
		entries:  make(map[string]clock.Timer),
	}
}

// Add schedules callback for filePath after the quiet duration,
// cancelling any timer already pending for the same path.
func (d *DebounceQueue) Add(filePath string, callback func(string)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if timer, exists := d.entries[filePath]; exists {
		timer.Stop()
		delete(d.entries, filePath)
	}

	d.entries[filePath] = d.clk.AfterFunc(d.duration, func() {
		d.mu.Lock()
		delete(d.entries, filePath)
		d.mu.Unlock()

		callback(filePath)
	})
}

// Stop cancels every pending timer.
func (d *DebounceQueue) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, timer := range d.entries {
		timer.Stop()
	}
	d.entries = make(map[string]clock.Timer)
}

// Pending returns the number of paths waiting on their quiet period.
func (d *DebounceQueue) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}
