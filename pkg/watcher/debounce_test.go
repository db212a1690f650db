package watcher

import (
	"testing"
	"time"

	"github.com/snapdrop/cli/pkg/clock"
)

func TestDebounceQueueCoalescesWrites(t *testing.T) {
	fc := clock.NewFake()
	q := NewDebounceQueue(fc, time.Second)

	var fired []string
	callback := func(path string) { fired = append(fired, path) }

	q.Add("/a.jpg", callback)
	fc.Advance(500 * time.Millisecond)
	q.Add("/a.jpg", callback) // resets the timer
	fc.Advance(500 * time.Millisecond)

	if len(fired) != 0 {
		t.Fatalf("callback fired before quiet period elapsed: %v", fired)
	}

	fc.Advance(500 * time.Millisecond)
	if len(fired) != 1 || fired[0] != "/a.jpg" {
		t.Fatalf("expected one callback for /a.jpg, got %v", fired)
	}
	if q.Pending() != 0 {
		t.Fatalf("expected empty queue, got %d pending", q.Pending())
	}
}

func TestDebounceQueueIndependentPaths(t *testing.T) {
	fc := clock.NewFake()
	q := NewDebounceQueue(fc, time.Second)

	var fired []string
	callback := func(path string) { fired = append(fired, path) }

	q.Add("/a.jpg", callback)
	q.Add("/b.jpg", callback)
	if q.Pending() != 2 {
		t.Fatalf("expected 2 pending, got %d", q.Pending())
	}

	fc.Advance(time.Second)
	if len(fired) != 2 {
		t.Fatalf("expected both callbacks, got %v", fired)
	}
}

func TestDebounceQueueStopCancelsAll(t *testing.T) {
	fc := clock.NewFake()
	q := NewDebounceQueue(fc, time.Second)

	fired := false
	q.Add("/a.jpg", func(string) { fired = true })
	q.Stop()

	fc.Advance(5 * time.Second)
	if fired {
		t.Fatal("stopped queue still fired a callback")
	}
}
