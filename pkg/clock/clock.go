// Package clock abstracts timer scheduling so polling and debounce
// logic can be driven on virtual time in tests.
package clock

import "time"

// Timer is a scheduled callback that can be cancelled before it fires.
type Timer interface {
	// Stop cancels the timer. It reports whether the call prevented the
	// callback from firing.
	Stop() bool
}

// Clock issues timers and reports the current time.
type Clock interface {
	Now() time.Time
	// AfterFunc runs fn in its own goroutine after d has elapsed.
	AfterFunc(d time.Duration, fn func()) Timer
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// Real returns a Clock backed by the wall clock.
func Real() Clock { return realClock{} }
