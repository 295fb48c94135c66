package shared

import "time"

// Clock abstracts wall time and one-shot timers so expiry and debounce logic can be driven by tests.
type Clock interface {
	Now() time.Time
	// AfterFunc runs fn on its own goroutine after d. The returned func cancels the timer and
	// reports whether it was still pending.
	AfterFunc(d time.Duration, fn func()) (stop func() bool)
}

// SystemClock is the [Clock] backed by package time.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) AfterFunc(d time.Duration, fn func()) func() bool {
	return time.AfterFunc(d, fn).Stop
}
