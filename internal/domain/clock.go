package domain

import "github.com/jonboulle/clockwork"

// clock is a package-level time source so tests can freeze the calendar month
// used by seasonality classification. Production code uses the real clock.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source for recharge estimation. Pass nil to reset
// to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Clock exposes the package time source for callers that stamp domain
// records and want test-controllable time.
func Clock() clockwork.Clock { return clock }
