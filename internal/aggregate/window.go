// Package aggregate builds the per-vendor, per-category and per-month
// views every detector consumes. All views are computed fresh from a
// receipt slice for one lookback window and are never persisted.
package aggregate

import "time"

// Window is a trailing lookback range. The start boundary is inclusive.
type Window struct {
	Start time.Time
	End   time.Time
	Days  int
}

// NewWindow returns the trailing window of the given day count ending
// at now.
func NewWindow(now time.Time, days int) Window {
	return Window{
		Start: now.AddDate(0, 0, -days),
		End:   now,
		Days:  days,
	}
}

// Contains reports whether ts falls inside the window.
func (w Window) Contains(ts time.Time) bool {
	return !ts.Before(w.Start) && !ts.After(w.End)
}

// Months converts the window length to months for monthly-rate math.
func (w Window) Months() float64 {
	return float64(w.Days) / 30.0
}
