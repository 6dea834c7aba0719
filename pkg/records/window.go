package records

import "time"

// Window is a closed-open time range [Start, End): Start itself is
// inside the window, End itself is outside.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Valid reports whether the window has a positive extent.
func (w Window) Valid() bool {
	return w.End.After(w.Start)
}
