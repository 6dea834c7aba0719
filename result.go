package roomsync

import (
	"fmt"
	"strings"
	"time"
)

// RoomResult is the outcome of one room's reconciliation.
type RoomResult struct {
	Room      string
	Created   int
	Updated   int
	Unchanged int
	Failed    int // actions that could not be applied
	Err       error
}

// Skipped reports whether the room was aborted before any action ran.
func (r RoomResult) Skipped() bool {
	return r.Err != nil
}

// Result aggregates a full run across all rooms.
type Result struct {
	Rooms    []RoomResult
	Started  time.Time
	Finished time.Time
}

// Duration returns how long the run took.
func (r *Result) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}

// Totals sums the per-room counters.
func (r *Result) Totals() (created, updated, unchanged, failed, skippedRooms int) {
	for _, room := range r.Rooms {
		if room.Skipped() {
			skippedRooms++
			continue
		}
		created += room.Created
		updated += room.Updated
		unchanged += room.Unchanged
		failed += room.Failed
	}
	return
}

// String returns a human-readable run summary.
func (r *Result) String() string {
	created, updated, unchanged, failed, skipped := r.Totals()

	var b strings.Builder
	fmt.Fprintf(&b, "synced %d rooms in %s: %d created, %d updated, %d unchanged",
		len(r.Rooms)-skipped, r.Duration().Round(time.Millisecond), created, updated, unchanged)
	if failed > 0 {
		fmt.Fprintf(&b, ", %d failed", failed)
	}
	if skipped > 0 {
		fmt.Fprintf(&b, ", %d rooms skipped", skipped)
	}
	return b.String()
}
