package reconcile

import (
	"sort"
	"strconv"
	"time"

	"github.com/roomsync/roomsync/pkg/records"
)

// Reconciler diffs a source snapshot against a mirror snapshot.
type Reconciler struct {
	ignoreFields map[string]bool
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithIgnoredFields excludes fields from comparison. Useful when a
// calendar store is known to rewrite an attribute on save.
func WithIgnoredFields(fields ...string) Option {
	return func(r *Reconciler) {
		for _, f := range fields {
			r.ignoreFields[f] = true
		}
	}
}

// New creates a Reconciler.
func New(opts ...Option) *Reconciler {
	r := &Reconciler{ignoreFields: make(map[string]bool)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Diff computes the ordered action list that brings the mirror in line
// with the source. Source keys are processed in ascending lexicographic
// order so output is reproducible. Keys present only in the mirror
// produce no action: orphans are never removed automatically.
func (r *Reconciler) Diff(source, mirror records.Snapshot) ([]Action, Summary) {
	keys := source.Keys()
	sort.Strings(keys)

	var actions []Action
	var summary Summary

	for _, k := range keys {
		rec := source[k]

		// Title is recomputed from the record's own course, section and
		// instructors so a stale mirrored title is caught even when the
		// fetcher supplied one.
		rec.Title = records.DeriveTitle(rec.Course, rec.Section, rec.Instructors, rec.Title)

		existing, ok := mirror[k]
		if !ok {
			actions = append(actions, Action{Type: ActionCreate, Record: rec})
			summary.Created++
			continue
		}

		changes := r.compare(existing, rec)
		if len(changes) == 0 {
			summary.Unchanged++
			continue
		}

		actions = append(actions, Action{
			Type:    ActionUpdate,
			Record:  rec,
			Handle:  existing.ExternalHandle,
			Changes: changes,
		})
		summary.Updated++
	}

	return actions, summary
}

// compare checks the synchronized field set. Instructors are not
// compared directly: they feed the derived title, and the rewritten
// body always carries the full current record whenever any field moves.
func (r *Reconciler) compare(existing, updated records.EventRecord) []FieldChange {
	var changes []FieldChange

	add := func(field, oldVal, newVal string) {
		if oldVal == newVal || r.ignoreFields[field] {
			return
		}
		changes = append(changes, FieldChange{Field: field, OldValue: oldVal, NewValue: newVal})
	}

	add("Title", existing.Title, updated.Title)
	if !existing.Start.Equal(updated.Start) && !r.ignoreFields["Start"] {
		changes = append(changes, FieldChange{
			Field:    "Start",
			OldValue: existing.Start.Format(time.RFC3339),
			NewValue: updated.Start.Format(time.RFC3339),
		})
	}
	if !existing.End.Equal(updated.End) && !r.ignoreFields["End"] {
		changes = append(changes, FieldChange{
			Field:    "End",
			OldValue: existing.End.Format(time.RFC3339),
			NewValue: updated.End.Format(time.RFC3339),
		})
	}
	add("AllDay", strconv.FormatBool(existing.AllDay), strconv.FormatBool(updated.AllDay))
	add("MeetingType", existing.MeetingType, updated.MeetingType)
	add("Location", existing.Location, updated.Location)
	add("Term", existing.Term, updated.Term)
	add("Course", existing.Course, updated.Course)
	add("Section", existing.Section, updated.Section)

	return changes
}
