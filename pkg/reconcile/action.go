// Package reconcile computes the difference between a source snapshot
// and a mirror snapshot as an ordered list of actions to apply against
// the calendar store.
package reconcile

import (
	"fmt"
	"strings"

	"github.com/roomsync/roomsync/pkg/records"
)

// ActionType represents the kind of calendar mutation an action asks for.
type ActionType string

const (
	// ActionCreate indicates a record missing from the mirror.
	ActionCreate ActionType = "create"
	// ActionUpdate indicates a mirrored record whose fields drifted.
	ActionUpdate ActionType = "update"
	// ActionRemove is defined for completeness. The reconciler never
	// emits it: orphan removal is a policy decision left to callers of
	// the calendar writer's Remove primitive.
	ActionRemove ActionType = "remove"
)

// FieldChange records one field that differs between the mirror and the
// source, with string renderings of both sides for reporting.
type FieldChange struct {
	Field    string
	OldValue string
	NewValue string
}

// Action is one Create or Update instruction destined for the calendar
// store. Record always carries the entire current source record; an
// applied update rewrites the full encoded body, never a merge.
type Action struct {
	Type    ActionType
	Record  records.EventRecord
	Handle  string // mirror's native item handle, set on updates only
	Changes []FieldChange
}

// ChangedFields returns the names of the fields that differ, in
// comparison order.
func (a Action) ChangedFields() []string {
	fields := make([]string, len(a.Changes))
	for i, c := range a.Changes {
		fields[i] = c.Field
	}
	return fields
}

// Summary aggregates action counts for one reconciliation.
type Summary struct {
	Created   int
	Updated   int
	Unchanged int
}

// HasChanges returns true if the reconciliation produced any actions.
func (s Summary) HasChanges() bool {
	return s.Created > 0 || s.Updated > 0
}

// String returns a human-readable one-line summary.
func (s Summary) String() string {
	if !s.HasChanges() {
		return fmt.Sprintf("no changes (%d unchanged)", s.Unchanged)
	}
	parts := []string{}
	if s.Created > 0 {
		parts = append(parts, fmt.Sprintf("%d created", s.Created))
	}
	if s.Updated > 0 {
		parts = append(parts, fmt.Sprintf("%d updated", s.Updated))
	}
	parts = append(parts, fmt.Sprintf("%d unchanged", s.Unchanged))
	return strings.Join(parts, ", ")
}
