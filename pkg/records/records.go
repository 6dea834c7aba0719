// Package records defines the canonical in-memory representation of
// room meetings and the instructors attached to them. Both the source
// snapshot and the mirror snapshot are built from these types; a sync
// run constructs fresh values and discards them when it finishes.
package records

import "time"

// SourceAPI is the Source tag for records built from the scheduling API.
const SourceAPI = "source-api"

// EventRecord is one meeting occurrence for a room.
//
// Records are value snapshots: nothing mutates one in place. A record
// originating from the scheduling API never carries ExternalHandle; a
// record recovered from the calendar store always does.
type EventRecord struct {
	ID             string
	Source         string
	Title          string
	AllDay         bool
	Start          time.Time
	End            time.Time
	MeetingType    string
	Location       string
	Term           string
	Course         string
	Section        string
	Instructors    []InstructorRecord
	ExternalHandle string
}

// InstructorRecord is one instructor attached to an EventRecord.
// Every field is independently optional.
type InstructorRecord struct {
	FirstName   string
	LastName    string
	DisplayName string
	Office      string
	Title       string
	Department  string
	Division    string
	Email       string
}

// Snapshot is the complete set of records for one room from one origin,
// keyed by record ID.
type Snapshot map[string]EventRecord

// Keys returns the snapshot's record IDs in unspecified order.
func (s Snapshot) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	return keys
}
