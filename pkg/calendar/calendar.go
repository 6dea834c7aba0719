// Package calendar defines the boundary to the calendar store. The
// reconciliation engine only ever talks to these interfaces; concrete
// backends (and the in-memory store used by tests and dry runs) live in
// subpackages.
package calendar

import (
	"context"
	"time"

	"github.com/roomsync/roomsync/pkg/records"
)

// Appointment is one native calendar item as returned by a folder
// listing, with its plain-text body included.
type Appointment struct {
	NativeID  string
	Organizer string
	Title     string
	Start     time.Time
	End       time.Time
	AllDay    bool
	Location  string
	Body      string
}

// Store resolves a mailbox to its calendar folder. A bind failure is
// fatal for that room only.
type Store interface {
	BindFolder(ctx context.Context, mailbox string) (Folder, error)
}

// Folder is one room's bound calendar folder.
//
// Create and Update encode the record's full state into the appointment
// body. Update mutates only the store's native attributes among the
// changed fields (Title, Start, End, AllDay, Location) but always
// rewrites the body, so the embedded metadata never diverges from the
// live fields. Remove is a hard delete; the reconciliation flow never
// calls it.
type Folder interface {
	List(ctx context.Context, start, end time.Time) ([]Appointment, error)
	Create(ctx context.Context, rec records.EventRecord) (handle string, err error)
	Update(ctx context.Context, handle string, rec records.EventRecord, changedFields []string) error
	Remove(ctx context.Context, handle string) error
}
