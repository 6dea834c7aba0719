// Package memory provides an in-memory calendar store for tests and
// dry runs. It implements the full calendar boundary, including window
// intersection listing and the body rewrite contract, so the engine can
// be exercised end to end without a real backend.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/roomsync/roomsync/pkg/bodycodec"
	"github.com/roomsync/roomsync/pkg/calendar"
	"github.com/roomsync/roomsync/pkg/errors"
	"github.com/roomsync/roomsync/pkg/records"
)

// Store is an in-memory calendar store. Folders are created on first
// bind, matching a backend where every configured mailbox resolves.
type Store struct {
	mu      sync.Mutex
	folders map[string]*Folder

	// FailMailboxes simulates bind failures for the named mailboxes.
	FailMailboxes map[string]bool
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{folders: make(map[string]*Folder)}
}

// BindFolder resolves a mailbox to its folder, creating it if needed.
func (s *Store) BindFolder(_ context.Context, mailbox string) (calendar.Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailMailboxes[mailbox] {
		return nil, errors.NewRoomError(mailbox, "folder bind failed", errors.ErrNotFound)
	}

	folder, ok := s.folders[mailbox]
	if !ok {
		folder = &Folder{
			organizer: mailbox,
			items:     make(map[string]calendar.Appointment),
		}
		s.folders[mailbox] = folder
	}
	return folder, nil
}

// Folder returns a mailbox's folder for test seeding and inspection,
// creating it if it was never bound.
func (s *Store) Folder(mailbox string) *Folder {
	s.mu.Lock()
	defer s.mu.Unlock()

	folder, ok := s.folders[mailbox]
	if !ok {
		folder = &Folder{
			organizer: mailbox,
			items:     make(map[string]calendar.Appointment),
		}
		s.folders[mailbox] = folder
	}
	return folder
}

// Folder is one mailbox's in-memory appointment collection.
type Folder struct {
	mu        sync.Mutex
	organizer string
	items     map[string]calendar.Appointment
}

// List returns appointments intersecting the closed-open window
// [start, end).
func (f *Folder) List(_ context.Context, start, end time.Time) ([]calendar.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []calendar.Appointment
	for _, item := range f.items {
		if item.Start.Before(end) && item.End.After(start) {
			out = append(out, item)
		}
	}
	return out, nil
}

// Create adds an appointment for the record and returns its native id.
func (f *Folder) Create(_ context.Context, rec records.EventRecord) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := uuid.NewString()
	f.items[id] = calendar.Appointment{
		NativeID:  id,
		Organizer: f.organizer,
		Title:     rec.Title,
		Start:     rec.Start,
		End:       rec.End,
		AllDay:    rec.AllDay,
		Location:  rec.Location,
		Body:      bodycodec.Encode(rec),
	}
	return id, nil
}

// Update mutates the native attributes named in changedFields and
// always rewrites the encoded body from the full record.
func (f *Folder) Update(_ context.Context, handle string, rec records.EventRecord, changedFields []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	item, ok := f.items[handle]
	if !ok {
		return errors.NewItemError("update", "appointment", handle, errors.ErrNotFound)
	}

	for _, field := range changedFields {
		switch field {
		case "Title":
			item.Title = rec.Title
		case "Start":
			item.Start = rec.Start
		case "End":
			item.End = rec.End
		case "AllDay":
			item.AllDay = rec.AllDay
		case "Location":
			item.Location = rec.Location
		}
		// MeetingType, Term, Course and Section have no native
		// representation; they live only in the body.
	}

	item.Body = bodycodec.Encode(rec)
	f.items[handle] = item
	return nil
}

// Remove hard-deletes an appointment.
func (f *Folder) Remove(_ context.Context, handle string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.items[handle]; !ok {
		return errors.NewItemError("remove", "appointment", handle, errors.ErrNotFound)
	}
	delete(f.items, handle)
	return nil
}

// Seed inserts a raw appointment directly, bypassing the record
// encoding path. Tests use it to plant hand-created entries.
func (f *Folder) Seed(item calendar.Appointment) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	if item.NativeID == "" {
		item.NativeID = uuid.NewString()
	}
	if item.Organizer == "" {
		item.Organizer = f.organizer
	}
	f.items[item.NativeID] = item
	return item.NativeID
}

// Len returns the number of appointments in the folder.
func (f *Folder) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

// Get returns an appointment by native id for test inspection.
func (f *Folder) Get(handle string) (calendar.Appointment, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[handle]
	return item, ok
}
