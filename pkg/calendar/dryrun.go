package calendar

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/roomsync/roomsync/pkg/logging"
	"github.com/roomsync/roomsync/pkg/records"
)

// NewDryRun wraps a store so reads pass through and writes are logged
// but never applied. Reconciliation behaves exactly as it would for
// real, reporting the actions it would have taken.
func NewDryRun(store Store) Store {
	return &dryRunStore{store: store}
}

type dryRunStore struct {
	store Store
}

func (s *dryRunStore) BindFolder(ctx context.Context, mailbox string) (Folder, error) {
	folder, err := s.store.BindFolder(ctx, mailbox)
	if err != nil {
		return nil, err
	}
	return &dryRunFolder{folder: folder}, nil
}

type dryRunFolder struct {
	folder Folder
}

func (f *dryRunFolder) List(ctx context.Context, start, end time.Time) ([]Appointment, error) {
	return f.folder.List(ctx, start, end)
}

func (f *dryRunFolder) Create(ctx context.Context, rec records.EventRecord) (string, error) {
	logging.FromContext(ctx).Info().
		Str("id", rec.ID).
		Str("title", rec.Title).
		Msg("Would create appointment")
	return uuid.NewString(), nil
}

func (f *dryRunFolder) Update(ctx context.Context, handle string, rec records.EventRecord, changedFields []string) error {
	logging.FromContext(ctx).Info().
		Str("id", rec.ID).
		Str("handle", handle).
		Strs("fields", changedFields).
		Msg("Would update appointment")
	return nil
}

func (f *dryRunFolder) Remove(ctx context.Context, handle string) error {
	logging.FromContext(ctx).Info().
		Str("handle", handle).
		Msg("Would remove appointment")
	return nil
}
