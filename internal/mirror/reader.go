// Package mirror recovers a room's previously-synchronized snapshot
// from the calendar store itself, by decoding the metadata embedded in
// each appointment's body text. No external database is involved: the
// mirror is rebuilt from scratch on every run.
package mirror

import (
	"context"

	"github.com/roomsync/roomsync/pkg/bodycodec"
	"github.com/roomsync/roomsync/pkg/calendar"
	"github.com/roomsync/roomsync/pkg/logging"
	"github.com/roomsync/roomsync/pkg/records"
)

// Snapshot lists the folder's appointments intersecting the window and
// decodes each body into a record keyed by id.
//
// An appointment whose body yields no id (hand-created entries carry no
// embedded metadata) falls back to its native item id, so every
// mirrored entry stays addressable. Decode never fails; a malformed
// body just produces a mostly-empty record.
func Snapshot(ctx context.Context, folder calendar.Folder, window records.Window) (records.Snapshot, error) {
	items, err := folder.List(ctx, window.Start, window.End)
	if err != nil {
		return nil, err
	}

	log := logging.FromContext(ctx)

	snapshot := make(records.Snapshot, len(items))
	for _, item := range items {
		rec := bodycodec.Decode(item.Body)
		if rec.ID == "" {
			rec.ID = item.NativeID
		}
		rec.Source = "mirror/" + item.Organizer
		rec.ExternalHandle = item.NativeID

		if _, exists := snapshot[rec.ID]; exists {
			log.Warn().
				Str("id", rec.ID).
				Str("native_id", item.NativeID).
				Msg("Duplicate mirrored id, keeping the later entry")
		}
		snapshot[rec.ID] = rec
	}
	return snapshot, nil
}
