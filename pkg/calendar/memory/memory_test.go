package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomsync/roomsync/pkg/bodycodec"
	"github.com/roomsync/roomsync/pkg/calendar"
	"github.com/roomsync/roomsync/pkg/errors"
	"github.com/roomsync/roomsync/pkg/records"
)

func testRecord(id string, start time.Time) records.EventRecord {
	return records.EventRecord{
		ID:       id,
		Source:   records.SourceAPI,
		Title:    "CS 101 02 (Smith)",
		Start:    start,
		End:      start.Add(time.Hour),
		Location: "SCI 204",
	}
}

func TestCreateAndList(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	folder, err := store.BindFolder(ctx, "sci204@example.edu")
	require.NoError(t, err)

	start := time.Date(2026, 1, 12, 9, 0, 0, 0, time.UTC)
	handle, err := folder.Create(ctx, testRecord("MTG-1", start))
	require.NoError(t, err)
	require.NotEmpty(t, handle)

	items, err := folder.List(ctx, start.Add(-time.Hour), start.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, handle, items[0].NativeID)
	assert.Equal(t, "sci204@example.edu", items[0].Organizer)
	assert.Equal(t, "MTG-1", bodycodec.Decode(items[0].Body).ID)
}

func TestListWindowIntersection(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	folder, err := store.BindFolder(ctx, "room@example.edu")
	require.NoError(t, err)

	day := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)
	_, err = folder.Create(ctx, testRecord("before", day.Add(-3*time.Hour)))
	require.NoError(t, err)
	_, err = folder.Create(ctx, testRecord("inside", day.Add(9*time.Hour)))
	require.NoError(t, err)
	_, err = folder.Create(ctx, testRecord("after", day.Add(30*time.Hour)))
	require.NoError(t, err)

	items, err := folder.List(ctx, day, day.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "inside", bodycodec.Decode(items[0].Body).ID)
}

func TestUpdateMutatesNativeFieldsAndBody(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	folder, err := store.BindFolder(ctx, "room@example.edu")
	require.NoError(t, err)

	start := time.Date(2026, 1, 12, 9, 0, 0, 0, time.UTC)
	handle, err := folder.Create(ctx, testRecord("MTG-1", start))
	require.NoError(t, err)

	updated := testRecord("MTG-1", start.Add(time.Hour))
	updated.Location = "SCI 301"
	require.NoError(t, folder.Update(ctx, handle, updated, []string{"Start", "End"}))

	memFolder := store.Folder("room@example.edu")
	item, ok := memFolder.Get(handle)
	require.True(t, ok)

	assert.Equal(t, updated.Start, item.Start)
	assert.Equal(t, updated.End, item.End)
	// Location was not in changedFields so the native attribute stays,
	// but the body always reflects the full record.
	assert.Equal(t, "SCI 204", item.Location)
	assert.Equal(t, "SCI 301", bodycodec.Decode(item.Body).Location)
}

func TestUpdateUnknownHandle(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	folder, err := store.BindFolder(ctx, "room@example.edu")
	require.NoError(t, err)

	err = folder.Update(ctx, "missing", testRecord("MTG-1", time.Now()), nil)
	assert.True(t, errors.IsNotFound(err))
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	folder, err := store.BindFolder(ctx, "room@example.edu")
	require.NoError(t, err)

	handle, err := folder.Create(ctx, testRecord("MTG-1", time.Now()))
	require.NoError(t, err)

	require.NoError(t, folder.Remove(ctx, handle))
	assert.True(t, errors.IsNotFound(folder.Remove(ctx, handle)))
	assert.Equal(t, 0, store.Folder("room@example.edu").Len())
}

func TestBindFailure(t *testing.T) {
	store := NewStore()
	store.FailMailboxes = map[string]bool{"broken@example.edu": true}

	_, err := store.BindFolder(context.Background(), "broken@example.edu")
	require.Error(t, err)
	assert.True(t, errors.IsRoomFatal(err))
}

func TestSeedHandCreatedEntry(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	_, err := store.BindFolder(ctx, "room@example.edu")
	require.NoError(t, err)

	folder := store.Folder("room@example.edu")
	start := time.Date(2026, 1, 12, 13, 0, 0, 0, time.UTC)
	id := folder.Seed(calendar.Appointment{
		Title: "Maintenance window",
		Start: start,
		End:   start.Add(time.Hour),
		Body:  "free text, no embedded metadata",
	})

	items, err := folder.List(ctx, start.Add(-time.Hour), start.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, id, items[0].NativeID)
	assert.Equal(t, "room@example.edu", items[0].Organizer)
}
