package roomsync

import (
	"context"
	"sync"
	"time"

	"github.com/roomsync/roomsync/internal/mirror"
	"github.com/roomsync/roomsync/pkg/calendar"
	"github.com/roomsync/roomsync/pkg/config"
	"github.com/roomsync/roomsync/pkg/errors"
	"github.com/roomsync/roomsync/pkg/logging"
	"github.com/roomsync/roomsync/pkg/reconcile"
	"github.com/roomsync/roomsync/pkg/records"
)

// Sync reconciles every configured room against the calendar store.
//
// Rooms touch disjoint calendar folders and may run concurrently up to
// the configured limit; writes within a single room are always applied
// one at a time because the calendar store gives no transactional
// guarantee across concurrent mutations of one folder. A room-fatal
// failure (folder bind, snapshot fetch) skips that room only.
func (s *Syncer) Sync(ctx context.Context) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if s.cfg.Sync.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Sync.RunTimeout)
		defer cancel()
	}

	window, err := s.cfg.ResolveWindow(time.Now())
	if err != nil {
		return nil, err
	}

	result := &Result{
		Started: time.Now(),
		Rooms:   make([]RoomResult, len(s.cfg.Rooms)),
	}

	logging.FromContext(ctx).Info().
		Int("rooms", len(s.cfg.Rooms)).
		Time("window_start", window.Start).
		Time("window_end", window.End).
		Msg("Starting sync run")

	limit := s.cfg.Sync.RoomConcurrency
	if limit < 1 {
		limit = 1
	}
	sem := make(chan struct{}, limit)

	var wg sync.WaitGroup
	for i, room := range s.cfg.Rooms {
		wg.Add(1)
		go func(i int, room config.Room) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			result.Rooms[i] = s.syncRoom(ctx, room, window)
		}(i, room)
	}
	wg.Wait()

	result.Finished = time.Now()

	logging.FromContext(ctx).Info().
		Str("summary", result.String()).
		Msg("Sync run finished")

	return result, ctx.Err()
}

// syncRoom runs the full pipeline for one room: bind the folder, build
// both snapshots, diff, apply.
func (s *Syncer) syncRoom(ctx context.Context, room config.Room, window records.Window) RoomResult {
	ctx = logging.WithRoom(ctx, room.RoomNumber)
	log := logging.FromContext(ctx)

	res := RoomResult{Room: room.RoomNumber}

	folder, err := s.store.BindFolder(ctx, room.Mailbox)
	if err != nil {
		res.Err = errors.NewRoomError(room.RoomNumber, "binding calendar folder for "+room.Mailbox, err)
		log.Error().Err(res.Err).Msg("Skipping room")
		return res
	}

	source, err := s.fetcher.Snapshot(ctx, room.RoomNumber, window)
	if err != nil {
		res.Err = errors.NewRoomError(room.RoomNumber, "fetching source snapshot", err)
		log.Error().Err(res.Err).Msg("Skipping room")
		return res
	}

	mirrored, err := mirror.Snapshot(ctx, folder, window)
	if err != nil {
		res.Err = errors.NewRoomError(room.RoomNumber, "reading mirrored snapshot", err)
		log.Error().Err(res.Err).Msg("Skipping room")
		return res
	}

	actions, summary := s.reconciler.Diff(source, mirrored)
	res.Unchanged = summary.Unchanged

	log.Info().
		Int("source_records", len(source)).
		Int("mirror_records", len(mirrored)).
		Str("plan", summary.String()).
		Msg("Reconciled room")

	// Applied strictly in order, one write in flight at a time.
	for _, action := range actions {
		if ctx.Err() != nil {
			res.Failed++
			continue
		}
		if err := s.apply(ctx, folder, action); err != nil {
			res.Failed++
			log.Error().Err(err).
				Str("id", action.Record.ID).
				Str("action", string(action.Type)).
				Msg("Action failed, continuing with remaining records")
			continue
		}
		switch action.Type {
		case reconcile.ActionCreate:
			res.Created++
		case reconcile.ActionUpdate:
			res.Updated++
		}
	}

	return res
}

// apply executes one action against the room's folder.
func (s *Syncer) apply(ctx context.Context, folder calendar.Folder, action reconcile.Action) error {
	ctx = logging.WithOperation(ctx, string(action.Type))
	switch action.Type {
	case reconcile.ActionCreate:
		_, err := folder.Create(ctx, action.Record)
		return errors.WrapItem("create", "appointment", action.Record.ID, err)
	case reconcile.ActionUpdate:
		err := folder.Update(ctx, action.Handle, action.Record, action.ChangedFields())
		return errors.WrapItem("update", "appointment", action.Record.ID, err)
	default:
		return errors.NewItemError(string(action.Type), "appointment", action.Record.ID, errors.ErrInvalidInput)
	}
}
