// Package roomsync keeps a calendar store's appointments for a set of
// rooms synchronized with an authoritative scheduling API.
//
// Each run builds two snapshots per room: the source snapshot fetched
// from the scheduling API, and the mirror snapshot recovered from the
// calendar entries themselves by decoding the metadata embedded in
// their body text. The reconciler diffs the two and the resulting
// create/update actions are applied back to the calendar store. The
// process is idempotent: running it twice against unchanged inputs
// produces no actions the second time.
package roomsync

import (
	"context"

	"github.com/roomsync/roomsync/internal/sources/schedule"
	"github.com/roomsync/roomsync/internal/transport"
	"github.com/roomsync/roomsync/pkg/calendar"
	"github.com/roomsync/roomsync/pkg/config"
	"github.com/roomsync/roomsync/pkg/errors"
	"github.com/roomsync/roomsync/pkg/reconcile"
	"github.com/roomsync/roomsync/pkg/records"
)

// SourceFetcher builds a room's source snapshot. The scheduling API
// fetcher is the production implementation; tests substitute stubs.
type SourceFetcher interface {
	Snapshot(ctx context.Context, room string, window records.Window) (records.Snapshot, error)
}

// Syncer reconciles configured rooms against the calendar store.
type Syncer struct {
	cfg        *config.Config
	store      calendar.Store
	fetcher    SourceFetcher
	reconciler *reconcile.Reconciler
}

// New creates a Syncer for the given configuration.
func New(cfg *config.Config, opts ...Option) (*Syncer, error) {
	if cfg == nil {
		return nil, errors.NewConfigError("syncer", "configuration is required", errors.ErrInvalidInput)
	}

	s := &Syncer{
		cfg:        cfg,
		reconciler: reconcile.New(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil {
		return nil, errors.NewConfigError("syncer", "a calendar store is required", errors.ErrInvalidInput)
	}
	if s.fetcher == nil {
		client := schedule.NewClient(
			cfg.Source.BaseURL,
			cfg.Source.AccessKey,
			transport.WithTimeout(cfg.Sync.CallTimeout),
			transport.WithRetries(cfg.Retries()),
		)
		s.fetcher = schedule.NewFetcher(
			client,
			cfg.Source.InstitutionDomain,
			schedule.WithWorkers(cfg.Sync.FetchWorkers),
			schedule.WithLocation(cfg.Location()),
		)
	}

	return s, nil
}
