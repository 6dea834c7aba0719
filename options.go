package roomsync

import (
	"github.com/roomsync/roomsync/pkg/calendar"
	"github.com/roomsync/roomsync/pkg/reconcile"
)

// Option configures a Syncer.
type Option func(*Syncer)

// WithStore sets the calendar store backend. Required: the engine has
// no default backend, tests and dry runs supply the in-memory store.
func WithStore(store calendar.Store) Option {
	return func(s *Syncer) {
		s.store = store
	}
}

// WithFetcher replaces the scheduling API fetcher.
func WithFetcher(fetcher SourceFetcher) Option {
	return func(s *Syncer) {
		s.fetcher = fetcher
	}
}

// WithReconciler replaces the default reconciler, for callers that
// need ignored fields.
func WithReconciler(r *reconcile.Reconciler) Option {
	return func(s *Syncer) {
		s.reconciler = r
	}
}
