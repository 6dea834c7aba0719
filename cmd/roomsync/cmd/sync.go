package cmd

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/roomsync/roomsync"
	"github.com/roomsync/roomsync/pkg/calendar"
	"github.com/roomsync/roomsync/pkg/calendar/memory"
	"github.com/roomsync/roomsync/pkg/config"
	"github.com/roomsync/roomsync/pkg/errors"
	"github.com/roomsync/roomsync/pkg/logging"
)

var (
	syncRoom     string
	syncDryRun   bool
	syncSchedule string
)

// syncCmd represents the sync command.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile room calendars with the scheduling API",
	Long: `Sync fetches the scheduled meetings for each configured room, reads
the state mirrored in the room's existing calendar entries, and applies
the create and update actions needed to bring the calendar in line with
the schedule. Appointments the tool did not create are left alone.

No durable calendar backend ships with this build, so the command
requires --dry-run: actions are computed and reported but nothing is
persisted. Embedders wire a real backend through the library's
WithStore option.

With --schedule the command stays resident and runs on the given cron
expression until interrupted.`,
	Example: `  roomsync sync --dry-run
  roomsync sync --dry-run --room HUM-120
  roomsync sync --dry-run --schedule "*/15 * * * *"`,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().StringVarP(&syncRoom, "room", "r", "", "Sync a single room (by roomNumber; syncs all if not specified)")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Compute and report actions without persisting calendar changes (required until a backend is configured)")
	syncCmd.Flags().StringVar(&syncSchedule, "schedule", "", "Cron expression for periodic runs (runs once if not specified)")
}

func runSync(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	if !syncDryRun {
		return errors.NewConfigError("calendar",
			"no calendar backend configured; run with --dry-run",
			errors.ErrInvalidInput)
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	if syncRoom != "" {
		var rooms []config.Room
		for _, room := range cfg.Rooms {
			if room.RoomNumber == syncRoom || room.Name == syncRoom {
				rooms = append(rooms, room)
			}
		}
		if len(rooms) == 0 {
			return errors.NewConfigError("rooms", "no configured room matches "+syncRoom, errors.ErrNotFound)
		}
		cfg.Rooms = rooms
	}

	store := calendar.NewDryRun(memory.NewStore())
	syncer, err := roomsync.New(cfg, roomsync.WithStore(store))
	if err != nil {
		return err
	}

	if syncSchedule == "" {
		return runOnce(ctx, syncer)
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(syncSchedule, func() {
		if err := runOnce(ctx, syncer); err != nil {
			logging.FromContext(ctx).Error().Err(err).Msg("Scheduled run failed")
		}
	}); err != nil {
		return errors.NewConfigError("schedule", "invalid cron expression "+syncSchedule, err)
	}

	logging.FromContext(ctx).Info().
		Str("schedule", syncSchedule).
		Msg("Running on schedule until interrupted")

	scheduler.Start()
	<-ctx.Done()
	<-scheduler.Stop().Done()
	return nil
}

func runOnce(ctx context.Context, syncer *roomsync.Syncer) error {
	result, err := syncer.Sync(ctx)
	if err != nil {
		return err
	}

	for _, room := range result.Rooms {
		if room.Skipped() {
			fmt.Printf("  %s: skipped (%v)\n", room.Room, room.Err)
			continue
		}
		fmt.Printf("  %s: %d created, %d updated, %d unchanged",
			room.Room, room.Created, room.Updated, room.Unchanged)
		if room.Failed > 0 {
			fmt.Printf(", %d failed", room.Failed)
		}
		fmt.Println()
	}
	fmt.Printf("%s (dry run, no changes persisted)\n", result)
	return nil
}
