package schedule

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/roomsync/roomsync/pkg/errors"
	"github.com/roomsync/roomsync/pkg/logging"
	"github.com/roomsync/roomsync/pkg/records"
)

// DefaultWorkers is the default size of the detail-fetch worker pool.
const DefaultWorkers = 4

// Fetcher builds a room's source snapshot from the scheduling API.
//
// Detail fetches are independent reads and run on a bounded worker
// pool; everything that failed is skipped and logged so one bad meeting
// or instructor never aborts the room.
type Fetcher struct {
	client  *Client
	domain  string
	loc     *time.Location
	workers int

	mu          sync.Mutex
	instructors map[string]*records.InstructorRecord
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithWorkers sets the detail-fetch worker pool size.
func WithWorkers(n int) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.workers = n
		}
	}
}

// WithLocation sets the timezone meeting dates and clock times are
// interpreted in. Defaults to UTC.
func WithLocation(loc *time.Location) FetcherOption {
	return func(f *Fetcher) {
		if loc != nil {
			f.loc = loc
		}
	}
}

// NewFetcher creates a Fetcher. domain is the institution's email
// domain used to derive instructor addresses from directory uids.
func NewFetcher(client *Client, domain string, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:      client,
		domain:      domain,
		loc:         time.UTC,
		workers:     DefaultWorkers,
		instructors: make(map[string]*records.InstructorRecord),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Snapshot lists a room's meetings, keeps the ones dated inside the
// closed-open window, fetches each retained meeting's detail and
// assembles the source snapshot.
func (f *Fetcher) Snapshot(ctx context.Context, room string, window records.Window) (records.Snapshot, error) {
	log := logging.FromContext(ctx)

	summaries, err := f.client.ListMeetings(ctx, room, window.Start, window.End)
	if err != nil {
		return nil, err
	}

	// Window filter on the meeting date. The listing endpoint already
	// takes a range, but the boundary convention is enforced here so it
	// does not depend on the API's own inclusivity.
	retained := summaries[:0]
	for _, s := range summaries {
		date, err := time.ParseInLocation(DateLayout, s.Date, f.loc)
		if err != nil {
			log.Warn().Str("meeting_id", s.ID).Str("date", s.Date).Msg("Skipping meeting with unparseable date")
			continue
		}
		if window.Contains(date) {
			retained = append(retained, s)
		}
	}

	results := make([]*records.EventRecord, len(retained))

	var wg sync.WaitGroup
	indexes := make(chan int)

	workers := f.workers
	if workers > len(retained) {
		workers = len(retained)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				results[i] = f.fetchOne(ctx, retained[i])
			}
		}()
	}

	for i := range retained {
		select {
		case indexes <- i:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(indexes)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, &errors.APIError{Message: "snapshot canceled", Err: errors.ErrCanceled}
	}

	snapshot := make(records.Snapshot, len(results))
	for _, rec := range results {
		if rec != nil {
			snapshot[rec.ID] = *rec
		}
	}
	return snapshot, nil
}

// fetchOne fetches one meeting's detail and assembles its record.
// Returns nil when the meeting must be skipped.
func (f *Fetcher) fetchOne(ctx context.Context, summary MeetingSummary) *records.EventRecord {
	log := logging.FromContext(ctx)

	detail, err := f.client.MeetingDetail(ctx, summary.ID)
	if err != nil {
		itemErr := errors.WrapItem("fetch", "meeting", summary.ID, err)
		log.Error().Err(itemErr).Str("meeting_id", summary.ID).Msg("Skipping meeting")
		return nil
	}

	rec := f.assemble(ctx, summary, detail)
	return &rec
}

// assemble converts one meeting's wire data into an EventRecord.
func (f *Fetcher) assemble(ctx context.Context, summary MeetingSummary, detail *MeetingDetail) records.EventRecord {
	rec := records.EventRecord{
		ID:          detail.ID,
		Source:      records.SourceAPI,
		MeetingType: detail.MeetingType,
		Location:    composeLocation(summary.Room),
		Term:        detail.Course.Term,
	}
	if rec.ID == "" {
		rec.ID = summary.ID
	}

	rec.Start, rec.End, rec.AllDay = f.times(detail)
	rec.Course, rec.Section = splitSection(detail.Course.Section)
	rec.Instructors = f.fetchInstructors(ctx, detail.Course.Instructors)
	rec.Title = records.DeriveTitle(rec.Course, rec.Section, rec.Instructors, detail.Meeting.Title)

	return rec
}

// times resolves the record's start and end. A meeting without parseable
// clock times becomes an all-day event covering its date.
func (f *Fetcher) times(detail *MeetingDetail) (start, end time.Time, allDay bool) {
	date, err := time.ParseInLocation(DateLayout, detail.Date, f.loc)
	if err != nil {
		return time.Time{}, time.Time{}, true
	}

	startClock, startErr := time.Parse(ClockLayout, detail.Start)
	endClock, endErr := time.Parse(ClockLayout, detail.End)
	if startErr != nil || endErr != nil {
		return date, date.AddDate(0, 0, 1), true
	}

	start = date.Add(time.Duration(startClock.Hour())*time.Hour + time.Duration(startClock.Minute())*time.Minute)
	end = date.Add(time.Duration(endClock.Hour())*time.Hour + time.Duration(endClock.Minute())*time.Minute)
	if end.Before(start) {
		end = start
	}
	return start, end, false
}

// fetchInstructors resolves instructor ids in order, skipping the ones
// whose directory fetch fails. Resolved records are cached for the
// lifetime of the fetcher so shared instructors are fetched once.
func (f *Fetcher) fetchInstructors(ctx context.Context, ids []string) []records.InstructorRecord {
	log := logging.FromContext(ctx)

	var out []records.InstructorRecord
	for _, id := range ids {
		if cached := f.cached(id); cached != nil {
			out = append(out, *cached)
			continue
		}

		detail, err := f.client.InstructorDetail(ctx, id)
		if err != nil {
			itemErr := errors.WrapItem("fetch", "instructor", id, err)
			log.Error().Err(itemErr).Str("instructor_id", id).Msg("Skipping instructor")
			continue
		}

		inst := records.InstructorRecord{
			FirstName:   detail.GivenName,
			LastName:    detail.Surname,
			DisplayName: detail.DisplayName,
			Office:      detail.OfficeLocation,
			Title:       detail.Title,
			Department:  detail.Department,
			Division:    detail.Division,
		}
		if detail.UID != "" && f.domain != "" {
			inst.Email = detail.UID + "@" + f.domain
		}

		f.store(id, inst)
		out = append(out, inst)
	}
	return out
}

func (f *Fetcher) cached(id string) *records.InstructorRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.instructors[id]
}

func (f *Fetcher) store(id string, inst records.InstructorRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.instructors[id] = &inst
}

// composeLocation joins building code and room number.
func composeLocation(room MeetingRoom) string {
	return strings.TrimSpace(room.BuildingCode + " " + room.Room)
}

// splitSection parses a composite section string into course and
// section. The composite form is department-number-section; any other
// part count leaves both empty.
func splitSection(composite string) (course, section string) {
	parts := strings.Split(composite, "-")
	if len(parts) != 3 {
		return "", ""
	}
	return parts[0] + " " + parts[1], parts[2]
}
