package schedule

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomsync/roomsync/internal/transport"
	"github.com/roomsync/roomsync/pkg/records"
)

// fakeAPI serves a canned scheduling API for tests.
type fakeAPI struct {
	meetings    map[string][]MeetingSummary // keyed by room
	details     map[string]MeetingDetail
	instructors map[string]InstructorDetail
	failDetails map[string]int // meeting id -> status code to return
	failInstr   map[string]int
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/rooms/", func(w http.ResponseWriter, r *http.Request) {
		room := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/rooms/"), "/meetings")
		writeJSON(w, f.meetings[room])
	})
	mux.HandleFunc("/meetings/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/meetings/")
		if code, ok := f.failDetails[id]; ok {
			w.WriteHeader(code)
			return
		}
		detail, ok := f.details[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(w, detail)
	})
	mux.HandleFunc("/instructors/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/instructors/")
		if code, ok := f.failInstr[id]; ok {
			w.WriteHeader(code)
			return
		}
		inst, ok := f.instructors[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(w, inst)
	})
	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func summary(id, date string) MeetingSummary {
	return MeetingSummary{
		ID:   id,
		Date: date,
		Room: MeetingRoom{BuildingCode: "SCI", Room: "204"},
	}
}

func detail(id, date string) MeetingDetail {
	return MeetingDetail{
		ID:          id,
		MeetingType: "course",
		Date:        date,
		Start:       "09:00",
		End:         "10:15",
		Meeting:     MeetingInfo{Title: "Intro to Computer Science"},
		Course: CourseSection{
			Term:        "2026SP",
			Section:     "CS-101-02",
			Instructors: []string{"I-1"},
		},
	}
}

func smith() InstructorDetail {
	return InstructorDetail{
		GivenName:      "Ada",
		Surname:        "Smith",
		DisplayName:    "Ada Smith",
		OfficeLocation: "SCI 310",
		Title:          "Professor",
		Department:     "Computer Science",
		Division:       "Natural Sciences",
		UID:            "asmith",
	}
}

func newTestFetcher(t *testing.T, api *fakeAPI, opts ...FetcherOption) *Fetcher {
	t.Helper()
	server := httptest.NewServer(api.handler())
	t.Cleanup(server.Close)

	client := NewClient(server.URL, "test-key", transport.WithRetries(0))
	return NewFetcher(client, "example.edu", opts...)
}

func window(startDay, endDay string) records.Window {
	start, _ := time.Parse(DateLayout, startDay)
	end, _ := time.Parse(DateLayout, endDay)
	return records.Window{Start: start, End: end}
}

func TestSnapshotAssemblesRecord(t *testing.T) {
	api := &fakeAPI{
		meetings:    map[string][]MeetingSummary{"SCI-204": {summary("MTG-1", "2026-01-12")}},
		details:     map[string]MeetingDetail{"MTG-1": detail("MTG-1", "2026-01-12")},
		instructors: map[string]InstructorDetail{"I-1": smith()},
	}
	fetcher := newTestFetcher(t, api)

	snapshot, err := fetcher.Snapshot(context.Background(), "SCI-204", window("2026-01-12", "2026-01-19"))
	require.NoError(t, err)
	require.Len(t, snapshot, 1)

	rec := snapshot["MTG-1"]
	assert.Equal(t, "MTG-1", rec.ID)
	assert.Equal(t, records.SourceAPI, rec.Source)
	assert.Equal(t, "CS 101 02 (Smith)", rec.Title)
	assert.Equal(t, "course", rec.MeetingType)
	assert.Equal(t, "SCI 204", rec.Location)
	assert.Equal(t, "2026SP", rec.Term)
	assert.Equal(t, "CS 101", rec.Course)
	assert.Equal(t, "02", rec.Section)
	assert.Empty(t, rec.ExternalHandle)
	assert.False(t, rec.AllDay)
	assert.Equal(t, time.Date(2026, 1, 12, 9, 0, 0, 0, time.UTC), rec.Start)
	assert.Equal(t, time.Date(2026, 1, 12, 10, 15, 0, 0, time.UTC), rec.End)

	require.Len(t, rec.Instructors, 1)
	assert.Equal(t, records.InstructorRecord{
		FirstName:   "Ada",
		LastName:    "Smith",
		DisplayName: "Ada Smith",
		Office:      "SCI 310",
		Title:       "Professor",
		Department:  "Computer Science",
		Division:    "Natural Sciences",
		Email:       "asmith@example.edu",
	}, rec.Instructors[0])
}

func TestSnapshotWindowBoundaries(t *testing.T) {
	api := &fakeAPI{
		meetings: map[string][]MeetingSummary{"SCI-204": {
			summary("before", "2026-01-11"),
			summary("at-start", "2026-01-12"),
			summary("inside", "2026-01-14"),
			summary("at-end", "2026-01-19"),
			summary("after", "2026-01-20"),
		}},
		details: map[string]MeetingDetail{
			"at-start": detail("at-start", "2026-01-12"),
			"inside":   detail("inside", "2026-01-14"),
		},
		instructors: map[string]InstructorDetail{"I-1": smith()},
	}
	fetcher := newTestFetcher(t, api)

	snapshot, err := fetcher.Snapshot(context.Background(), "SCI-204", window("2026-01-12", "2026-01-19"))
	require.NoError(t, err)

	// Closed-open: the start date is included, the end date excluded.
	assert.Contains(t, snapshot, "at-start")
	assert.Contains(t, snapshot, "inside")
	assert.NotContains(t, snapshot, "before")
	assert.NotContains(t, snapshot, "at-end")
	assert.NotContains(t, snapshot, "after")
}

func TestSnapshotMeetingFailureIsolated(t *testing.T) {
	api := &fakeAPI{
		meetings: map[string][]MeetingSummary{"SCI-204": {
			summary("good", "2026-01-12"),
			summary("bad", "2026-01-13"),
		}},
		details: map[string]MeetingDetail{
			"good": detail("good", "2026-01-12"),
			"bad":  detail("bad", "2026-01-13"),
		},
		instructors: map[string]InstructorDetail{"I-1": smith()},
		failDetails: map[string]int{"bad": http.StatusInternalServerError},
	}
	fetcher := newTestFetcher(t, api)

	snapshot, err := fetcher.Snapshot(context.Background(), "SCI-204", window("2026-01-12", "2026-01-19"))
	require.NoError(t, err)
	assert.Contains(t, snapshot, "good")
	assert.NotContains(t, snapshot, "bad")
}

func TestSnapshotInstructorFailureIsolated(t *testing.T) {
	d := detail("MTG-1", "2026-01-12")
	d.Course.Instructors = []string{"I-gone", "I-1"}

	api := &fakeAPI{
		meetings:    map[string][]MeetingSummary{"SCI-204": {summary("MTG-1", "2026-01-12")}},
		details:     map[string]MeetingDetail{"MTG-1": d},
		instructors: map[string]InstructorDetail{"I-1": smith()},
		failInstr:   map[string]int{"I-gone": http.StatusNotFound},
	}
	fetcher := newTestFetcher(t, api)

	snapshot, err := fetcher.Snapshot(context.Background(), "SCI-204", window("2026-01-12", "2026-01-19"))
	require.NoError(t, err)

	rec := snapshot["MTG-1"]
	require.Len(t, rec.Instructors, 1)
	assert.Equal(t, "Smith", rec.Instructors[0].LastName)
	assert.Equal(t, "CS 101 02 (Smith)", rec.Title)
}

func TestSnapshotAllDayFallback(t *testing.T) {
	d := detail("MTG-1", "2026-01-12")
	d.Start = ""
	d.End = ""

	api := &fakeAPI{
		meetings:    map[string][]MeetingSummary{"SCI-204": {summary("MTG-1", "2026-01-12")}},
		details:     map[string]MeetingDetail{"MTG-1": d},
		instructors: map[string]InstructorDetail{"I-1": smith()},
	}
	fetcher := newTestFetcher(t, api)

	snapshot, err := fetcher.Snapshot(context.Background(), "SCI-204", window("2026-01-12", "2026-01-19"))
	require.NoError(t, err)

	rec := snapshot["MTG-1"]
	assert.True(t, rec.AllDay)
	assert.Equal(t, time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC), rec.Start)
	assert.Equal(t, time.Date(2026, 1, 13, 0, 0, 0, 0, time.UTC), rec.End)
}

func TestSnapshotMalformedSectionLeavesCourseEmpty(t *testing.T) {
	d := detail("MTG-1", "2026-01-12")
	d.Course.Section = "CS-101" // two parts, not three

	api := &fakeAPI{
		meetings:    map[string][]MeetingSummary{"SCI-204": {summary("MTG-1", "2026-01-12")}},
		details:     map[string]MeetingDetail{"MTG-1": d},
		instructors: map[string]InstructorDetail{"I-1": smith()},
	}
	fetcher := newTestFetcher(t, api)

	snapshot, err := fetcher.Snapshot(context.Background(), "SCI-204", window("2026-01-12", "2026-01-19"))
	require.NoError(t, err)

	rec := snapshot["MTG-1"]
	assert.Empty(t, rec.Course)
	assert.Empty(t, rec.Section)
	// Course and section empty: the meeting's own title is the fallback.
	assert.Equal(t, "Intro to Computer Science", rec.Title)
}

func TestSplitSection(t *testing.T) {
	tests := []struct {
		composite string
		course    string
		section   string
	}{
		{"CS-101-02", "CS 101", "02"},
		{"MATH-210-01", "MATH 210", "01"},
		{"CS-101", "", ""},
		{"CS-101-02-LAB", "", ""},
		{"", "", ""},
	}
	for _, tt := range tests {
		course, section := splitSection(tt.composite)
		assert.Equal(t, tt.course, course, "composite %q", tt.composite)
		assert.Equal(t, tt.section, section, "composite %q", tt.composite)
	}
}

func TestInstructorCacheSharedAcrossMeetings(t *testing.T) {
	d1 := detail("MTG-1", "2026-01-12")
	d2 := detail("MTG-2", "2026-01-13")

	api := &fakeAPI{
		meetings: map[string][]MeetingSummary{"SCI-204": {
			summary("MTG-1", "2026-01-12"),
			summary("MTG-2", "2026-01-13"),
		}},
		details:     map[string]MeetingDetail{"MTG-1": d1, "MTG-2": d2},
		instructors: map[string]InstructorDetail{"I-1": smith()},
	}

	server := httptest.NewServer(countingHandler(api, t))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, "test-key", transport.WithRetries(0))
	fetcher := NewFetcher(client, "example.edu", WithWorkers(1))

	snapshot, err := fetcher.Snapshot(context.Background(), "SCI-204", window("2026-01-12", "2026-01-19"))
	require.NoError(t, err)
	require.Len(t, snapshot, 2)
}

// countingHandler fails the test if the same instructor is fetched twice.
func countingHandler(api *fakeAPI, t *testing.T) http.Handler {
	seen := map[string]int{}
	inner := api.handler()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/instructors/") {
			seen[r.URL.Path]++
			if seen[r.URL.Path] > 1 {
				t.Errorf("instructor fetched more than once: %s", r.URL.Path)
			}
		}
		inner.ServeHTTP(w, r)
	})
}
