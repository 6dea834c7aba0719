// Package schedule implements the client for the scheduling API and
// the fetcher that assembles a room's source snapshot from it.
package schedule

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/roomsync/roomsync/internal/transport"
)

// DateLayout is the wire format for meeting dates.
const DateLayout = "2006-01-02"

// ClockLayout is the wire format for meeting start and end times of day.
const ClockLayout = "15:04"

// MeetingSummary is one row of a room's meeting listing.
type MeetingSummary struct {
	ID   string      `json:"id"`
	Date string      `json:"date"`
	Room MeetingRoom `json:"room"`
}

// MeetingRoom identifies where a meeting takes place.
type MeetingRoom struct {
	BuildingCode string `json:"buildingCode"`
	Room         string `json:"room"`
}

// MeetingDetail is the full record for one meeting.
type MeetingDetail struct {
	ID          string        `json:"id"`
	MeetingType string        `json:"meetingType"`
	Date        string        `json:"date"`
	Start       string        `json:"start"`
	End         string        `json:"end"`
	Meeting     MeetingInfo   `json:"meeting"`
	Course      CourseSection `json:"course"`
}

// MeetingInfo carries the meeting's own display title.
type MeetingInfo struct {
	Title string `json:"title"`
}

// CourseSection ties a meeting to a term, a composite section string
// and the instructors teaching it.
type CourseSection struct {
	Term        string   `json:"term"`
	Section     string   `json:"section"`
	Instructors []string `json:"instructors"`
}

// InstructorDetail is the directory record for one instructor.
type InstructorDetail struct {
	GivenName      string `json:"givenName"`
	Surname        string `json:"surname"`
	DisplayName    string `json:"displayName"`
	OfficeLocation string `json:"officeLocation"`
	Title          string `json:"title"`
	Department     string `json:"department"`
	Division       string `json:"division"`
	UID            string `json:"uid"`
}

// Client talks to the scheduling API's read endpoints.
type Client struct {
	base string
	http *transport.Client
}

// NewClient creates a scheduling API client. The access key is applied
// as a query parameter on every request.
func NewClient(baseURL, accessKey string, opts ...transport.Option) *Client {
	return &Client{
		base: baseURL,
		http: transport.New(&transport.QueryAuth{Param: "key"}, accessKey, opts...),
	}
}

// ListMeetings returns the meeting summaries for a room between two dates.
func (c *Client) ListMeetings(ctx context.Context, room string, start, end time.Time) ([]MeetingSummary, error) {
	u := fmt.Sprintf("%s/rooms/%s/meetings?start=%s&end=%s",
		c.base,
		url.PathEscape(room),
		start.Format(DateLayout),
		end.Format(DateLayout),
	)

	var out []MeetingSummary
	if err := c.http.GetJSON(ctx, u, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MeetingDetail fetches the full record for one meeting.
func (c *Client) MeetingDetail(ctx context.Context, id string) (*MeetingDetail, error) {
	var out MeetingDetail
	if err := c.http.GetJSON(ctx, c.base+"/meetings/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// InstructorDetail fetches the directory record for one instructor.
func (c *Client) InstructorDetail(ctx context.Context, id string) (*InstructorDetail, error) {
	var out InstructorDetail
	if err := c.http.GetJSON(ctx, c.base+"/instructors/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}
