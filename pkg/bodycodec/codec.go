// Package bodycodec implements the body-text protocol that makes
// synchronized appointments self-describing. Every record written to
// the calendar store carries its full synchronized state encoded into
// the appointment body, so a later run can rebuild the mirror snapshot
// without any external database.
//
// The format is line oriented: a sentinel comment line followed by one
// tagged line per scalar field in a fixed order, then a repeating group
// of eight tagged lines per instructor. Decode is tolerant by design:
// missing tags default to zero values, unknown lines are skipped, and a
// truncated instructor block yields a shorter instructor list rather
// than an error.
package bodycodec

import (
	"strconv"
	"strings"
	"time"

	"github.com/roomsync/roomsync/pkg/records"
)

// Sentinel is the first line of every encoded body. It is never parsed;
// it marks the appointment as machine generated.
const Sentinel = "## roomsync:v1 machine generated, do not edit below this line"

// Separator joins the logical lines of an encoded body.
const Separator = "\n"

// TimeLayout is the wire format for Start and End.
const TimeLayout = time.RFC3339

// Top-level tags in encode order.
const (
	tagID              = "Id"
	tagSource          = "Source"
	tagTitle           = "Title"
	tagAllDay          = "AllDay"
	tagStart           = "Start"
	tagEnd             = "End"
	tagMeetingType     = "MeetingType"
	tagLocation        = "Location"
	tagTerm            = "Term"
	tagCourse          = "Course"
	tagSection         = "Section"
	tagInstructorCount = "InstructorCount"
)

const instructorPrefix = "# Instructor: "

// instructorFields is the fixed per-instructor field order. The decoder
// consumes these positionally, one line each.
var instructorFields = [...]string{
	"FirstName",
	"LastName",
	"DisplayName",
	"Office",
	"Title",
	"Department",
	"Division",
	"Email",
}

// Encode serializes a record into the body-text protocol. The output is
// deterministic: the same record always encodes to the same text.
func Encode(r records.EventRecord) string {
	lines := make([]string, 0, 13+len(r.Instructors)*len(instructorFields))

	lines = append(lines,
		Sentinel,
		tagLine(tagID, r.ID),
		tagLine(tagSource, r.Source),
		tagLine(tagTitle, r.Title),
		tagLine(tagAllDay, strconv.FormatBool(r.AllDay)),
		tagLine(tagStart, r.Start.Format(TimeLayout)),
		tagLine(tagEnd, r.End.Format(TimeLayout)),
		tagLine(tagMeetingType, r.MeetingType),
		tagLine(tagLocation, r.Location),
		tagLine(tagTerm, r.Term),
		tagLine(tagCourse, r.Course),
		tagLine(tagSection, r.Section),
		tagLine(tagInstructorCount, strconv.Itoa(len(r.Instructors))),
	)

	for _, inst := range r.Instructors {
		values := [...]string{
			inst.FirstName,
			inst.LastName,
			inst.DisplayName,
			inst.Office,
			inst.Title,
			inst.Department,
			inst.Division,
			inst.Email,
		}
		for i, field := range instructorFields {
			lines = append(lines, instructorPrefix+field+": "+values[i])
		}
	}

	return strings.Join(lines, Separator)
}

func tagLine(tag, value string) string {
	return "# " + tag + ": " + value
}

// scanner states for Decode.
const (
	stateTopLevel = iota
	stateInstructorBlock
)

// Decode recovers a record from body text. It never fails: absent tags
// leave their fields at zero values, malformed values degrade to zero
// values, and unrecognized lines are ignored. For any body produced by
// Encode, Decode returns the original record (ExternalHandle excepted,
// which is never encoded).
func Decode(body string) records.EventRecord {
	var r records.EventRecord

	lines := strings.Split(body, Separator)

	state := stateTopLevel
	remaining := 0 // declared instructors left to consume
	fieldIndex := 0

	var current records.InstructorRecord

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if state == stateInstructorBlock {
			// Positional consumption: each line is expected to be the
			// next instructor field. Bounds are guaranteed by the loop
			// condition; a truncated body exits the loop mid-group and
			// the partial instructor is dropped.
			if value, ok := cutPrefix(line, instructorPrefix+instructorFields[fieldIndex]+": "); ok {
				setInstructorField(&current, fieldIndex, value)
			}
			fieldIndex++
			if fieldIndex == len(instructorFields) {
				r.Instructors = append(r.Instructors, current)
				current = records.InstructorRecord{}
				fieldIndex = 0
				remaining--
				if remaining == 0 {
					state = stateTopLevel
				}
			}
			continue
		}

		tag, value, ok := splitTagLine(line)
		if !ok {
			continue
		}

		switch tag {
		case tagID:
			r.ID = value
		case tagSource:
			r.Source = value
		case tagTitle:
			r.Title = value
		case tagAllDay:
			if b, err := strconv.ParseBool(value); err == nil {
				r.AllDay = b
			}
		case tagStart:
			if t, err := time.Parse(TimeLayout, value); err == nil {
				r.Start = t
			}
		case tagEnd:
			if t, err := time.Parse(TimeLayout, value); err == nil {
				r.End = t
			}
		case tagMeetingType:
			r.MeetingType = value
		case tagLocation:
			r.Location = value
		case tagTerm:
			r.Term = value
		case tagCourse:
			r.Course = value
		case tagSection:
			r.Section = value
		case tagInstructorCount:
			n, err := strconv.Atoi(value)
			if err != nil || n <= 0 {
				continue
			}
			// Bound the declared count by what the remaining lines can
			// actually hold so a lying count cannot run the scanner
			// past the end of the body.
			maxGroups := (len(lines) - i - 1) / len(instructorFields)
			if n > maxGroups {
				n = maxGroups
			}
			if n > 0 {
				state = stateInstructorBlock
				remaining = n
				fieldIndex = 0
			}
		}
	}

	return r
}

// splitTagLine parses a "# <Tag>: <value>" line. Instructor lines and
// the sentinel yield tags with no switch case and are ignored at top
// level.
func splitTagLine(line string) (tag, value string, ok bool) {
	rest, found := cutPrefix(line, "# ")
	if !found {
		return "", "", false
	}
	idx := strings.Index(rest, ": ")
	if idx < 0 {
		return "", "", false
	}
	return rest[:idx], rest[idx+2:], true
}

func cutPrefix(s, prefix string) (string, bool) {
	if strings.HasPrefix(s, prefix) {
		return s[len(prefix):], true
	}
	return s, false
}

func setInstructorField(inst *records.InstructorRecord, index int, value string) {
	switch index {
	case 0:
		inst.FirstName = value
	case 1:
		inst.LastName = value
	case 2:
		inst.DisplayName = value
	case 3:
		inst.Office = value
	case 4:
		inst.Title = value
	case 5:
		inst.Department = value
	case 6:
		inst.Division = value
	case 7:
		inst.Email = value
	}
}
