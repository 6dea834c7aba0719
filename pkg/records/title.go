package records

import "strings"

// DeriveTitle computes the display title for a meeting.
//
// When both course and section are empty and a fallback title exists,
// the fallback is returned unchanged (covers non-course meetings such as
// department events). Otherwise the title is "<course> <section>" with
// the instructors' last names appended in parentheses, comma separated
// with no trailing comma.
func DeriveTitle(course, section string, instructors []InstructorRecord, fallback string) string {
	if course == "" && section == "" && fallback != "" {
		return fallback
	}

	title := course + " " + section

	names := make([]string, 0, len(instructors))
	for _, inst := range instructors {
		if inst.LastName != "" {
			names = append(names, inst.LastName)
		}
	}
	if len(names) > 0 {
		title += " (" + strings.Join(names, ", ") + ")"
	}

	return title
}
