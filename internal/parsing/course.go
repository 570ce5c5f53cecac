package parsing

import (
	"regexp"
	"strconv"
	"strings"
)

var courseTitlePattern = regexp.MustCompile(`^(\d+)-(.+?)\s+\[([A-Z0-9]+)\](?:\s+\[([A-Z0-9]+)\])?$`)

// CourseIdentity is the structured form of a registration title such as
// "01451-PHYSICS 1 [B19]" or "00157-ENGLISH READING SKILLS [C] [B19]".
type CourseIdentity struct {
	ClassID string
	Name    string
	Section string
}

// ParseCourseTitle parses a registration course title. When a title carries two
// bracket groups the second one is the section. The boolean is false when the title
// does not match the portal format, in which case the identity is empty.
func ParseCourseTitle(raw string) (CourseIdentity, bool) {
	m := courseTitlePattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return CourseIdentity{}, false
	}

	section := m[3]
	if m[4] != "" {
		section = m[4]
	}
	return CourseIdentity{
		ClassID: m[1],
		Name:    TitleCase(m[2]),
		Section: section,
	}, true
}

// MaxCredit returns the largest integer in a credit breakdown. The curriculum shows
// credits as "3 0 0 0" and the registration page as "3-0"; both yield 3.
func MaxCredit(raw string) (int, error) {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ' ' || r == '-' || r == '\t' || r == '\n'
	})
	if len(parts) == 0 {
		return 0, &ParseError{Field: "credit", Input: raw, Message: "no credit values"}
	}

	best := 0
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, &ParseError{Field: "credit", Input: raw, Message: "non-numeric credit value", Cause: err}
		}
		if i == 0 || n > best {
			best = n
		}
	}
	return best, nil
}
