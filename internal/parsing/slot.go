package parsing

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// clockLayout is the normalized form of every time in a slot range
const clockLayout = "03:04 PM"

var (
	clockPattern     = regexp.MustCompile(`(\d{1,2}):(\d{1,2})(?:\s?([ap]m|[AP]M))?`)
	slotTypePattern  = regexp.MustCompile(`\((.*?)\)`)
	slotDayPattern   = regexp.MustCompile(`(Sun|Mon|Tue|Wed|Thu|Fri|Sat)`)
	slotRoomPattern  = regexp.MustCompile(`Room: (.*)`)
	dayAbbreviations = map[string]string{
		"Sun": "Sunday",
		"Mon": "Monday",
		"Tue": "Tuesday",
		"Wed": "Wednesday",
		"Thu": "Thursday",
		"Fri": "Friday",
		"Sat": "Saturday",
	}
)

// TimeSlot is the structured form of a schedule line such as
// "Time: Sun 8:00 am - 9:30 am (Theory) Room: DS0607".
type TimeSlot struct {
	Day       string // full day name
	TimeRange string // "08:00 AM - 09:30 AM"
	Type      string // Theory, Lab, ...
	Room      string
}

// IsTimeSlotText reports whether a schedule span carries a class time.
func IsTimeSlotText(s string) bool {
	return strings.Contains(s, "Time")
}

// ParseTimeSlot parses a raw schedule slot string.
func ParseTimeSlot(raw string) (TimeSlot, error) {
	clocks := clockPattern.FindAllStringSubmatch(raw, -1)
	if len(clocks) < 2 {
		return TimeSlot{}, &ParseError{Field: "time slot", Input: raw, Message: "expected a start and end time"}
	}

	classType := slotTypePattern.FindStringSubmatch(raw)
	if classType == nil {
		return TimeSlot{}, &ParseError{Field: "time slot", Input: raw, Message: "missing class type"}
	}

	day := slotDayPattern.FindString(raw)
	if day == "" {
		return TimeSlot{}, &ParseError{Field: "time slot", Input: raw, Message: "missing day"}
	}

	room := slotRoomPattern.FindStringSubmatch(raw)
	if room == nil {
		return TimeSlot{}, &ParseError{Field: "time slot", Input: raw, Message: "missing room"}
	}

	start, err := parseClock(clocks[0])
	if err != nil {
		return TimeSlot{}, &ParseError{Field: "time slot", Input: raw, Message: "invalid start time", Cause: err}
	}
	end, err := parseClock(clocks[1])
	if err != nil {
		return TimeSlot{}, &ParseError{Field: "time slot", Input: raw, Message: "invalid end time", Cause: err}
	}

	return TimeSlot{
		Day:       dayAbbreviations[day],
		TimeRange: start.Format(clockLayout) + " - " + end.Format(clockLayout),
		Type:      classType[1],
		Room:      strings.TrimSpace(room[1]),
	}, nil
}

// parseClock reads a 12-hour clock match. A time without a meridiem is taken as AM,
// the same way the portal's own timetable renders it.
func parseClock(match []string) (time.Time, error) {
	hour, err := strconv.Atoi(match[1])
	if err != nil {
		return time.Time{}, err
	}
	minute, err := strconv.Atoi(match[2])
	if err != nil {
		return time.Time{}, err
	}
	if hour < 1 || hour > 12 {
		return time.Time{}, fmt.Errorf("hour %d out of range", hour)
	}
	if minute > 59 {
		return time.Time{}, fmt.Errorf("minute %d out of range", minute)
	}

	hour %= 12
	if strings.EqualFold(match[3], "pm") {
		hour += 12
	}
	return time.Date(0, time.January, 1, hour, minute, 0, 0, time.UTC), nil
}
