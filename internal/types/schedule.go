package types

import (
	"bytes"
	"encoding/json"
)

// ScheduleSlot is one weekly class meeting.
type ScheduleSlot struct {
	CourseName string `json:"course_name"`
	ClassID    string `json:"class_id"`
	Credit     int    `json:"credit"`
	Section    string `json:"section"`
	Type       string `json:"type"`
	Room       string `json:"room"`
}

// DaySchedule maps a normalized time range ("08:00 AM - 09:30 AM") to its slot.
type DaySchedule map[string]ScheduleSlot

// SemesterRoutine maps a full day name to that day's schedule.
type SemesterRoutine map[string]DaySchedule

// Add places a slot at (day, timeRange), replacing any slot already there.
func (r SemesterRoutine) Add(day, timeRange string, slot ScheduleSlot) {
	if r[day] == nil {
		r[day] = make(DaySchedule)
	}
	r[day][timeRange] = slot
}

// SemesterRef identifies one semester in the portal's semester selector.
type SemesterRef struct {
	Label  string `json:"label"`
	Query  string `json:"query"`
	Active bool   `json:"active,omitempty"`
}

// ClassRoutine holds the routines of every semester in presentation order.
type ClassRoutine struct {
	Order     []string
	Semesters map[string]SemesterRoutine
}

// MarshalJSON encodes the routine as an object whose keys follow Order.
func (c ClassRoutine) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, label := range c.Order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(label)
		if err != nil {
			return nil, err
		}
		routine := c.Semesters[label]
		if routine == nil {
			routine = SemesterRoutine{}
		}
		value, err := json.Marshal(routine)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
