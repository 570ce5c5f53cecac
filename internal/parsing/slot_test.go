package parsing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeSlot(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected TimeSlot
	}{
		{
			name:  "meridiem on both times",
			input: "Time: Sun 8:0 am - 9:30 am (Theory) Room: DS0607",
			expected: TimeSlot{
				Day:       "Sunday",
				TimeRange: "08:00 AM - 09:30 AM",
				Type:      "Theory",
				Room:      "DS0607",
			},
		},
		{
			name:  "afternoon lab",
			input: "Time: Tue 2:00 PM - 5:00 PM (Lab) Room: 6103",
			expected: TimeSlot{
				Day:       "Tuesday",
				TimeRange: "02:00 PM - 05:00 PM",
				Type:      "Lab",
				Room:      "6103",
			},
		},
		{
			name:  "no meridiem defaults to AM",
			input: "Time: Wed 11:00 - 12:30 (Theory) Room: DN0112 ",
			expected: TimeSlot{
				Day:       "Wednesday",
				TimeRange: "11:00 AM - 12:30 AM",
				Type:      "Theory",
				Room:      "DN0112",
			},
		},
		{
			name:  "meridiem without space",
			input: "Time: Sat 12:30pm - 2:00pm (Theory) Room: 1112",
			expected: TimeSlot{
				Day:       "Saturday",
				TimeRange: "12:30 PM - 02:00 PM",
				Type:      "Theory",
				Room:      "1112",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimeSlot(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseTimeSlot_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
	}{
		{"single time", "Time: Sun 8:00 am (Theory) Room: 1", "start and end"},
		{"missing type", "Time: Sun 8:00 am - 9:30 am Room: 1", "class type"},
		{"missing day", "Time: 8:00 am - 9:30 am (Theory) Room: 1", "missing day"},
		{"missing room", "Time: Sun 8:00 am - 9:30 am (Theory)", "missing room"},
		{"hour out of range", "Time: Sun 13:00 - 14:30 (Theory) Room: 1", "invalid start time"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTimeSlot(tt.input)
			require.Error(t, err)

			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, "time slot", parseErr.Field)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestIsTimeSlotText(t *testing.T) {
	assert.True(t, IsTimeSlotText("Time: Sun 8:00 am - 9:30 am"))
	assert.False(t, IsTimeSlotText("Status: Registered"))
}
