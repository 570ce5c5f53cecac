package parsing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCourseTitle(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected CourseIdentity
		ok       bool
	}{
		{
			name:     "single section",
			input:    "01451-PHYSICS 1 [B19]",
			expected: CourseIdentity{ClassID: "01451", Name: "Physics 1", Section: "B19"},
			ok:       true,
		},
		{
			name:     "second bracket is the section",
			input:    "00157-ENGLISH READING SKILLS & PUBLIC SPEAKING [C] [B19]",
			expected: CourseIdentity{ClassID: "00157", Name: "English Reading Skills & Public Speaking", Section: "B19"},
			ok:       true,
		},
		{
			name:     "surrounding whitespace",
			input:    "  01284-INTRODUCTION TO PROGRAMMING LAB [D2]\n",
			expected: CourseIdentity{ClassID: "01284", Name: "Introduction To Programming Lab", Section: "D2"},
			ok:       true,
		},
		{
			name:  "missing section",
			input: "01451-PHYSICS 1",
			ok:    false,
		},
		{
			name:  "missing class id",
			input: "PHYSICS 1 [B19]",
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseCourseTitle(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestMaxCredit(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"3 0 0 0", 3},
		{"1 1 0 0", 1},
		{"0 0 3 0", 3},
		{"3-0", 3},
		{" 1 - 3 ", 3},
		{"0", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := MaxCredit(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestMaxCredit_Errors(t *testing.T) {
	for _, input := range []string{"", "   ", "three", "3 x"} {
		t.Run(input, func(t *testing.T) {
			_, err := MaxCredit(input)
			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, "credit", parseErr.Field)
		})
	}
}
