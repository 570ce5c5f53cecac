package types

// Grade placeholders reported by the portal grade ledger
const (
	GradeInProgress = "-"
	GradeRetakeable = "D"
)

// LetterGrades are the terminal grades that mark a course as completed.
var LetterGrades = []string{"A+", "A", "B+", "B", "C+", "C", "D+", "D", "F"}

// IsLetterGrade reports whether grade is one of the terminal letter grades.
func IsLetterGrade(grade string) bool {
	for _, g := range LetterGrades {
		if g == grade {
			return true
		}
	}
	return false
}

// LedgerRow is one raw row of the grade report. History is the concatenated
// "(semester) [grade]" attempt string exactly as shown on the portal.
type LedgerRow struct {
	Code    string `json:"code"`
	Name    string `json:"course_name"`
	History string `json:"history"`
}

// GradeAttempt is one historical attempt extracted from a ledger row.
type GradeAttempt struct {
	Semester string `json:"semester"`
	Grade    string `json:"grade"`
}

// LedgerEntry is the authoritative (last) attempt of a course.
type LedgerEntry struct {
	Name   string `json:"course_name"`
	Grade  string `json:"grade"`
	Credit int    `json:"credit,omitempty"`
}

// LedgerPartition splits the ledger into completed, in-progress and pre-registered courses.
type LedgerPartition struct {
	Completed       map[string]LedgerEntry
	CurrentSemester map[string]LedgerEntry
	PreRegistered   map[string]LedgerEntry
}

// NewLedgerPartition returns a partition with empty, non-nil maps.
func NewLedgerPartition() LedgerPartition {
	return LedgerPartition{
		Completed:       make(map[string]LedgerEntry),
		CurrentSemester: make(map[string]LedgerEntry),
		PreRegistered:   make(map[string]LedgerEntry),
	}
}

// UnlockedCourse is a course the student may register for.
type UnlockedCourse struct {
	Name          string   `json:"course_name"`
	Credit        int      `json:"credit"`
	Prerequisites []string `json:"prerequisites"`
	Retake        bool     `json:"retake"`
}
