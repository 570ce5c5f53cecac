package types

import "encoding/json"

// Result is the aggregate returned for one login. The JSON keys match what the
// web client consumes.
type Result struct {
	SemesterClassRoutine ClassRoutine              `json:"semesterClassRoutine"`
	UnlockedCourses      map[string]UnlockedCourse `json:"unlockedCourses"`
	CompletedCourses     map[string]LedgerEntry    `json:"completedCourses"`
	PreregisteredCourses map[string]LedgerEntry    `json:"preregisteredCourses"`
	CurrentSemester      string                    `json:"currentSemester"`
	User                 string                    `json:"user"`
	CurriculumCourses    *Catalog                  `json:"curriculumncourses"`

	// UnlockedOrder lists unlocked codes in resolution order
	UnlockedOrder []string `json:"-"`
}

// Snapshot is a saved copy of everything the scraper returns for one student.
// It allows eligibility to be recomputed offline.
type Snapshot struct {
	User            string                     `json:"user"`
	CurrentSemester string                     `json:"currentSemester"`
	Catalog         []CatalogRecord            `json:"catalog"`
	Ledger          []LedgerRow                `json:"ledger"`
	Schedules       map[string]SemesterRoutine `json:"schedules,omitempty"`
}

// ParseSnapshot decodes a snapshot document.
func ParseSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
