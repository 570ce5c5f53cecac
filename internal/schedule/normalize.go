// Package schedule merges per-semester class routines into one ordered routine.
package schedule

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/jonathan/portal-planner/internal/types"
)

// semesterLabelPattern matches portal labels such as "2022-2023, Fall".
var semesterLabelPattern = regexp.MustCompile(`^\s*(\d{4})\s*-\s*(\d{4})\s*,\s*([A-Za-z]+)\s*$`)

// seasonRank orders the terms of one academic year. The academic year opens with Fall.
var seasonRank = map[string]int{
	"fall":   0,
	"spring": 1,
	"summer": 2,
}

// SemesterKey is the chronological sort key of a semester label.
type SemesterKey struct {
	Parsed    bool
	StartYear int
	Season    int
	Label     string
}

// ParseSemesterKey builds the sort key of a label. Labels that do not follow the
// portal format are marked unparsed and sort after every parsed label.
func ParseSemesterKey(label string) SemesterKey {
	m := semesterLabelPattern.FindStringSubmatch(label)
	if m == nil {
		return SemesterKey{Label: label}
	}
	rank, ok := seasonRank[strings.ToLower(m[3])]
	if !ok {
		return SemesterKey{Label: label}
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return SemesterKey{Label: label}
	}
	return SemesterKey{Parsed: true, StartYear: year, Season: rank, Label: label}
}

// Compare orders keys oldest first.
func (k SemesterKey) Compare(other SemesterKey) int {
	switch {
	case k.Parsed && !other.Parsed:
		return -1
	case !k.Parsed && other.Parsed:
		return 1
	case k.Parsed:
		if k.StartYear != other.StartYear {
			return k.StartYear - other.StartYear
		}
		if k.Season != other.Season {
			return k.Season - other.Season
		}
	}
	return strings.Compare(k.Label, other.Label)
}

// SortLabels orders semester labels oldest first.
func SortLabels(labels []string) []string {
	sorted := slices.Clone(labels)
	slices.SortStableFunc(sorted, func(a, b string) int {
		return ParseSemesterKey(a).Compare(ParseSemesterKey(b))
	})
	return sorted
}

// Normalize merges per-semester routine maps. When a label appears in more than one
// map the later map wins.
func Normalize(perSemester []map[string]types.SemesterRoutine) types.ClassRoutine {
	merged := make(map[string]types.SemesterRoutine)
	for _, semesters := range perSemester {
		for label, routine := range semesters {
			if routine == nil {
				routine = types.SemesterRoutine{}
			}
			merged[label] = routine
		}
	}

	labels := make([]string, 0, len(merged))
	for label := range merged {
		labels = append(labels, label)
	}

	return types.ClassRoutine{
		Order:     SortLabels(labels),
		Semesters: merged,
	}
}
