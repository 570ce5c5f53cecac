package eligibility

import (
	"maps"
	"slices"

	"github.com/jonathan/portal-planner/internal/types"
)

// DefaultWithdrawnGrades are the current-semester marks that do not count as actively
// taking a course. Some portal builds report only W and I; UW is included so that an
// unofficial withdrawal also frees the course for registration.
var DefaultWithdrawnGrades = []string{"W", "I", "UW"}

// Options configures resolution.
type Options struct {
	// WithdrawnGrades lists current-semester grade marks that do not block
	// re-registration. Nil means DefaultWithdrawnGrades.
	WithdrawnGrades []string
}

// DefaultOptions returns the standard resolver options.
func DefaultOptions() Options {
	return Options{WithdrawnGrades: slices.Clone(DefaultWithdrawnGrades)}
}

// Resolution is the resolver output.
type Resolution struct {
	// Completed is a copy of the ledger's completed courses with catalog credits
	Completed map[string]types.LedgerEntry
	// Unlocked holds every course the student may register for
	Unlocked map[string]types.UnlockedCourse
	// UnlockedOrder lists Unlocked codes in the order they were resolved
	UnlockedOrder []string
}

// Resolve classifies every catalog course against the ledger partition. Inputs are
// not modified.
//
// Retake candidates (completed with grade D) are unlocked first, then the catalog
// is walked in order and each course is unlocked unless it is completed, not
// offerable, the internship, already unlocked, or currently being taken. A
// pre-registered course is unlocked without checking prerequisites; any other
// course needs every prerequisite completed or in progress.
func Resolve(catalog *types.Catalog, ledger types.LedgerPartition, opts Options) (*Resolution, error) {
	withdrawn := opts.WithdrawnGrades
	if withdrawn == nil {
		withdrawn = DefaultWithdrawnGrades
	}

	res := &Resolution{
		Completed: make(map[string]types.LedgerEntry, len(ledger.Completed)),
		Unlocked:  make(map[string]types.UnlockedCourse),
	}
	maps.Copy(res.Completed, ledger.Completed)

	// Retake pass, in code order so the resolution order is stable
	for _, code := range slices.Sorted(maps.Keys(ledger.Completed)) {
		if ledger.Completed[code].Grade != types.GradeRetakeable {
			continue
		}
		course, ok := catalog.Get(code)
		if !ok {
			return nil, &DataInconsistencyError{Code: code, Message: "retakeable course is missing from the catalog"}
		}
		res.unlock(ledger.Completed[code].Name, course, true)
	}

	for _, course := range catalog.Entries() {
		code := course.Code

		if entry, ok := res.Completed[code]; ok {
			entry.Credit = course.Credit
			res.Completed[code] = entry
			continue
		}
		if course.Skippable || course.Internship {
			continue
		}
		if _, ok := res.Unlocked[code]; ok {
			continue
		}
		if isActivelyTaking(course, ledger.CurrentSemester, withdrawn) {
			continue
		}
		if _, ok := ledger.PreRegistered[code]; ok {
			res.unlock(course.Name, course, false)
			continue
		}
		if prerequisitesMet(course.Prerequisites, res.Completed, ledger.CurrentSemester) {
			res.unlock(course.Name, course, false)
		}
	}

	return res, nil
}

// unlock records a course with the catalog's credit and prerequisites.
func (r *Resolution) unlock(name string, course types.CatalogEntry, retake bool) {
	if _, ok := r.Unlocked[course.Code]; !ok {
		r.UnlockedOrder = append(r.UnlockedOrder, course.Code)
	}
	r.Unlocked[course.Code] = types.UnlockedCourse{
		Name:          name,
		Credit:        course.Credit,
		Prerequisites: slices.Clone(course.Prerequisites),
		Retake:        retake,
	}
}

// isActivelyTaking reports whether the student is enrolled in the same course this
// semester without a withdrawal mark.
func isActivelyTaking(course types.CatalogEntry, current map[string]types.LedgerEntry, withdrawn []string) bool {
	entry, ok := current[course.Code]
	if !ok {
		return false
	}
	return entry.Name == course.Name && !slices.Contains(withdrawn, entry.Grade)
}

func prerequisitesMet(prerequisites []string, completed, current map[string]types.LedgerEntry) bool {
	for _, p := range prerequisites {
		_, done := completed[p]
		_, taking := current[p]
		if !done && !taking {
			return false
		}
	}
	return true
}
