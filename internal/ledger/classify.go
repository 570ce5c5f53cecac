// Package ledger classifies grade report rows by their most recent attempt.
package ledger

import (
	"regexp"
	"strings"

	"github.com/jonathan/portal-planner/internal/types"
)

var attemptPattern = regexp.MustCompile(`\(([^)]+)\)\s*\[([^\]]+)\]`)

// ExtractAttempts returns every "(semester) [grade]" pair of a history string in
// document order.
func ExtractAttempts(history string) []types.GradeAttempt {
	matches := attemptPattern.FindAllStringSubmatch(history, -1)
	if len(matches) == 0 {
		return nil
	}
	attempts := make([]types.GradeAttempt, 0, len(matches))
	for _, m := range matches {
		attempts = append(attempts, types.GradeAttempt{
			Semester: strings.TrimSpace(m[1]),
			Grade:    strings.TrimSpace(m[2]),
		})
	}
	return attempts
}

// LastAttempt returns the most recent attempt of a history string.
func LastAttempt(history string) (types.GradeAttempt, bool) {
	attempts := ExtractAttempts(history)
	if len(attempts) == 0 {
		return types.GradeAttempt{}, false
	}
	return attempts[len(attempts)-1], true
}

// Classify partitions ledger rows using the last attempt of each row.
//
// A letter grade places the course in Completed. The in-progress placeholder places
// it in CurrentSemester when the attempt belongs to activeSemester and in
// PreRegistered otherwise. Rows without any attempt, and rows whose last attempt
// carries another mark (W, I, ...), are left out. When a code appears in several
// rows the later row wins.
func Classify(rows []types.LedgerRow, activeSemester string) types.LedgerPartition {
	p := types.NewLedgerPartition()
	active := strings.TrimSpace(activeSemester)

	for _, row := range rows {
		last, ok := LastAttempt(row.History)
		if !ok {
			continue
		}

		code := strings.TrimSpace(row.Code)
		entry := types.LedgerEntry{Name: strings.TrimSpace(row.Name), Grade: last.Grade}

		// A later row for the same code replaces every earlier classification
		delete(p.Completed, code)
		delete(p.CurrentSemester, code)
		delete(p.PreRegistered, code)

		switch {
		case types.IsLetterGrade(last.Grade):
			p.Completed[code] = entry
		case last.Grade == types.GradeInProgress && last.Semester == active:
			p.CurrentSemester[code] = entry
		case last.Grade == types.GradeInProgress:
			p.PreRegistered[code] = entry
		}
	}

	return p
}
