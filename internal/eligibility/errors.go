// Package eligibility decides which catalog courses a student may register for.
package eligibility

import "fmt"

// DataInconsistencyError represents a ledger course that the resolver needs from the
// catalog but cannot find there. It indicates an incomplete catalog.
type DataInconsistencyError struct {
	Code    string
	Message string
}

func (e *DataInconsistencyError) Error() string {
	return fmt.Sprintf("data inconsistency for course %s: %s", e.Code, e.Message)
}
