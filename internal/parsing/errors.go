// Package parsing turns raw portal field text into structured values.
package parsing

import "fmt"

// ParseError represents a portal field that could not be decoded into its typed form
type ParseError struct {
	Field   string
	Input   string
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("parse error: %s", e.Message)
	if e.Field != "" {
		msg = fmt.Sprintf("parse error in %s: %s", e.Field, e.Message)
	}
	if e.Input != "" {
		msg += fmt.Sprintf(" (input %q)", e.Input)
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
