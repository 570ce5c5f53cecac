package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/portal-planner/internal/eligibility"
	"github.com/jonathan/portal-planner/internal/fetch"
	"github.com/jonathan/portal-planner/internal/parsing"
	"github.com/jonathan/portal-planner/internal/portal"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr   *ErrValidation
		authErr         *portal.AuthenticationError
		fetchErr        *fetch.Error
		parseErr        *parsing.ParseError
		inconsistentErr *eligibility.DataInconsistencyError
	)
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &authErr):
		if authErr.Reason == portal.FailureMissingCredentials {
			return http.StatusBadRequest
		}
		return http.StatusUnauthorized
	case isTimeout(err):
		return http.StatusGatewayTimeout
	case errors.As(err, &fetchErr), errors.As(err, &parseErr):
		return http.StatusBadGateway
	case errors.As(err, &inconsistentErr):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// ClientMessage returns the message shown to API clients for an error. Internal
// details stay in the logs.
func ClientMessage(err error) string {
	var (
		validationErr   *ErrValidation
		authErr         *portal.AuthenticationError
		fetchErr        *fetch.Error
		parseErr        *parsing.ParseError
		inconsistentErr *eligibility.DataInconsistencyError
	)
	switch {
	case errors.As(err, &validationErr):
		return validationErr.Message
	case errors.As(err, &authErr):
		return authErr.Message
	case isTimeout(err):
		return "Portal did not respond in time"
	case errors.As(err, &fetchErr):
		return "Error in request"
	case errors.As(err, &parseErr):
		return "Portal returned an unexpected page"
	case errors.As(err, &inconsistentErr):
		return fmt.Sprintf("Academic records are inconsistent for course %s", inconsistentErr.Code)
	default:
		return "Error in request"
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var fetchErr *fetch.Error
	return errors.As(err, &fetchErr) && fetchErr.Timeout()
}
