package portal

import "fmt"

// AuthFailure classifies why the portal refused a login.
type AuthFailure string

const (
	FailureMissingCredentials AuthFailure = "missing_credentials"
	FailureInvalidCredentials AuthFailure = "invalid_credentials"
	FailureCaptchaRequired    AuthFailure = "captcha_required"
	FailureEvaluationPending  AuthFailure = "evaluation_pending"
)

// AuthenticationError is returned when a session could not be established.
type AuthenticationError struct {
	Reason  AuthFailure
	Message string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed (%s): %s", e.Reason, e.Message)
}
