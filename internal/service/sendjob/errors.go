package sendjob

import "errors"

// Sentinel errors for the send job service layer.
var (
	ErrNotFound          = errors.New("send job not found")
	ErrNoProviderID      = errors.New("job has no provider id")
	ErrMissingSignature  = errors.New("webhook signature missing")
	ErrInvalidSignature  = errors.New("webhook signature mismatch")
	ErrInvalidJSON       = errors.New("webhook payload is not valid JSON")
	ErrMissingProviderID = errors.New("webhook payload has no provider id")
)

// ValidationError rejects a malformed create request. Code is the
// machine-readable string returned to the client in the error envelope.
type ValidationError struct {
	Code string
}

func (e *ValidationError) Error() string {
	return e.Code
}

func validationErr(code string) error {
	return &ValidationError{Code: code}
}
