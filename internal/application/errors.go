package application

import "errors"

var (
	// ErrNotFound is returned when the requested appointment does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrLinkExpired is returned when a link is presented after its expiry,
	// regardless of signature correctness. Non-retryable; the caller must
	// obtain a fresh link.
	ErrLinkExpired = errors.New("application: link expired")
	// ErrInvalidSignature is returned when the presented signature does not
	// match the recomputed one. Nothing beyond the rejection is disclosed.
	ErrInvalidSignature = errors.New("application: invalid signature")
	// ErrInvalidAction is returned for actions outside {ok, no}, before any
	// record lookup.
	ErrInvalidAction = errors.New("application: invalid action")
	// ErrAlreadyDecided is returned when a decision conflicts with a
	// previously recorded one.
	ErrAlreadyDecided = errors.New("application: already decided")
	// ErrStatusConflict signals that a store transition found the record no
	// longer pending. Store implementations return it; the service translates
	// it into the idempotence policy outcome.
	ErrStatusConflict = errors.New("application: status conflict")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
