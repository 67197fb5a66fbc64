package errorx

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials is the uniform authentication failure. Every auth
	// failure path (unknown user, wrong password, not approved) returns this
	// same error so account existence never leaks.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrStoreUnavailable indicates an object store round-trip failed. Callers
	// log it and degrade to a safe default instead of failing the operation.
	ErrStoreUnavailable = errors.New("object store unavailable")

	// ErrNotLoggedIn is returned when an operation requires a live session.
	ErrNotLoggedIn = errors.New("not logged in")
)

// ValidationError is bad user input; its message is surfaced verbatim.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// InvalidStateError is a deal transition outside the legal table. It is
// logged with its detail and surfaced to the requester as a generic failure.
type InvalidStateError struct {
	DealID string
	From   string
	Action string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("deal %s: action %q illegal in state %s", e.DealID, e.Action, e.From)
}

// CorruptRecordError marks a loaded row that fails schema or state-triple
// validation. The row is excluded from results; the load itself continues.
type CorruptRecordError struct {
	Table  string
	Detail string
}

func (e *CorruptRecordError) Error() string {
	return fmt.Sprintf("corrupt record in %s: %s", e.Table, e.Detail)
}

// IsValidation reports whether err is user input rejection.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsInvalidState reports whether err is an illegal deal transition.
func IsInvalidState(err error) bool {
	var se *InvalidStateError
	return errors.As(err, &se)
}
