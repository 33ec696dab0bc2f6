// Package domainerrors carries card failures across layers with a stable code.
// Transports map codes to their own vocabulary (HTTP status, bridge failure
// kind); messages are safe to show to the caller.
package domainerrors

import "errors"

type Code string

const (
	CodeBadRequest       Code = "bad_request"
	CodeInvalidInput     Code = "invalid_input"
	CodeValidation       Code = "validation_failed"
	CodeTooLarge         Code = "payload_too_large"
	CodeSecurityRejected Code = "security_rejected"
	CodeNotFound         Code = "not_found"
	CodeStoreUnavailable Code = "store_unavailable"
	// CodeNotCached marks a partial success: emulation is on but the profile
	// was not written to the offline store.
	CodeNotCached      Code = "not_cached"
	CodeUnknown        Code = "unknown_error"
	CodeNotImplemented Code = "not_implemented"
	CodeInternal       Code = "internal_error"
)

type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports a match on code alone, so errors.Is(err, &Error{Code: c}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches msg to err. An err that already carries a code keeps it and
// code is ignored.
func Wrap(err error, code Code, msg string) error {
	if inner, ok := asError(err); ok {
		code = inner.Code
	}
	return &Error{Code: code, Message: msg, Err: err}
}

func HasCode(err error, code Code) bool {
	e, ok := asError(err)
	return ok && e.Code == code
}

// CodeOf returns the first code found in err's chain, CodeInternal if none.
func CodeOf(err error) Code {
	if e, ok := asError(err); ok {
		return e.Code
	}
	return CodeInternal
}

func asError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
