package service

import (
	"errors"
	"fmt"
	"strings"

	"campuscard/internal/card/models"
	"campuscard/internal/sentinel"
	dErrors "campuscard/pkg/domain-errors"
)

// SecurityRejectedError is carried inside a security_rejected domain error and
// names the verdict that blocked activation.
type SecurityRejectedError struct {
	Verdict  models.Verdict
	Findings []string
}

func (e *SecurityRejectedError) Error() string {
	if len(e.Findings) == 0 {
		return e.Verdict.Reason()
	}
	return fmt.Sprintf("%s (%s)", e.Verdict.Reason(), strings.Join(e.Findings, ", "))
}

// EmulationError is carried inside an unknown_error domain error when the radio
// could not be armed. Code is the transport's diagnostic code.
type EmulationError struct {
	Code int
	Err  error
}

func (e *EmulationError) Error() string {
	return fmt.Sprintf("emulation failed with code %d: %v", e.Code, e.Err)
}

func (e *EmulationError) Unwrap() error {
	return e.Err
}

// RejectionVerdict extracts the attestation verdict from a security rejection.
func RejectionVerdict(err error) (models.Verdict, bool) {
	var re *SecurityRejectedError
	if errors.As(err, &re) {
		return re.Verdict, true
	}
	return "", false
}

// EmulationCode extracts the diagnostic code from an emulation failure.
func EmulationCode(err error) (int, bool) {
	var ee *EmulationError
	if errors.As(err, &ee) {
		return ee.Code, true
	}
	return 0, false
}

func newSecurityRejected(verdict models.Verdict, findings []string) error {
	return &dErrors.Error{
		Code:    dErrors.CodeSecurityRejected,
		Message: verdict.Reason(),
		Err:     &SecurityRejectedError{Verdict: verdict, Findings: findings},
	}
}

// translateStoreError maps store sentinels to domain errors.
func translateStoreError(err error, action string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "card profile not found")
	case errors.Is(err, sentinel.ErrInvalidInput):
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid card profile")
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeStoreUnavailable, "offline card store unavailable")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to "+action)
	}
}
