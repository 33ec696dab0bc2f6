package bridge

import (
	"fmt"

	"campuscard/internal/card/models"
)

const (
	MessageActivated   = "Card Activated"
	MessageDeactivated = "Card Deactivated"
)

// FailureKind names a failure the shell can react to.
type FailureKind string

const (
	KindInvalidToken           FailureKind = "InvalidToken"
	KindInvalidInput           FailureKind = "InvalidInput"
	KindSecurityRejected       FailureKind = "SecurityRejected"
	KindUnknownActivationError FailureKind = "UnknownActivationError"
	KindNotFound               FailureKind = "NotFound"
	KindStoreUnavailable       FailureKind = "StoreUnavailable"
	KindActivatedNotCached     FailureKind = "ActivatedNotCached"
	KindNotImplemented         FailureKind = "NotImplemented"
)

// Failure is the error half of a Response. Verdict is set for security
// rejections and Code for unknown activation errors.
type Failure struct {
	Kind    FailureKind    `json:"kind"`
	Reason  string         `json:"reason"`
	Verdict models.Verdict `json:"verdict,omitempty"`
	Code    int            `json:"code,omitempty"`
}

func (f *Failure) Error() string {
	if f.Code != 0 {
		return fmt.Sprintf("%s (%d): %s", f.Kind, f.Code, f.Reason)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Reason)
}

// Response carries either a success payload, a Failure, or both for an
// activation that armed the card but could not cache it.
type Response struct {
	Message string         `json:"message,omitempty"`
	Profile map[string]any `json:"profile,omitempty"`
	Status  *int           `json:"status,omitempty"`
	Err     *Failure       `json:"error,omitempty"`
}

// OK reports whether the request succeeded without any failure.
func (r Response) OK() bool {
	return r.Err == nil
}

// ProfileMap renders a profile for the shell.
func ProfileMap(p *models.Profile) map[string]any {
	return map[string]any{
		"token":      p.Token.String(),
		"name":       p.Name,
		"email":      p.Email,
		"role":       p.Role,
		"balance":    p.Balance,
		"validUntil": p.ValidUntil,
		"isActive":   p.IsActive,
	}
}

func statusResponse(status models.HardwareStatus) Response {
	code := int(status)
	return Response{Status: &code}
}
