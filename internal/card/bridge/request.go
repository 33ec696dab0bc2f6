// Package bridge is the typed request/response contract between the card
// service and the UI shell. Each shell call becomes one Request value, and
// Dispatch answers it with exactly one Response.
package bridge

import "campuscard/internal/card/models"

// Request is implemented only by the request types in this package.
type Request interface {
	Method() string
	isRequest()
}

// ActivateRequest arms the card for Token and caches the profile fields.
type ActivateRequest struct {
	Token      string
	Name       string
	Email      string
	Role       string
	Balance    *float64
	ValidUntil *string
	IsActive   *bool
}

// DeactivateRequest disarms the card.
type DeactivateRequest struct{}

// GetCachedUserRequest loads the offline profile for Token.
type GetCachedUserRequest struct {
	Token string
}

// CheckHardwareStatusRequest asks for contactless capability.
type CheckHardwareStatusRequest struct{}

const (
	MethodActivate            = "activate"
	MethodDeactivate          = "deactivate"
	MethodGetCachedUser       = "getCachedUser"
	MethodCheckHardwareStatus = "checkHardwareStatus"
)

func (ActivateRequest) Method() string            { return MethodActivate }
func (DeactivateRequest) Method() string          { return MethodDeactivate }
func (GetCachedUserRequest) Method() string       { return MethodGetCachedUser }
func (CheckHardwareStatusRequest) Method() string { return MethodCheckHardwareStatus }

func (ActivateRequest) isRequest()            {}
func (DeactivateRequest) isRequest()          {}
func (GetCachedUserRequest) isRequest()       {}
func (CheckHardwareStatusRequest) isRequest() {}

// ProfileInput returns the profile fields of the request.
func (r ActivateRequest) ProfileInput() models.ProfileInput {
	return models.ProfileInput{
		Name:       r.Name,
		Email:      r.Email,
		Role:       r.Role,
		Balance:    r.Balance,
		ValidUntil: r.ValidUntil,
		IsActive:   r.IsActive,
	}
}
