package handler

import (
	"errors"
	"strings"

	"campuscard/internal/card/bridge"
	"campuscard/internal/card/models"
	"campuscard/pkg/platform/validation"
	baseValidation "campuscard/pkg/validation"
)

// ActivateRequest is the body of POST /card/activate.
type ActivateRequest struct {
	Token      string   `json:"token" validate:"required,notblank"`
	Name       string   `json:"name"`
	Email      string   `json:"email" validate:"omitempty,email"`
	Role       string   `json:"role"`
	Balance    *float64 `json:"balance,omitempty"`
	ValidUntil *string  `json:"validUntil,omitempty"`
	IsActive   *bool    `json:"isActive,omitempty"`
}

func (r *ActivateRequest) Sanitize() {
	r.Token = strings.TrimSpace(r.Token)
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Role = strings.TrimSpace(r.Role)
	if r.ValidUntil != nil {
		v := strings.TrimSpace(*r.ValidUntil)
		r.ValidUntil = &v
	}
}

func (r *ActivateRequest) Normalize() {
	r.Email = strings.ToLower(r.Email)
}

func (r *ActivateRequest) Validate() error {
	if err := baseValidation.Validate(r); err != nil {
		return err
	}
	validUntil := ""
	if r.ValidUntil != nil {
		validUntil = *r.ValidUntil
	}
	return errors.Join(
		validation.CheckStringLength("token", r.Token, validation.MaxTokenLength),
		validation.CheckStringLength("name", r.Name, validation.MaxNameLength),
		validation.CheckStringLength("email", r.Email, validation.MaxEmailLength),
		validation.CheckStringLength("role", r.Role, validation.MaxRoleLength),
		validation.CheckStringLength("validUntil", validUntil, validation.MaxValidUntilLength),
	)
}

func (r *ActivateRequest) ProfileInput() models.ProfileInput {
	return models.ProfileInput{
		Name:       r.Name,
		Email:      r.Email,
		Role:       r.Role,
		Balance:    r.Balance,
		ValidUntil: r.ValidUntil,
		IsActive:   r.IsActive,
	}
}

// CallRequest is the body of POST /card/call: one method-channel style call.
type CallRequest struct {
	Method string         `json:"method" validate:"required,notblank"`
	Args   map[string]any `json:"args"`
}

func (r *CallRequest) Sanitize() {
	r.Method = strings.TrimSpace(r.Method)
}

func (r *CallRequest) Validate() error {
	return baseValidation.Validate(r)
}

func (r *CallRequest) ToBridge() (bridge.Request, error) {
	return bridge.ParseMethod(r.Method, r.Args)
}
