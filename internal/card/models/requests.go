package models

import (
	"time"

	dErrors "campuscard/pkg/domain-errors"
)

// ProfileInput carries caller-supplied profile fields. Nil optional fields
// receive the documented defaults.
type ProfileInput struct {
	Name       string
	Email      string
	Role       string
	Balance    *float64
	ValidUntil *string
	IsActive   *bool
}

// ToProfile builds the profile to cache for token, filling defaults.
func (in ProfileInput) ToProfile(token Token, now time.Time) *Profile {
	p := &Profile{
		Token:     token,
		Name:      in.Name,
		Email:     in.Email,
		Role:      in.Role,
		Balance:   DefaultBalance,
		IsActive:  DefaultIsActive,
		UpdatedAt: now,
	}
	if in.Balance != nil {
		p.Balance = *in.Balance
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	if in.ValidUntil != nil {
		p.ValidUntil = *in.ValidUntil
	}
	return p
}

// Validate checks the profile fields that can be rejected before attestation.
func (in ProfileInput) Validate(now time.Time) error {
	if in.ValidUntil != nil {
		if t, ok := parseValidUntil(*in.ValidUntil); ok && t.Before(now) {
			return dErrors.New(dErrors.CodeInvalidInput, "credential expired")
		}
	}
	return nil
}
