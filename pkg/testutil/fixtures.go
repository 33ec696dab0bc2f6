package testutil

import (
	"time"

	"campuscard/internal/card/models"
)

// FixedNow is the reference clock used by fixtures.
var FixedNow = time.Date(2026, time.March, 1, 9, 30, 0, 0, time.UTC)

// ProfileBuilder provides a fluent interface for building test profiles.
type ProfileBuilder struct {
	profile *models.Profile
}

// NewProfile starts a student profile with default balance and active flag.
func NewProfile(token models.Token) *ProfileBuilder {
	return &ProfileBuilder{profile: &models.Profile{
		Token:     token,
		Name:      "Test Student",
		Email:     "student@campus.test",
		Role:      "student",
		Balance:   models.DefaultBalance,
		IsActive:  models.DefaultIsActive,
		UpdatedAt: FixedNow,
	}}
}

func (b *ProfileBuilder) WithName(name string) *ProfileBuilder {
	b.profile.Name = name
	return b
}

func (b *ProfileBuilder) WithRole(role string) *ProfileBuilder {
	b.profile.Role = role
	return b
}

func (b *ProfileBuilder) WithBalance(balance float64) *ProfileBuilder {
	b.profile.Balance = balance
	return b
}

func (b *ProfileBuilder) WithValidUntil(v string) *ProfileBuilder {
	b.profile.ValidUntil = v
	return b
}

func (b *ProfileBuilder) Inactive() *ProfileBuilder {
	b.profile.IsActive = false
	return b
}

func (b *ProfileBuilder) Build() *models.Profile {
	return b.profile.Clone()
}

// InputFor returns the ProfileInput that produces p's caller-supplied fields.
func InputFor(p *models.Profile) models.ProfileInput {
	balance := p.Balance
	active := p.IsActive
	in := models.ProfileInput{
		Name:     p.Name,
		Email:    p.Email,
		Role:     p.Role,
		Balance:  &balance,
		IsActive: &active,
	}
	if p.ValidUntil != "" {
		until := p.ValidUntil
		in.ValidUntil = &until
	}
	return in
}
