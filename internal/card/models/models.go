package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "campuscard/pkg/domain-errors"
)

// Token is the opaque identifier of one issued, activatable credential.
type Token string

// ParseToken validates a caller-supplied token at the trust boundary.
func ParseToken(s string) (Token, error) {
	if strings.TrimSpace(s) == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "token is required")
	}
	return Token(s), nil
}

func (t Token) String() string { return string(t) }

func (t Token) IsZero() bool { return strings.TrimSpace(string(t)) == "" }

// Profile is the cacheable card record keyed by token.
type Profile struct {
	Token      Token
	Name       string
	Email      string
	Role       string
	Balance    float64
	ValidUntil string
	IsActive   bool
	UpdatedAt  time.Time
}

// Clone returns a copy safe to hand across store boundaries.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

// ExpiredAt reports whether ValidUntil is a parseable timestamp before now.
// Free-form values are never treated as expired.
func (p *Profile) ExpiredAt(now time.Time) bool {
	t, ok := parseValidUntil(p.ValidUntil)
	if !ok {
		return false
	}
	return t.Before(now)
}

var validUntilLayouts = []string{time.RFC3339, "2006-01-02"}

func parseValidUntil(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range validUntilLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			if layout == "2006-01-02" {
				// a date-only expiry is valid through the end of that day
				t = t.Add(24*time.Hour - time.Nanosecond)
			}
			return t, true
		}
	}
	return time.Time{}, false
}

// Session is the volatile emulation state. It is owned by a single controller
// and is not safe for concurrent use on its own.
type Session struct {
	ID          uuid.UUID
	State       SessionState
	Token       Token
	ActivatedAt time.Time
}

// NewSession returns an inactive session.
func NewSession() *Session {
	return &Session{State: SessionInactive}
}

func (s Session) IsActive() bool {
	return s.State == SessionActive
}

// ActiveToken returns the armed token and whether the session is active.
func (s Session) ActiveToken() (Token, bool) {
	if !s.IsActive() {
		return "", false
	}
	return s.Token, true
}

// Activate replaces any prior state with Active(token).
func (s *Session) Activate(token Token, now time.Time) {
	s.ID = uuid.New()
	s.State = SessionActive
	s.Token = token
	s.ActivatedAt = now
}

// Deactivate resets to Inactive. Safe to call repeatedly.
func (s *Session) Deactivate() {
	*s = Session{State: SessionInactive}
}

// Snapshot returns a copy for readers outside the owning controller.
func (s Session) Snapshot() Session {
	return s
}

// ActivationResult is returned by a completed activation.
type ActivationResult struct {
	Outcome ActivationOutcome
	Session Session
	Profile *Profile
}
