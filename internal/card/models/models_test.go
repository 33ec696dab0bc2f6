package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "campuscard/pkg/domain-errors"
)

func TestParseToken(t *testing.T) {
	t.Run("empty token rejected", func(t *testing.T) {
		_, err := ParseToken("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("whitespace token rejected", func(t *testing.T) {
		_, err := ParseToken("   ")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("opaque token kept verbatim", func(t *testing.T) {
		tok, err := ParseToken(" abc123")
		require.NoError(t, err)
		assert.Equal(t, Token(" abc123"), tok)
	})
}

func TestProfileInput_ToProfile(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("defaults balance and active flag", func(t *testing.T) {
		p := ProfileInput{Name: "Ada", Role: "student"}.ToProfile("abc123", now)
		assert.Equal(t, Token("abc123"), p.Token)
		assert.Equal(t, 0.0, p.Balance)
		assert.True(t, p.IsActive)
		assert.Equal(t, now, p.UpdatedAt)
	})

	t.Run("explicit values win over defaults", func(t *testing.T) {
		balance := 12.5
		active := false
		until := "2027-01-01"
		p := ProfileInput{Name: "Ada", Balance: &balance, IsActive: &active, ValidUntil: &until}.ToProfile("t", now)
		assert.Equal(t, 12.5, p.Balance)
		assert.False(t, p.IsActive)
		assert.Equal(t, "2027-01-01", p.ValidUntil)
	})
}

func TestProfileInput_Validate(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	str := func(s string) *string { return &s }

	tests := []struct {
		name    string
		until   *string
		wantErr bool
	}{
		{name: "no expiry", until: nil},
		{name: "future date", until: str("2026-12-31")},
		{name: "same day date is still valid", until: str("2026-03-01")},
		{name: "past date", until: str("2026-02-28"), wantErr: true},
		{name: "past rfc3339", until: str("2026-03-01T11:00:00Z"), wantErr: true},
		{name: "free-form value is kept", until: str("end of term")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ProfileInput{ValidUntil: tt.until}.Validate(now)
			if tt.wantErr {
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSession_Lifecycle(t *testing.T) {
	now := time.Now()
	s := NewSession()
	_, ok := s.ActiveToken()
	assert.False(t, ok)

	s.Activate("t1", now)
	firstID := s.ID
	tok, ok := s.ActiveToken()
	require.True(t, ok)
	assert.Equal(t, Token("t1"), tok)

	s.Activate("t2", now)
	tok, _ = s.ActiveToken()
	assert.Equal(t, Token("t2"), tok)
	assert.NotEqual(t, firstID, s.ID)

	s.Deactivate()
	s.Deactivate()
	assert.Equal(t, SessionInactive, s.State)
	assert.True(t, s.Token.IsZero())
}

func TestSession_SnapshotReadsAsValue(t *testing.T) {
	s := NewSession()
	s.Activate("t1", time.Now())

	snap := s.Snapshot()
	assert.True(t, snap.IsActive())
	tok, ok := snap.ActiveToken()
	require.True(t, ok)
	assert.Equal(t, Token("t1"), tok)

	s.Deactivate()
	assert.True(t, snap.IsActive())
	assert.False(t, s.Snapshot().IsActive())
}

func TestVerdict_Reason(t *testing.T) {
	assert.Contains(t, VerdictDeviceRooted.Reason(), "rooted")
	assert.Contains(t, VerdictAppTampered.Reason(), "official store")
	assert.True(t, VerdictTrusted.IsTrusted())
	assert.False(t, Verdict("bogus").IsValid())
}
