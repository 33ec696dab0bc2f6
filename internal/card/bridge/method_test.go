package bridge

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "campuscard/pkg/domain-errors"
)

func TestParseMethod(t *testing.T) {
	tests := []struct {
		name   string
		method string
		want   Request
	}{
		{"deactivate", "deactivate", DeactivateRequest{}},
		{"legacy stop", "stopCardMode", DeactivateRequest{}},
		{"hardware", "checkHardwareStatus", CheckHardwareStatusRequest{}},
		{"legacy nfc status", "checkNfcStatus", CheckHardwareStatusRequest{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMethod(tt.method, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMethod_Activate(t *testing.T) {
	t.Run("full argument set", func(t *testing.T) {
		got, err := ParseMethod("activate", map[string]any{
			"token":      "abc123",
			"name":       "Ada",
			"email":      "ada@campus.test",
			"role":       "student",
			"balance":    json.Number("10.25"),
			"validUntil": "2030-01-01",
			"isActive":   false,
		})
		require.NoError(t, err)

		req, ok := got.(ActivateRequest)
		require.True(t, ok)
		assert.Equal(t, "abc123", req.Token)
		require.NotNil(t, req.Balance)
		assert.Equal(t, 10.25, *req.Balance)
		require.NotNil(t, req.IsActive)
		assert.False(t, *req.IsActive)
		assert.Equal(t, "2030-01-01", *req.ValidUntil)
	})

	t.Run("legacy start with token only", func(t *testing.T) {
		got, err := ParseMethod("startCardMode", map[string]any{"token": "abc123"})
		require.NoError(t, err)

		req := got.(ActivateRequest)
		assert.Nil(t, req.Balance)
		assert.Nil(t, req.IsActive)
		assert.Equal(t, MethodActivate, req.Method())
	})

	t.Run("integer balance", func(t *testing.T) {
		got, err := ParseMethod("activate", map[string]any{"token": "t", "balance": 5})
		require.NoError(t, err)
		assert.Equal(t, 5.0, *got.(ActivateRequest).Balance)
	})

	t.Run("wrong argument type", func(t *testing.T) {
		_, err := ParseMethod("activate", map[string]any{"token": 42})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func TestParseMethod_Unknown(t *testing.T) {
	_, err := ParseMethod("formatCard", nil)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotImplemented))
}
