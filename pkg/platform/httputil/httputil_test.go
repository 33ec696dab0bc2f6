package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "campuscard/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", dErrors.New(dErrors.CodeNotFound, "card profile not found"), http.StatusNotFound, "not_found"},
		{"invalid input", dErrors.New(dErrors.CodeInvalidInput, "token is required"), http.StatusBadRequest, "bad_request"},
		{"validation", dErrors.New(dErrors.CodeValidation, "email must be a valid email"), http.StatusBadRequest, "validation_error"},
		{"security", dErrors.New(dErrors.CodeSecurityRejected, "device is rooted"), http.StatusForbidden, "security_rejected"},
		{"store", dErrors.New(dErrors.CodeStoreUnavailable, "offline card store unavailable"), http.StatusServiceUnavailable, "store_unavailable"},
		{"not cached", dErrors.New(dErrors.CodeNotCached, "card activated but profile could not be cached"), http.StatusAccepted, "activated_not_cached"},
		{"unknown", dErrors.New(dErrors.CodeUnknown, "card activation failed"), http.StatusInternalServerError, "unknown_activation_error"},
		{"too large", dErrors.New(dErrors.CodeTooLarge, "request body too large"), http.StatusRequestEntityTooLarge, "payload_too_large"},
		{"plain error", errors.New("database password is hunter2"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			var body ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
			assert.Equal(t, tt.wantCode, body.Error)
			assert.NotContains(t, body.ErrorDescription, "hunter2")
		})
	}
}

type prepared struct {
	Token string `json:"token"`
}

func (p *prepared) Sanitize() { p.Token = strings.TrimSpace(p.Token) }

func (p *prepared) Validate() error {
	if p.Token == "" {
		return errors.New("token is required")
	}
	return nil
}

func TestDecodeAndPrepare(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("sanitizes before validating", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"token":"  abc123  "}`))
		w := httptest.NewRecorder()

		req, ok := DecodeAndPrepare[prepared](w, r, logger, "req-1")

		require.True(t, ok)
		assert.Equal(t, "abc123", req.Token)
	})

	t.Run("validation failure is a 400", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"token":"   "}`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[prepared](w, r, logger, "req-2")

		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "validation_error")
	})

	t.Run("malformed json is a 400", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"token":`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[prepared](w, r, logger, "req-3")

		assert.False(t, ok)
		assert.Contains(t, w.Body.String(), "bad_request")
	})

	t.Run("body over the read limit is a 413", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"token":"`+strings.Repeat("a", 64)+`"}`))
		w := httptest.NewRecorder()
		r.Body = http.MaxBytesReader(w, r.Body, 16)

		_, ok := DecodeAndPrepare[prepared](w, r, logger, "req-4")

		assert.False(t, ok)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})

	t.Run("trailing document is rejected", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"token":"a"}{"token":"b"}`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[prepared](w, r, logger, "req-5")

		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
