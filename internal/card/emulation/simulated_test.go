package emulation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatedRadio(t *testing.T) {
	ctx := context.Background()

	t.Run("arms and disarms token", func(t *testing.T) {
		r := NewSimulatedRadio(true, true)
		require.NoError(t, r.Enable(ctx, "t1"))
		tok, ok := r.Armed()
		require.True(t, ok)
		assert.Equal(t, "t1", tok.String())

		require.NoError(t, r.Enable(ctx, "t2"))
		tok, _ = r.Armed()
		assert.Equal(t, "t2", tok.String())

		require.NoError(t, r.Disable(ctx))
		require.NoError(t, r.Disable(ctx))
		_, ok = r.Armed()
		assert.False(t, ok)
	})

	t.Run("unsupported hardware", func(t *testing.T) {
		err := NewSimulatedRadio(false, false).Enable(ctx, "t1")
		require.ErrorIs(t, err, ErrHardwareUnsupported)
		assert.Equal(t, CodeHardwareUnsupported, DiagnosticCode(err))
	})

	t.Run("radio switched off", func(t *testing.T) {
		r := NewSimulatedRadio(true, true)
		require.NoError(t, r.Enable(ctx, "t1"))
		r.SetEnabled(false)
		_, ok := r.Armed()
		assert.False(t, ok)

		err := r.Enable(ctx, "t1")
		require.ErrorIs(t, err, ErrRadioDisabled)
		assert.Equal(t, CodeRadioDisabled, DiagnosticCode(err))
	})

	t.Run("injected failure applies once", func(t *testing.T) {
		r := NewSimulatedRadio(true, true)
		r.FailNextEnable(errors.New("hce service not bound"))
		err := r.Enable(ctx, "t1")
		assert.Equal(t, CodeServiceUnavailable, DiagnosticCode(err))
		assert.NoError(t, r.Enable(ctx, "t1"))
	})
}

func TestDiagnosticCode_Unknown(t *testing.T) {
	assert.Equal(t, CodeUnknownFailure, DiagnosticCode(errors.New("boom")))
}
