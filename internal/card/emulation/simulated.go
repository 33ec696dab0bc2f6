package emulation

import (
	"context"
	"sync"

	"campuscard/internal/card/models"
)

// SimulatedRadio is an in-process stand-in for the contactless transport. It
// records which token is armed so hosts without a radio can run end to end.
type SimulatedRadio struct {
	mu        sync.Mutex
	supported bool
	enabled   bool
	armed     models.Token
	failNext  error
}

// NewSimulatedRadio returns a radio with the given capability flags.
func NewSimulatedRadio(supported, enabled bool) *SimulatedRadio {
	return &SimulatedRadio{supported: supported, enabled: enabled}
}

func (r *SimulatedRadio) Enable(_ context.Context, token models.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.failNext; err != nil {
		r.failNext = nil
		return &RadioError{Code: CodeServiceUnavailable, Op: "enable", Err: err}
	}
	if !r.supported {
		return &RadioError{Code: CodeHardwareUnsupported, Op: "enable", Err: ErrHardwareUnsupported}
	}
	if !r.enabled {
		return &RadioError{Code: CodeRadioDisabled, Op: "enable", Err: ErrRadioDisabled}
	}
	r.armed = token
	return nil
}

func (r *SimulatedRadio) Disable(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.armed = ""
	return nil
}

func (r *SimulatedRadio) Supported(context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.supported, nil
}

func (r *SimulatedRadio) Enabled(context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enabled, nil
}

// Armed returns the token currently presented to readers.
func (r *SimulatedRadio) Armed() (models.Token, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.armed, r.armed != ""
}

// SetEnabled flips the user-facing radio switch. Turning the radio off drops
// any armed token.
func (r *SimulatedRadio) SetEnabled(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = enabled
	if !enabled {
		r.armed = ""
	}
}

// FailNextEnable makes the next Enable call fail with err.
func (r *SimulatedRadio) FailNextEnable(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failNext = err
}

var (
	_ Emulator      = (*SimulatedRadio)(nil)
	_ HardwareProbe = (*SimulatedRadio)(nil)
)
