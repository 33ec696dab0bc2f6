// Package emulation defines the boundary with the contactless radio transport.
// The card service only switches emulation on for a token and off again; how
// bytes are exchanged with a reader belongs to the transport.
package emulation

import (
	"context"
	"errors"
	"fmt"

	"campuscard/internal/card/models"
)

// Emulator turns card emulation on and off.
type Emulator interface {
	// Enable arms emulation for token, replacing any armed token.
	Enable(ctx context.Context, token models.Token) error
	// Disable disarms emulation. Disabling an idle radio is not an error.
	Disable(ctx context.Context) error
}

// HardwareProbe answers capability questions about the contactless radio.
type HardwareProbe interface {
	Supported(ctx context.Context) (bool, error)
	Enabled(ctx context.Context) (bool, error)
}

// Diagnostic codes surfaced to the shell with unknown activation errors.
const (
	CodeUnknownFailure      = 1000
	CodeHardwareUnsupported = 1001
	CodeRadioDisabled       = 1002
	CodeServiceUnavailable  = 1003
)

var (
	ErrHardwareUnsupported = errors.New("contactless emulation hardware not present")
	ErrRadioDisabled       = errors.New("contactless radio disabled")
)

// RadioError carries a numeric diagnostic code from the transport.
type RadioError struct {
	Code int
	Op   string
	Err  error
}

func (e *RadioError) Error() string {
	return fmt.Sprintf("emulation %s failed (code %d): %v", e.Op, e.Code, e.Err)
}

func (e *RadioError) Unwrap() error {
	return e.Err
}

// DiagnosticCode extracts the transport's numeric code from err.
func DiagnosticCode(err error) int {
	var re *RadioError
	if errors.As(err, &re) {
		return re.Code
	}
	return CodeUnknownFailure
}
