// Package tracer keeps OpenTelemetry out of the card service. Spans carry
// hashed tokens only.
package tracer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span. A non-nil err marks the span failed.
	// End must be called exactly once.
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

// HashToken returns a short SHA-256 prefix of a credential token so traces and
// logs can be correlated without exposing the token.
func HashToken(token string) string {
	if token == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:8])
}

// Noop discards spans.
type Noop struct{}

func NewNoop() Noop { return Noop{} }

func (Noop) Start(ctx context.Context, _ string, _ ...Attribute) (context.Context, Span) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End(error)                     {}
func (noopSpan) SetAttributes(...Attribute)    {}
func (noopSpan) AddEvent(string, ...Attribute) {}

// Span names.
const (
	SpanActivate       = "card.activate"
	SpanDeactivate     = "card.deactivate"
	SpanProfileLookup  = "card.profile.lookup"
	SpanAttestation    = "card.attestation"
	SpanEmulatorEnable = "card.emulator.enable"
	SpanProfilePersist = "card.profile.persist"
)

// Attribute keys.
const (
	AttrTokenHash = "card.token_hash"
	AttrVerdict   = "card.attestation.verdict"
	AttrOutcome   = "card.outcome"
	AttrDiagCode  = "card.diagnostic_code"
	AttrCacheHit  = "cache.hit"
	AttrErrorCode = "card.error_code"
)
