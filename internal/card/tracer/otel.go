package tracer

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	dErrors "campuscard/pkg/domain-errors"
)

const instrumentationName = "campuscard/internal/card"

// OTel adapts an OpenTelemetry tracer. Ending a span with an error records
// the card error code; only failures on the device side (radio, store,
// internal) mark the span as errored. Caller mistakes and attestation
// rejections are expected outcomes and leave the status unset.
type OTel struct {
	tracer trace.Tracer
}

// NewOTel uses the global provider when tr is nil.
func NewOTel(tr trace.Tracer) *OTel {
	if tr == nil {
		tr = otel.Tracer(instrumentationName)
	}
	return &OTel{tracer: tr}
}

func (t *OTel) Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span) {
	ctx, span := t.tracer.Start(ctx, name, trace.WithAttributes(keyValues(attrs)...))
	return ctx, otelSpan{span}
}

type otelSpan struct{ trace.Span }

func (s otelSpan) End(err error) {
	if err != nil {
		code := dErrors.CodeOf(err)
		s.Span.SetAttributes(attribute.String(AttrErrorCode, string(code)))
		if deviceFault(code) {
			s.Span.RecordError(err)
			s.Span.SetStatus(codes.Error, string(code))
		}
	}
	s.Span.End()
}

func (s otelSpan) SetAttributes(attrs ...Attribute) { s.Span.SetAttributes(keyValues(attrs)...) }

func (s otelSpan) AddEvent(name string, attrs ...Attribute) {
	s.Span.AddEvent(name, trace.WithAttributes(keyValues(attrs)...))
}

func deviceFault(code dErrors.Code) bool {
	switch code {
	case dErrors.CodeInvalidInput, dErrors.CodeValidation, dErrors.CodeBadRequest,
		dErrors.CodeSecurityRejected, dErrors.CodeNotFound:
		return false
	}
	return true
}

func keyValues(attrs []Attribute) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs))
	for _, a := range attrs {
		switch v := a.Value.(type) {
		case string:
			out = append(out, attribute.String(a.Key, v))
		case bool:
			out = append(out, attribute.Bool(a.Key, v))
		case int64:
			out = append(out, attribute.Int64(a.Key, v))
		}
	}
	return out
}

var (
	_ Tracer = (*OTel)(nil)
	_ Tracer = Noop{}
)
