package service

import (
	"context"

	"campuscard/internal/card/tracer"
)

// Deactivate disarms emulation and resets the session to Inactive. It is safe
// to call when nothing is active. Radio errors are logged, not returned: the
// session is Inactive afterwards regardless.
func (s *Service) Deactivate(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, tracer.SpanDeactivate)
	defer span.End(nil)

	ctx = context.WithoutCancel(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, wasActive := s.session.ActiveToken()
	if err := s.emulator.Disable(ctx); err != nil {
		s.logger.WarnContext(ctx, "emulator disable reported an error", "error", err)
		span.AddEvent("disable_failed")
	}
	s.session.Deactivate()
	s.setSessionGauge()
	if s.metrics != nil {
		s.metrics.IncrementDeactivation()
	}

	if wasActive {
		s.logAudit(ctx, eventDeactivated, "token_hash", tracer.HashToken(prev.String()))
	}
	return nil
}
