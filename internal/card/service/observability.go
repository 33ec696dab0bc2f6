package service

import (
	"context"
	"time"

	request "campuscard/pkg/platform/middleware/request"
)

const (
	eventActivated          = "card.activated"
	eventDeactivated        = "card.deactivated"
	eventActivationRejected = "card.activation_rejected"
	eventCacheWriteFailed   = "card.cache_write_failed"
	eventProfileEvicted     = "card.profile_evicted"
)

// Activation outcome labels for metrics.
const (
	outcomeActivated          = "activated"
	outcomeActivatedNotCached = "activated_not_cached"
	outcomeSecurityRejected   = "security_rejected"
	outcomeInvalidInput       = "invalid_input"
	outcomeEmulationFailed    = "emulation_failed"
	outcomeRolledBack         = "rolled_back"
)

const (
	lookupHit   = "hit"
	lookupMiss  = "miss"
	lookupError = "error"
)

func (s *Service) logAudit(ctx context.Context, event string, attributes ...any) {
	if requestID := request.GetRequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", event, "log_type", "audit")
	s.logger.InfoContext(ctx, event, args...)
}

func (s *Service) recordActivation(outcome string, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncrementActivation(outcome)
	s.metrics.ObserveActivationDuration(time.Since(start).Seconds())
}

func (s *Service) recordLookup(result string) {
	if s.metrics != nil {
		s.metrics.IncrementLookup(result)
	}
}

// setSessionGauge mirrors the session state. Callers must hold s.mu.
func (s *Service) setSessionGauge() {
	if s.metrics != nil {
		s.metrics.SetSessionActive(s.session.IsActive())
	}
}
