package service

import (
	"context"
	"errors"

	"campuscard/internal/card/models"
	"campuscard/internal/card/tracer"
	"campuscard/internal/sentinel"
)

// CachedProfile returns the offline profile for rawToken. A token that was
// never cached yields not_found; a broken store yields store_unavailable.
func (s *Service) CachedProfile(ctx context.Context, rawToken string) (profile *models.Profile, err error) {
	token, err := models.ParseToken(rawToken)
	if err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, tracer.SpanProfileLookup, tracer.String(tracer.AttrTokenHash, tracer.HashToken(token.String())))
	defer func() { span.End(err) }()

	profile, err = s.profiles.Get(ctx, token)
	switch {
	case err == nil:
		span.SetAttributes(tracer.Bool(tracer.AttrCacheHit, true))
		s.recordLookup(lookupHit)
		return profile, nil
	case errors.Is(err, sentinel.ErrNotFound):
		span.SetAttributes(tracer.Bool(tracer.AttrCacheHit, false))
		s.recordLookup(lookupMiss)
	default:
		s.recordLookup(lookupError)
		s.logger.ErrorContext(ctx, "offline card store read failed", "error", err)
	}
	return nil, translateStoreError(err, "load card profile")
}

// CachedProfiles lists every cached profile ordered by token.
func (s *Service) CachedProfiles(ctx context.Context) ([]*models.Profile, error) {
	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return nil, translateStoreError(err, "list card profiles")
	}
	return profiles, nil
}

// EvictProfile removes a cached profile. The armed card, if any, is not
// affected.
func (s *Service) EvictProfile(ctx context.Context, rawToken string) error {
	token, err := models.ParseToken(rawToken)
	if err != nil {
		return err
	}
	if err := s.profiles.Delete(ctx, token); err != nil {
		return translateStoreError(err, "evict card profile")
	}
	s.logAudit(ctx, eventProfileEvicted, "token_hash", tracer.HashToken(token.String()))
	return nil
}

// HardwareStatus reports contactless capability. It never reads or changes the
// session.
func (s *Service) HardwareStatus(ctx context.Context) models.HardwareStatus {
	return s.reporter.Status(ctx)
}
