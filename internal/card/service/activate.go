package service

import (
	"context"
	"time"

	"campuscard/internal/card/attestation"
	"campuscard/internal/card/emulation"
	"campuscard/internal/card/models"
	"campuscard/internal/card/tracer"
	dErrors "campuscard/pkg/domain-errors"
)

// Activate attests the device, arms emulation for rawToken and caches the
// profile. A failed attestation leaves the current session untouched.
//
// When emulation is armed but the profile cannot be cached, the returned result
// is non-nil with OutcomeActivatedNotCached alongside a not_cached error.
func (s *Service) Activate(ctx context.Context, rawToken string, in models.ProfileInput) (result *models.ActivationResult, err error) {
	start := time.Now()
	token, err := models.ParseToken(rawToken)
	if err != nil {
		s.recordActivation(outcomeInvalidInput, start)
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, tracer.SpanActivate, tracer.String(tracer.AttrTokenHash, tracer.HashToken(token.String())))
	defer func() {
		if result != nil {
			span.SetAttributes(tracer.String(tracer.AttrOutcome, string(result.Outcome)))
		}
		span.End(err)
	}()

	if s.rejectExpired {
		if err := in.Validate(s.now()); err != nil {
			s.recordActivation(outcomeInvalidInput, start)
			return nil, err
		}
	}

	report := s.attest(ctx)
	if !report.Verdict.IsTrusted() {
		s.logAudit(ctx, eventActivationRejected,
			"token_hash", tracer.HashToken(token.String()),
			"verdict", report.Verdict.String(),
			"findings", report.Findings,
		)
		s.recordActivation(outcomeSecurityRejected, start)
		return nil, newSecurityRejected(report.Verdict, report.Findings)
	}

	// The session transition always completes once started, even if the
	// caller goes away.
	mctx := context.WithoutCancel(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err = s.arm(mctx, token, in)
	switch {
	case err == nil:
		s.recordActivation(outcomeActivated, start)
	case result != nil:
		s.recordActivation(outcomeActivatedNotCached, start)
	case dErrors.HasCode(err, dErrors.CodeUnknown):
		s.recordActivation(outcomeEmulationFailed, start)
	default:
		s.recordActivation(outcomeRolledBack, start)
	}
	return result, err
}

func (s *Service) attest(ctx context.Context) attestation.Report {
	ctx, span := s.tracer.Start(ctx, tracer.SpanAttestation)
	report := s.attestor.Attest(ctx, s.device)
	span.SetAttributes(tracer.String(tracer.AttrVerdict, report.Verdict.String()))
	span.End(nil)
	if s.metrics != nil {
		s.metrics.IncrementVerdict(report.Verdict.String())
	}
	return report
}

// arm performs the session transition. Callers must hold s.mu.
func (s *Service) arm(ctx context.Context, token models.Token, in models.ProfileInput) (*models.ActivationResult, error) {
	tokenHash := tracer.HashToken(token.String())

	if prev, ok := s.session.ActiveToken(); ok && prev != token {
		if err := s.emulator.Disable(ctx); err != nil {
			s.logger.WarnContext(ctx, "failed to disarm previous card", "error", err, "previous_token_hash", tracer.HashToken(prev.String()))
		}
	}

	if err := s.enable(ctx, token); err != nil {
		if derr := s.emulator.Disable(ctx); derr != nil {
			s.logger.WarnContext(ctx, "failed to disarm after enable failure", "error", derr)
		}
		s.session.Deactivate()
		s.setSessionGauge()
		code := emulation.DiagnosticCode(err)
		s.logger.ErrorContext(ctx, "card emulation could not be enabled",
			"token_hash", tokenHash,
			"diagnostic_code", code,
			"error", err,
		)
		return nil, &dErrors.Error{
			Code:    dErrors.CodeUnknown,
			Message: "card activation failed",
			Err:     &EmulationError{Code: code, Err: err},
		}
	}

	now := s.now()
	s.session.Activate(token, now)
	s.setSessionGauge()
	profile := in.ToProfile(token, now)

	if err := s.persist(ctx, profile); err != nil {
		s.logAudit(ctx, eventCacheWriteFailed, "token_hash", tokenHash, "error", err)
		if s.rollbackOnCacheFailure {
			if derr := s.emulator.Disable(ctx); derr != nil {
				s.logger.WarnContext(ctx, "failed to disarm during rollback", "error", derr)
			}
			s.session.Deactivate()
			s.setSessionGauge()
			return nil, translateStoreError(err, "cache card profile")
		}
		result := &models.ActivationResult{
			Outcome: models.OutcomeActivatedNotCached,
			Session: s.session.Snapshot(),
			Profile: profile.Clone(),
		}
		return result, dErrors.Wrap(err, dErrors.CodeNotCached, "card activated but profile could not be cached")
	}

	s.logAudit(ctx, eventActivated,
		"token_hash", tokenHash,
		"session_id", s.session.ID.String(),
	)
	return &models.ActivationResult{
		Outcome: models.OutcomeActivated,
		Session: s.session.Snapshot(),
		Profile: profile.Clone(),
	}, nil
}

func (s *Service) enable(ctx context.Context, token models.Token) error {
	ctx, span := s.tracer.Start(ctx, tracer.SpanEmulatorEnable)
	err := s.emulator.Enable(ctx, token)
	if err != nil {
		span.SetAttributes(tracer.Int64(tracer.AttrDiagCode, int64(emulation.DiagnosticCode(err))))
		if s.metrics != nil {
			s.metrics.IncrementEmulatorFailure()
		}
	}
	span.End(err)
	return err
}

func (s *Service) persist(ctx context.Context, profile *models.Profile) error {
	ctx, span := s.tracer.Start(ctx, tracer.SpanProfilePersist)
	err := s.profiles.Put(ctx, profile)
	span.End(err)
	return err
}
