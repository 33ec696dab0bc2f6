package service

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/mock/gomock"

	"campuscard/internal/card/emulation"
	"campuscard/internal/card/models"
	"campuscard/internal/sentinel"
	dErrors "campuscard/pkg/domain-errors"
)

func (s *ServiceSuite) TestActivate() {
	s.Run("trusted device arms the card and caches the profile with defaults", func() {
		s.SetupTest()
		s.expectVerdict(models.VerdictTrusted)
		s.mockEmulator.EXPECT().Enable(gomock.Any(), models.Token("abc123")).Return(nil)
		s.mockStore.EXPECT().Put(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, p *models.Profile) error {
				s.Equal(models.Token("abc123"), p.Token)
				s.Equal("Ada Student", p.Name)
				s.Equal(0.0, p.Balance)
				s.True(p.IsActive)
				return nil
			})

		result, err := s.service.Activate(s.T().Context(), "abc123", models.ProfileInput{
			Name:  "Ada Student",
			Email: "ada@campus.test",
			Role:  "student",
		})

		s.Require().NoError(err)
		s.Equal(models.OutcomeActivated, result.Outcome)
		s.True(result.Session.IsActive())
		s.Equal(models.Token("abc123"), result.Session.Token)

		token, ok := s.service.Session().ActiveToken()
		s.True(ok)
		s.Equal(models.Token("abc123"), token)
		s.Equal(1.0, testutil.ToFloat64(s.metrics.Activations.WithLabelValues(outcomeActivated)))
		s.Equal(1.0, testutil.ToFloat64(s.metrics.SessionActive))
	})

	s.Run("empty token is rejected before attestation", func() {
		s.SetupTest()

		result, err := s.service.Activate(s.T().Context(), "  ", models.ProfileInput{})

		s.Nil(result)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
		s.False(s.service.Session().IsActive())
	})

	s.Run("empty token leaves an active session unchanged", func() {
		s.SetupTest()
		first := s.activateOK("t1")

		_, err := s.service.Activate(s.T().Context(), "", models.ProfileInput{})

		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
		current := s.service.Session()
		s.Equal(first.Session.ID, current.ID)
		s.Equal(models.Token("t1"), current.Token)
	})

	s.Run("past validity is cached as given by default", func() {
		s.SetupTest()
		past := "2025-12-31"
		s.expectVerdict(models.VerdictTrusted)
		s.mockEmulator.EXPECT().Enable(gomock.Any(), models.Token("abc123")).Return(nil)
		s.mockStore.EXPECT().Put(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, p *models.Profile) error {
				s.Equal(past, p.ValidUntil)
				return nil
			})

		result, err := s.service.Activate(s.T().Context(), "abc123", models.ProfileInput{Name: "Ada", ValidUntil: &past})

		s.Require().NoError(err)
		s.Equal(models.OutcomeActivated, result.Outcome)
		s.True(s.service.Session().IsActive())
	})

	s.Run("expiry check rejects past validity before attestation", func() {
		s.SetupTest()
		svc := s.newService(WithExpiryCheck(true))
		past := "2025-12-31"

		_, err := svc.Activate(s.T().Context(), "abc123", models.ProfileInput{Name: "Ada", ValidUntil: &past})

		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
		s.Contains(err.Error(), "expired")
		s.False(svc.Session().IsActive())
	})

	s.Run("unparseable validity is stored as given", func() {
		s.SetupTest()
		until := "end of term"
		s.expectVerdict(models.VerdictTrusted)
		s.mockEmulator.EXPECT().Enable(gomock.Any(), gomock.Any()).Return(nil)
		s.mockStore.EXPECT().Put(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, p *models.Profile) error {
				s.Equal("end of term", p.ValidUntil)
				return nil
			})

		_, err := s.service.Activate(s.T().Context(), "abc123", models.ProfileInput{ValidUntil: &until})
		s.NoError(err)
	})
}

func (s *ServiceSuite) TestActivate_SecurityRejection() {
	s.Run("rooted device is rejected with the failing check named", func() {
		s.SetupTest()
		s.expectVerdict(models.VerdictDeviceRooted, "build tags contain test-keys")

		result, err := s.service.Activate(s.T().Context(), "abc123", models.ProfileInput{Name: "Ada"})

		s.Nil(result)
		s.True(dErrors.HasCode(err, dErrors.CodeSecurityRejected))
		verdict, ok := RejectionVerdict(err)
		s.True(ok)
		s.Equal(models.VerdictDeviceRooted, verdict)
		s.Contains(err.Error(), "rooted")
		s.False(s.service.Session().IsActive())
	})

	s.Run("tampered app names the integrity check", func() {
		s.SetupTest()
		s.expectVerdict(models.VerdictAppTampered)

		_, err := s.service.Activate(s.T().Context(), "abc123", models.ProfileInput{})

		verdict, ok := RejectionVerdict(err)
		s.True(ok)
		s.Equal(models.VerdictAppTampered, verdict)
		s.Contains(err.Error(), "official store")
	})

	s.Run("rejection never disturbs the active session", func() {
		s.SetupTest()
		first := s.activateOK("t1")
		// no Enable, Disable or Put expected beyond the first activation
		s.expectVerdict(models.VerdictDeviceRooted)

		_, err := s.service.Activate(s.T().Context(), "t2", models.ProfileInput{})

		s.True(dErrors.HasCode(err, dErrors.CodeSecurityRejected))
		current := s.service.Session()
		s.Equal(first.Session.ID, current.ID)
		s.Equal(models.Token("t1"), current.Token)
		s.Equal(1.0, testutil.ToFloat64(s.metrics.Activations.WithLabelValues(outcomeSecurityRejected)))
	})
}

func (s *ServiceSuite) TestActivate_SessionTransitions() {
	s.Run("a second token replaces the first after disarming it", func() {
		s.SetupTest()
		s.expectVerdict(models.VerdictTrusted)
		s.expectVerdict(models.VerdictTrusted)
		gomock.InOrder(
			s.mockEmulator.EXPECT().Enable(gomock.Any(), models.Token("t1")).Return(nil),
			s.mockStore.EXPECT().Put(gomock.Any(), gomock.Any()).Return(nil),
			s.mockEmulator.EXPECT().Disable(gomock.Any()).Return(nil),
			s.mockEmulator.EXPECT().Enable(gomock.Any(), models.Token("t2")).Return(nil),
			s.mockStore.EXPECT().Put(gomock.Any(), gomock.Any()).Return(nil),
		)

		_, err := s.service.Activate(s.T().Context(), "t1", models.ProfileInput{})
		s.Require().NoError(err)
		_, err = s.service.Activate(s.T().Context(), "t2", models.ProfileInput{})
		s.Require().NoError(err)

		token, ok := s.service.Session().ActiveToken()
		s.True(ok)
		s.Equal(models.Token("t2"), token)
	})

	s.Run("same token reactivation is a fresh activation", func() {
		s.SetupTest()
		first := s.activateOK("t1")
		second := s.activateOK("t1")

		s.NotEqual(first.Session.ID, second.Session.ID)
		s.Equal(models.Token("t1"), second.Session.Token)
	})

	s.Run("mutation completes when the caller has gone away", func() {
		s.SetupTest()
		ctx, cancel := context.WithCancel(s.T().Context())
		cancel()
		s.expectVerdict(models.VerdictTrusted)
		s.mockEmulator.EXPECT().Enable(gomock.Any(), models.Token("t1")).DoAndReturn(
			func(ctx context.Context, _ models.Token) error {
				s.NoError(ctx.Err())
				return nil
			})
		s.mockStore.EXPECT().Put(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, _ *models.Profile) error {
				s.NoError(ctx.Err())
				return nil
			})

		_, err := s.service.Activate(ctx, "t1", models.ProfileInput{})

		s.NoError(err)
		s.True(s.service.Session().IsActive())
	})
}

func (s *ServiceSuite) TestActivate_EmulationFailure() {
	s.Run("enable failure surfaces the diagnostic code and leaves the session inactive", func() {
		s.SetupTest()
		s.expectVerdict(models.VerdictTrusted)
		s.mockEmulator.EXPECT().Enable(gomock.Any(), gomock.Any()).Return(
			&emulation.RadioError{Code: emulation.CodeRadioDisabled, Op: "enable", Err: emulation.ErrRadioDisabled})
		s.mockEmulator.EXPECT().Disable(gomock.Any()).Return(nil)

		result, err := s.service.Activate(s.T().Context(), "abc123", models.ProfileInput{})

		s.Nil(result)
		s.True(dErrors.HasCode(err, dErrors.CodeUnknown))
		code, ok := EmulationCode(err)
		s.True(ok)
		s.Equal(emulation.CodeRadioDisabled, code)
		s.False(s.service.Session().IsActive())
		s.Equal(1.0, testutil.ToFloat64(s.metrics.EmulatorFailures))
	})

	s.Run("untyped transport error reports the unknown code", func() {
		s.SetupTest()
		s.expectVerdict(models.VerdictTrusted)
		s.mockEmulator.EXPECT().Enable(gomock.Any(), gomock.Any()).Return(errors.New("binder died"))
		s.mockEmulator.EXPECT().Disable(gomock.Any()).Return(errors.New("binder died"))

		_, err := s.service.Activate(s.T().Context(), "abc123", models.ProfileInput{})

		code, ok := EmulationCode(err)
		s.True(ok)
		s.Equal(emulation.CodeUnknownFailure, code)
	})

	s.Run("enable failure when re-arming the same token ends the session", func() {
		s.SetupTest()
		s.activateOK("t1")
		s.expectVerdict(models.VerdictTrusted)
		s.mockEmulator.EXPECT().Enable(gomock.Any(), models.Token("t1")).Return(
			&emulation.RadioError{Code: emulation.CodeRadioDisabled, Op: "enable", Err: emulation.ErrRadioDisabled})
		s.mockEmulator.EXPECT().Disable(gomock.Any()).Return(nil).Times(1)

		result, err := s.service.Activate(s.T().Context(), "t1", models.ProfileInput{})

		s.Nil(result)
		s.True(dErrors.HasCode(err, dErrors.CodeUnknown))
		s.False(s.service.Session().IsActive())
		_, ok := s.service.Session().ActiveToken()
		s.False(ok)
	})
}

func (s *ServiceSuite) TestActivate_CacheFailure() {
	storeErr := errors.Join(sentinel.ErrUnavailable, errors.New("disk I/O error"))

	s.Run("card stays armed and the result reports not cached", func() {
		s.SetupTest()
		s.expectVerdict(models.VerdictTrusted)
		s.mockEmulator.EXPECT().Enable(gomock.Any(), models.Token("abc123")).Return(nil)
		s.mockStore.EXPECT().Put(gomock.Any(), gomock.Any()).Return(storeErr)

		result, err := s.service.Activate(s.T().Context(), "abc123", models.ProfileInput{Name: "Ada"})

		s.True(dErrors.HasCode(err, dErrors.CodeNotCached))
		s.ErrorIs(err, sentinel.ErrUnavailable)
		s.Require().NotNil(result)
		s.Equal(models.OutcomeActivatedNotCached, result.Outcome)
		s.Equal("Ada", result.Profile.Name)
		s.True(s.service.Session().IsActive())
		s.Equal(1.0, testutil.ToFloat64(s.metrics.Activations.WithLabelValues(outcomeActivatedNotCached)))
	})

	s.Run("rollback policy disarms the card", func() {
		s.SetupTest()
		svc := s.newService(WithRollbackOnCacheFailure(true))
		s.expectVerdict(models.VerdictTrusted)
		s.mockEmulator.EXPECT().Enable(gomock.Any(), models.Token("abc123")).Return(nil)
		s.mockStore.EXPECT().Put(gomock.Any(), gomock.Any()).Return(storeErr)
		s.mockEmulator.EXPECT().Disable(gomock.Any()).Return(nil)

		result, err := svc.Activate(s.T().Context(), "abc123", models.ProfileInput{})

		s.Nil(result)
		s.True(dErrors.HasCode(err, dErrors.CodeStoreUnavailable))
		s.False(svc.Session().IsActive())
	})
}

