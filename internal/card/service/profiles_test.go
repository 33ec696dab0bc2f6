package service

import (
	"errors"

	"go.uber.org/mock/gomock"

	"campuscard/internal/card/models"
	"campuscard/internal/sentinel"
	dErrors "campuscard/pkg/domain-errors"
	"campuscard/pkg/testutil"
)

func (s *ServiceSuite) TestCachedProfile() {
	s.Run("returns the cached profile", func() {
		s.SetupTest()
		want := testutil.NewProfile("abc123").WithBalance(12.5).Build()
		s.mockStore.EXPECT().Get(gomock.Any(), models.Token("abc123")).Return(want, nil)

		got, err := s.service.CachedProfile(s.T().Context(), "abc123")

		s.Require().NoError(err)
		s.Equal(want, got)
	})

	s.Run("miss is not_found, never an empty profile", func() {
		s.SetupTest()
		s.mockStore.EXPECT().Get(gomock.Any(), models.Token("ghost")).Return(nil, sentinel.ErrNotFound)

		got, err := s.service.CachedProfile(s.T().Context(), "ghost")

		s.Nil(got)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("broken store is store_unavailable, not not_found", func() {
		s.SetupTest()
		s.mockStore.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil,
			errors.Join(sentinel.ErrUnavailable, errors.New("database disk image is malformed")))

		_, err := s.service.CachedProfile(s.T().Context(), "abc123")

		s.True(dErrors.HasCode(err, dErrors.CodeStoreUnavailable))
		s.False(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("empty token is invalid input without touching the store", func() {
		s.SetupTest()

		_, err := s.service.CachedProfile(s.T().Context(), "")

		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *ServiceSuite) TestCacheAdministration() {
	s.Run("lists profiles", func() {
		s.SetupTest()
		list := []*models.Profile{testutil.NewProfile("a").Build(), testutil.NewProfile("b").Build()}
		s.mockStore.EXPECT().List(gomock.Any()).Return(list, nil)

		got, err := s.service.CachedProfiles(s.T().Context())

		s.Require().NoError(err)
		s.Len(got, 2)
	})

	s.Run("evicting an unknown token is not_found", func() {
		s.SetupTest()
		s.mockStore.EXPECT().Delete(gomock.Any(), models.Token("ghost")).Return(sentinel.ErrNotFound)

		err := s.service.EvictProfile(s.T().Context(), "ghost")

		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("evicting does not disarm the active card", func() {
		s.SetupTest()
		s.activateOK("t1")
		s.mockStore.EXPECT().Delete(gomock.Any(), models.Token("t1")).Return(nil)

		s.Require().NoError(s.service.EvictProfile(s.T().Context(), "t1"))

		s.True(s.service.Session().IsActive())
	})
}

func (s *ServiceSuite) TestHardwareStatus() {
	s.SetupTest()
	s.mockReporter.EXPECT().Status(gomock.Any()).Return(models.HardwareReady)

	s.Equal(models.HardwareReady, s.service.HardwareStatus(s.T().Context()))
}
