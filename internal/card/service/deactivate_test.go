package service

import (
	"errors"

	"go.uber.org/mock/gomock"

	"campuscard/internal/card/models"
)

func (s *ServiceSuite) TestDeactivate() {
	s.Run("disarms an active card", func() {
		s.SetupTest()
		s.activateOK("t1")
		s.mockEmulator.EXPECT().Disable(gomock.Any()).Return(nil)

		s.Require().NoError(s.service.Deactivate(s.T().Context()))

		s.False(s.service.Session().IsActive())
	})

	s.Run("is idempotent", func() {
		s.SetupTest()
		s.mockEmulator.EXPECT().Disable(gomock.Any()).Return(nil).Times(2)

		s.NoError(s.service.Deactivate(s.T().Context()))
		s.Equal(models.SessionInactive, s.service.Session().State)
		s.NoError(s.service.Deactivate(s.T().Context()))
		s.Equal(models.SessionInactive, s.service.Session().State)
	})

	s.Run("radio error still leaves the session inactive", func() {
		s.SetupTest()
		s.activateOK("t1")
		s.mockEmulator.EXPECT().Disable(gomock.Any()).Return(errors.New("radio busy"))

		s.NoError(s.service.Deactivate(s.T().Context()))

		s.False(s.service.Session().IsActive())
	})
}
