package service_test

import (
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campuscard/internal/card/attestation"
	"campuscard/internal/card/emulation"
	"campuscard/internal/card/models"
	"campuscard/internal/card/service"
	"campuscard/internal/card/status"
	"campuscard/internal/card/store"
	dErrors "campuscard/pkg/domain-errors"
	"campuscard/pkg/testutil"
)

var releaseCert = []byte("campus card release signing certificate")

type harness struct {
	svc    *service.Service
	store  *store.InMemoryStore
	radio  *emulation.SimulatedRadio
	device *attestation.StaticDevice
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	attestor, err := attestation.New(attestation.Config{
		ExpectedCertFingerprints: []string{attestation.Fingerprint(releaseCert)},
	}, attestation.WithLogger(logger))
	require.NoError(t, err)

	h := &harness{
		store:  store.New(),
		radio:  emulation.NewSimulatedRadio(true, true),
		device: &attestation.StaticDevice{Tags: "release-keys", Certs: [][]byte{releaseCert}},
	}
	h.svc = service.New(attestor, h.device, h.radio, h.store, status.New(h.radio, logger),
		service.WithLogger(logger),
		service.WithClock(func() time.Time { return testutil.FixedNow }),
	)
	return h
}

func TestActivateThenLookupReturnsDefaultedProfile(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.Activate(t.Context(), "abc123", models.ProfileInput{Name: "Ada Student", Role: "student"})
	require.NoError(t, err)

	got, err := h.svc.CachedProfile(t.Context(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "Ada Student", got.Name)
	assert.Equal(t, "student", got.Role)
	assert.Equal(t, 0.0, got.Balance)
	assert.True(t, got.IsActive)

	armed, ok := h.radio.Armed()
	assert.True(t, ok)
	assert.Equal(t, models.Token("abc123"), armed)
}

func TestActivateRoundTripsEveryField(t *testing.T) {
	h := newHarness(t)
	want := testutil.NewProfile("t-77").WithName("Grace").WithRole("staff").WithBalance(42.25).WithValidUntil("2030-06-30").Inactive().Build()

	_, err := h.svc.Activate(t.Context(), "t-77", testutil.InputFor(want))
	require.NoError(t, err)

	got, err := h.svc.CachedProfile(t.Context(), "t-77")
	require.NoError(t, err)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.Email, got.Email)
	assert.Equal(t, want.Role, got.Role)
	assert.Equal(t, want.Balance, got.Balance)
	assert.Equal(t, want.ValidUntil, got.ValidUntil)
	assert.False(t, got.IsActive)
}

func TestExpiredValidUntilIsStoredByDefault(t *testing.T) {
	h := newHarness(t)
	past := testutil.FixedNow.AddDate(0, -1, 0).Format(time.DateOnly)

	result, err := h.svc.Activate(t.Context(), "t-old", models.ProfileInput{Name: "Ada", ValidUntil: &past})
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeActivated, result.Outcome)

	got, err := h.svc.CachedProfile(t.Context(), "t-old")
	require.NoError(t, err)
	assert.Equal(t, past, got.ValidUntil)
}

func TestRootedDeviceStoresNothing(t *testing.T) {
	h := newHarness(t)
	h.device.Tags = "test-keys"

	_, err := h.svc.Activate(t.Context(), "abc123", models.ProfileInput{Name: "Ada"})

	require.True(t, dErrors.HasCode(err, dErrors.CodeSecurityRejected))
	verdict, _ := service.RejectionVerdict(err)
	assert.Equal(t, models.VerdictDeviceRooted, verdict)

	_, err = h.svc.CachedProfile(t.Context(), "abc123")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	_, armed := h.radio.Armed()
	assert.False(t, armed)
}

func TestResignedAppIsRejectedAsTampered(t *testing.T) {
	h := newHarness(t)
	h.device.Certs = [][]byte{[]byte("repackager certificate")}

	_, err := h.svc.Activate(t.Context(), "abc123", models.ProfileInput{})

	verdict, ok := service.RejectionVerdict(err)
	require.True(t, ok)
	assert.Equal(t, models.VerdictAppTampered, verdict)
}

func TestRadioFailureReportsDiagnosticCode(t *testing.T) {
	h := newHarness(t)
	h.radio.SetEnabled(false)

	_, err := h.svc.Activate(t.Context(), "abc123", models.ProfileInput{})

	require.True(t, dErrors.HasCode(err, dErrors.CodeUnknown))
	code, _ := service.EmulationCode(err)
	assert.Equal(t, emulation.CodeRadioDisabled, code)
	assert.False(t, h.svc.Session().IsActive())
	_, err = h.svc.CachedProfile(t.Context(), "abc123")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestConcurrentActivationsLeaveOneArmedToken(t *testing.T) {
	h := newHarness(t)

	result := testutil.RunConcurrent(32, func(idx int) error {
		_, err := h.svc.Activate(t.Context(), fmt.Sprintf("token-%02d", idx), models.ProfileInput{Name: "Student"})
		return err
	})

	assert.Equal(t, int32(32), result.Successes)
	token, ok := h.svc.Session().ActiveToken()
	require.True(t, ok)
	armed, ok := h.radio.Armed()
	require.True(t, ok)
	assert.Equal(t, token, armed)

	profiles, err := h.svc.CachedProfiles(t.Context())
	require.NoError(t, err)
	assert.Len(t, profiles, 32)
}

func TestHardwareStatusIgnoresSessionChanges(t *testing.T) {
	h := newHarness(t)
	before := h.svc.HardwareStatus(t.Context())

	_, err := h.svc.Activate(t.Context(), "t1", models.ProfileInput{})
	require.NoError(t, err)
	assert.Equal(t, before, h.svc.HardwareStatus(t.Context()))

	_, err = h.svc.Activate(t.Context(), "t2", models.ProfileInput{})
	require.NoError(t, err)
	require.NoError(t, h.svc.Deactivate(t.Context()))
	require.NoError(t, h.svc.Deactivate(t.Context()))

	assert.Equal(t, models.HardwareReady, before)
	assert.Equal(t, before, h.svc.HardwareStatus(t.Context()))
}

func TestDeactivateTwiceIsInactive(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.Activate(t.Context(), "t1", models.ProfileInput{})
	require.NoError(t, err)

	require.NoError(t, h.svc.Deactivate(t.Context()))
	assert.False(t, h.svc.Session().IsActive())
	require.NoError(t, h.svc.Deactivate(t.Context()))
	assert.False(t, h.svc.Session().IsActive())

	_, armed := h.radio.Armed()
	assert.False(t, armed)
	// the cached profile outlives the session
	_, err = h.svc.CachedProfile(t.Context(), "t1")
	assert.NoError(t, err)
}
