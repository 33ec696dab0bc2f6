package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Attestor,Emulator,ProfileStore,StatusReporter

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"campuscard/internal/card/attestation"
	"campuscard/internal/card/metrics"
	"campuscard/internal/card/models"
	"campuscard/internal/card/tracer"
)

// Attestor judges whether the device can be trusted with a credential.
type Attestor interface {
	Attest(ctx context.Context, device attestation.Inspector) attestation.Report
}

// Emulator switches contactless card emulation on and off.
type Emulator interface {
	Enable(ctx context.Context, token models.Token) error
	Disable(ctx context.Context) error
}

// ProfileStore persists card profiles for offline use.
// Error Contract: Get and Delete return sentinel.ErrNotFound on a miss and
// sentinel.ErrUnavailable (wrapped) when the backing store cannot be read.
type ProfileStore interface {
	Put(ctx context.Context, profile *models.Profile) error
	Get(ctx context.Context, token models.Token) (*models.Profile, error)
	Delete(ctx context.Context, token models.Token) error
	List(ctx context.Context) ([]*models.Profile, error)
}

// StatusReporter reports contactless hardware capability.
type StatusReporter interface {
	Status(ctx context.Context) models.HardwareStatus
}

// Service owns the emulation session. Activate and Deactivate are serialized
// on mu; attestation and reads run without it.
type Service struct {
	attestor Attestor
	device   attestation.Inspector
	emulator Emulator
	profiles ProfileStore
	reporter StatusReporter

	mu      sync.Mutex
	session *models.Session

	rollbackOnCacheFailure bool
	rejectExpired          bool
	now                    func() time.Time
	logger                 *slog.Logger
	metrics                *metrics.Metrics
	tracer                 tracer.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithSession injects the session object the service will own. The caller must
// not mutate it afterwards.
func WithSession(session *models.Session) Option {
	return func(s *Service) {
		s.session = session
	}
}

// WithRollbackOnCacheFailure disables emulation again when the profile cannot be
// cached after a successful enable. By default emulation stays on and the
// caller receives an activated-but-not-cached result.
func WithRollbackOnCacheFailure(enabled bool) Option {
	return func(s *Service) {
		s.rollbackOnCacheFailure = enabled
	}
}

// WithExpiryCheck rejects profiles whose parseable validity date is already in
// the past. Off by default: validity is stored as given.
func WithExpiryCheck(enabled bool) Option {
	return func(s *Service) {
		s.rejectExpired = enabled
	}
}

func New(attestor Attestor, device attestation.Inspector, emulator Emulator, profiles ProfileStore, reporter StatusReporter, opts ...Option) *Service {
	svc := &Service{
		attestor: attestor,
		device:   device,
		emulator: emulator,
		profiles: profiles,
		reporter: reporter,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	if svc.tracer == nil {
		svc.tracer = tracer.NewNoop()
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	if svc.session == nil {
		svc.session = models.NewSession()
	}
	return svc
}

// Session returns a snapshot of the current emulation session.
func (s *Service) Session() models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Snapshot()
}
