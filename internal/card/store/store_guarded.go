package store

import (
	"context"
	"errors"
	"log/slog"

	"campuscard/internal/card/models"
	"campuscard/internal/sentinel"
	"campuscard/pkg/platform/circuit"
)

// GuardedStore wraps a durable store with a circuit breaker. Profiles that
// were successfully written or read are mirrored in memory; while the breaker
// is open, reads that miss the durable store because it is unavailable are
// served from the mirror. Writes always go to the durable store and only reach
// the mirror once they succeed.
type GuardedStore struct {
	primary Store
	mirror  *InMemoryStore
	breaker *circuit.Breaker
	logger  *slog.Logger
}

func NewGuarded(primary Store, breaker *circuit.Breaker, logger *slog.Logger) *GuardedStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &GuardedStore{primary: primary, mirror: New(), breaker: breaker, logger: logger}
}

func (s *GuardedStore) Put(ctx context.Context, profile *models.Profile) error {
	if err := s.record(s.primary.Put(ctx, profile)); err != nil {
		return err
	}
	return s.mirror.Put(ctx, profile)
}

func (s *GuardedStore) Get(ctx context.Context, token models.Token) (*models.Profile, error) {
	p, err := s.primary.Get(ctx, token)
	if err = s.record(err); err == nil {
		_ = s.mirror.Put(ctx, p)
		return p, nil
	}
	if errors.Is(err, sentinel.ErrUnavailable) && s.breaker.IsOpen() {
		if cached, mErr := s.mirror.Get(ctx, token); mErr == nil {
			s.logger.WarnContext(ctx, "serving card profile from memory mirror",
				"breaker", s.breaker.Name(),
			)
			return cached, nil
		}
	}
	return nil, err
}

func (s *GuardedStore) Delete(ctx context.Context, token models.Token) error {
	if err := s.record(s.primary.Delete(ctx, token)); err != nil {
		return err
	}
	_ = s.mirror.Delete(ctx, token)
	return nil
}

func (s *GuardedStore) List(ctx context.Context) ([]*models.Profile, error) {
	profiles, err := s.primary.List(ctx)
	return profiles, s.record(err)
}

// record reports infrastructure failures to the breaker. Misses and invalid
// input count as healthy round trips.
func (s *GuardedStore) record(err error) error {
	healthy := err == nil || !errors.Is(err, sentinel.ErrUnavailable)
	switch s.breaker.Record(healthy) {
	case circuit.Opened:
		s.logger.Error("card store breaker opened", "breaker", s.breaker.Name(), "error", err)
	case circuit.Closed:
		s.logger.Info("card store breaker closed", "breaker", s.breaker.Name())
	}
	return err
}
