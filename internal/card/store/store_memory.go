package store

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"campuscard/internal/card/models"
	"campuscard/internal/sentinel"
)

// InMemoryStore keeps profiles in process memory for tests and dev. Readers
// load an immutable snapshot and never wait on writers.
type InMemoryStore struct {
	writeMu  sync.Mutex
	profiles atomic.Pointer[map[models.Token]*models.Profile]
}

// New constructs an empty in-memory profile store.
func New() *InMemoryStore {
	s := &InMemoryStore{}
	empty := make(map[models.Token]*models.Profile)
	s.profiles.Store(&empty)
	return s
}

func (s *InMemoryStore) Put(_ context.Context, profile *models.Profile) error {
	if profile == nil || profile.Token.IsZero() {
		return fmt.Errorf("profile with token is required: %w", sentinel.ErrInvalidInput)
	}
	s.update(func(m map[models.Token]*models.Profile) {
		m[profile.Token] = profile.Clone()
	})
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, token models.Token) (*models.Profile, error) {
	p, ok := (*s.profiles.Load())[token]
	if !ok {
		return nil, fmt.Errorf("profile not found: %w", sentinel.ErrNotFound)
	}
	return p.Clone(), nil
}

func (s *InMemoryStore) Delete(_ context.Context, token models.Token) error {
	if _, ok := (*s.profiles.Load())[token]; !ok {
		return fmt.Errorf("profile not found: %w", sentinel.ErrNotFound)
	}
	s.update(func(m map[models.Token]*models.Profile) {
		delete(m, token)
	})
	return nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*models.Profile, error) {
	snapshot := *s.profiles.Load()
	out := make([]*models.Profile, 0, len(snapshot))
	for _, p := range snapshot {
		out = append(out, p.Clone())
	}
	slices.SortFunc(out, func(a, b *models.Profile) int {
		return strings.Compare(string(a.Token), string(b.Token))
	})
	return out, nil
}

// update applies fn to a copy of the current map and publishes it.
func (s *InMemoryStore) update(fn func(map[models.Token]*models.Profile)) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	next := maps.Clone(*s.profiles.Load())
	fn(next)
	s.profiles.Store(&next)
}
