// Package store persists card profiles for offline lookup, keyed by token.
//
// Error Contract:
//   - Get returns sentinel.ErrNotFound when no record exists for the token
//   - infrastructure failures (unreadable or corrupt backing store) wrap
//     sentinel.ErrUnavailable and are never reported as a miss
//   - Put overwrites any existing record for the token (last write wins)
package store

import (
	"context"

	"campuscard/internal/card/models"
)

// Store is implemented by every profile store.
type Store interface {
	Put(ctx context.Context, profile *models.Profile) error
	Get(ctx context.Context, token models.Token) (*models.Profile, error)
	Delete(ctx context.Context, token models.Token) error
	List(ctx context.Context) ([]*models.Profile, error)
}
