//go:build integration

// Package containers starts throwaway databases for integration tests. One
// Postgres container is shared by every suite in a test binary; the Ryuk
// sidecar removes it when the binary exits.
package containers

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"campuscard/internal/platform/database"
)

// Postgres is a running container with an open connection pool.
type Postgres struct {
	URL  string
	Pool *database.Pool
}

var (
	sharedOnce sync.Once
	shared     *Postgres
	sharedErr  error
)

// SharedPostgres returns the binary-wide container, starting it on first use.
// A failed start fails every caller.
func SharedPostgres(t *testing.T) *Postgres {
	t.Helper()
	sharedOnce.Do(func() {
		shared, sharedErr = startPostgres(context.Background())
	})
	if sharedErr != nil {
		t.Fatalf("start postgres container: %v", sharedErr)
	}
	return shared
}

func startPostgres(ctx context.Context) (*Postgres, error) {
	container, err := postgres.Run(ctx,
		"postgres:18-alpine",
		postgres.WithDatabase("campuscard_test"),
		postgres.WithUsername("campuscard"),
		postgres.WithPassword("campuscard_test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, err
	}
	url, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("connection string: %w", err)
	}

	cfg := database.DefaultConfig()
	cfg.Driver = database.DriverPostgres
	cfg.URL = url
	pool, err := database.New(ctx, cfg)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}
	return &Postgres{URL: url, Pool: pool}, nil
}

// ResetProfiles empties the card profile table between tests.
func (p *Postgres) ResetProfiles(ctx context.Context) error {
	if _, err := p.Pool.DB().ExecContext(ctx, "TRUNCATE TABLE card_profiles"); err != nil {
		return fmt.Errorf("reset card_profiles: %w", err)
	}
	return nil
}
