// Package app assembles the card service from configuration. Both the daemon
// and the offline CLI build on it.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"campuscard/internal/card/attestation"
	"campuscard/internal/card/emulation"
	"campuscard/internal/card/metrics"
	"campuscard/internal/card/service"
	"campuscard/internal/card/status"
	"campuscard/internal/card/store"
	"campuscard/internal/card/tracer"
	"campuscard/internal/platform/config"
	"campuscard/internal/platform/database"
	"campuscard/pkg/platform/circuit"
)

type App struct {
	Service  *service.Service
	Store    service.ProfileStore
	Radio    *emulation.SimulatedRadio
	Reporter *status.Reporter
	Metrics  *metrics.Metrics

	pool *database.Pool
}

// Build opens the configured store and wires the service. reg may be nil, in
// which case no metrics are registered.
func Build(ctx context.Context, cfg config.Server, logger *slog.Logger, reg prometheus.Registerer) (*App, error) {
	precedence, err := attestation.ParsePrecedence(cfg.Attestation.Precedence)
	if err != nil {
		return nil, err
	}
	attestor, err := attestation.New(attestation.Config{
		ExpectedCertFingerprints: cfg.Attestation.CertFingerprints,
		AllowedInstallers:        cfg.Attestation.AllowedInstallers,
		Precedence:               precedence,
	}, attestation.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("configure attestation: %w", err)
	}
	device, err := Device(cfg.Attestation)
	if err != nil {
		return nil, err
	}

	a := &App{Radio: emulation.NewSimulatedRadio(cfg.Radio.Supported, cfg.Radio.Enabled)}
	a.Store, a.pool, err = OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.StoreMirror && a.pool != nil {
		a.Store = store.NewGuarded(a.Store, circuit.New("card-store"), logger)
	}
	a.Reporter = status.New(a.Radio, logger)

	opts := []service.Option{
		service.WithLogger(logger),
		service.WithTracer(tracer.NewOTel(nil)),
		service.WithRollbackOnCacheFailure(cfg.RollbackOnCacheFailure),
		service.WithExpiryCheck(cfg.RejectExpired),
	}
	if reg != nil {
		a.Metrics = metrics.New(reg)
		opts = append(opts, service.WithMetrics(a.Metrics))
		if a.pool != nil {
			if err := reg.Register(a.pool.Collector()); err != nil {
				return nil, errors.Join(fmt.Errorf("register store pool metrics: %w", err), a.pool.Close())
			}
		}
	}
	a.Service = service.New(attestor, device, a.Radio, a.Store, a.Reporter, opts...)
	return a, nil
}

// Device returns the inspector attestation runs against: a JSON device
// profile when one is configured, otherwise the host itself.
func Device(cfg config.Attestation) (attestation.Inspector, error) {
	if cfg.DeviceProfile != "" {
		device, err := attestation.LoadStaticDevice(cfg.DeviceProfile)
		if err != nil {
			return nil, fmt.Errorf("load device profile: %w", err)
		}
		return device, nil
	}
	return attestation.NewHostInspector(cfg.AppCertFile, cfg.Installer), nil
}

// OpenStore opens and migrates the configured profile store. The returned
// pool is nil for the in-memory store.
func OpenStore(ctx context.Context, cfg config.Server) (service.ProfileStore, *database.Pool, error) {
	if cfg.Store == config.StoreMemory {
		return store.New(), nil, nil
	}

	dbCfg := database.DefaultConfig()
	dbCfg.URL = cfg.DatabaseURL
	if cfg.Store == config.StorePostgres {
		dbCfg.Driver = database.DriverPostgres
		dbCfg.MaxOpenConns = 10
		dbCfg.MaxIdleConns = 5
	}
	pool, err := database.New(ctx, dbCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open card store: %w", err)
	}
	dialect, err := store.DialectForDriver(pool.Driver())
	if err != nil {
		return nil, nil, errors.Join(err, pool.Close())
	}
	sqlStore := store.NewSQL(pool.DB(), dialect)
	if err := sqlStore.Migrate(ctx); err != nil {
		return nil, nil, errors.Join(fmt.Errorf("migrate card store: %w", err), pool.Close())
	}
	return sqlStore, pool, nil
}

// CheckStore is the readiness check for the profile store.
func (a *App) CheckStore(ctx context.Context) error {
	if a.pool == nil {
		return nil
	}
	return a.pool.Health(ctx)
}

func (a *App) Close() error {
	if a.pool == nil {
		return nil
	}
	return a.pool.Close()
}
