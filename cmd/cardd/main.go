package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"campuscard/internal/app"
	cardHandler "campuscard/internal/card/handler"
	"campuscard/internal/platform/config"
	"campuscard/internal/platform/health"
	"campuscard/internal/platform/logger"
	httptransport "campuscard/internal/transport/http"
	"campuscard/pkg/platform/middleware/request"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		logger.New("info").Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)
	if err := run(cfg, log); err != nil {
		log.Error("card daemon stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("card daemon stopped")
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	log.Info("initializing card daemon",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"store", cfg.Store,
		"attestation_precedence", cfg.Attestation.Precedence,
		"rollback_on_cache_failure", cfg.RollbackOnCacheFailure,
		"reject_expired", cfg.RejectExpired,
	)

	card, err := app.Build(ctx, cfg, log, reg)
	if err != nil {
		return fmt.Errorf("initialize card service: %w", err)
	}
	defer func() {
		if err := card.Close(); err != nil {
			log.Error("failed to close card store", "error", err)
		}
	}()

	healthHandler := health.New(cfg.Environment)
	healthHandler.RegisterCheck("card_store", card.CheckStore)
	healthHandler.RegisterInfo("hardware", func(ctx context.Context) string {
		return card.Service.HardwareStatus(ctx).String()
	})
	healthHandler.RegisterInfo("session", func(context.Context) string {
		return card.Service.Session().State.String()
	})

	router := httptransport.NewRouter(httptransport.Dependencies{
		Card:           cardHandler.New(card.Service, log),
		Health:         healthHandler,
		Metrics:        promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		RequestMetrics: request.NewMetrics(reg),
		Timeout:        cfg.HTTPTimeout,
		Logger:         log,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.HTTPTimeout,
		WriteTimeout:      cfg.HTTPTimeout + time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down card daemon")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		// leave no card armed once the bridge is gone
		if err := card.Service.Deactivate(shutdownCtx); err != nil {
			log.Error("failed to deactivate card on shutdown", "error", err)
		}
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
