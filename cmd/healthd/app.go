package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/mudhealth/internal/config"
	"github.com/cory-johannsen/mudhealth/internal/engine"
	"github.com/cory-johannsen/mudhealth/internal/heartbeat"
	"github.com/cory-johannsen/mudhealth/internal/observability"
	"github.com/cory-johannsen/mudhealth/internal/server"
	"github.com/cory-johannsen/mudhealth/internal/storage/postgres"
)

// App is the assembled daemon.
type App struct {
	logger    *zap.Logger
	bodies    *engine.BodyFactory
	sessions  *postgres.SessionRepository
	heartbeat *heartbeat.Manager
	status    *server.HealthService
	lifecycle *server.Lifecycle
}

func newApp(logger *zap.Logger, bodies *engine.BodyFactory, sessions *postgres.SessionRepository, hb *heartbeat.Manager, status *server.HealthService) *App {
	lc := server.NewLifecycle(logger, 30*time.Second)
	lc.Add("heartbeat", hb)
	lc.Add("status", status)
	return &App{logger: logger, bodies: bodies, sessions: sessions, heartbeat: hb, status: status, lifecycle: lc}
}

// registerStored brings every body with a stored session back onto the heartbeat.
func (a *App) registerStored(ctx context.Context) error {
	stored, err := a.sessions.List(ctx)
	if err != nil {
		return err
	}
	for _, s := range stored {
		b, err := a.bodies.New(s.OwnerID, s.TemplateID)
		if err != nil {
			a.logger.Warn("skipping stored body", zap.String("body", s.OwnerID), zap.Error(err))
			continue
		}
		if err := a.heartbeat.Register(ctx, b); err != nil {
			return fmt.Errorf("registering stored bodies: %w", err)
		}
	}
	a.logger.Info("stored bodies registered", zap.Int("count", len(a.heartbeat.IDs())))
	return nil
}

// Run registers stored bodies and blocks until shutdown.
func (a *App) Run(ctx context.Context) error {
	if err := a.registerStored(ctx); err != nil {
		return err
	}
	return a.lifecycle.Run(ctx)
}

func provideLogger(cfg config.LoggingConfig) (*zap.Logger, func(), error) {
	logger, err := observability.NewLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = logger.Sync() }, nil
}

func providePool(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*postgres.Pool, func(), error) {
	start := time.Now()
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("database connected",
		zap.String("host", cfg.Host),
		zap.Duration("elapsed", time.Since(start)),
	)
	pool.LogStats(logger)
	return pool, pool.Close, nil
}

func provideWoundRepository(pool *postgres.Pool) *postgres.WoundRepository {
	return postgres.NewWoundRepository(pool.DB())
}

func provideSessionRepository(pool *postgres.Pool) *postgres.SessionRepository {
	return postgres.NewSessionRepository(pool.DB())
}

func provideHeartbeat(cfg config.HealthConfig, wounds *postgres.WoundRepository, sessions *postgres.SessionRepository, logger *zap.Logger) *heartbeat.Manager {
	return heartbeat.New(heartbeat.Options{
		Interval:   cfg.TickInterval,
		FlushEvery: cfg.FlushEvery,
		Offline:    cfg.OfflineEnabled,
		Wounds:     wounds,
		Sessions:   sessions,
		Logger:     logger,
	})
}

// provideStatus serves grpc.health.v1 with one probe per dependency the
// heartbeat needs.
func provideStatus(cfg config.StatusConfig, pool *postgres.Pool, hb *heartbeat.Manager, logger *zap.Logger) *server.HealthService {
	return server.NewHealthService(server.HealthOptions{
		Addr:     cfg.Addr(),
		Interval: cfg.ProbeInterval,
		Timeout:  cfg.ProbeTimeout,
		Probes: map[string]server.Probe{
			"mudhealth.database": func(ctx context.Context) error {
				return pool.Health(ctx, cfg.ProbeTimeout)
			},
			"mudhealth.heartbeat": func(context.Context) error {
				if !hb.Running() {
					return errors.New("heartbeat is not running")
				}
				return nil
			},
		},
		Logger: logger,
	})
}
