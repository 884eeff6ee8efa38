// Package main provides the health daemon: it restores stored bodies,
// catches them up on the time they were offline and runs the health
// heartbeat until signalled.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/mudhealth/internal/config"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	ctx := context.Background()
	app, cleanup, err := initApp(ctx, cfg)
	if err != nil {
		log.Fatalf("initializing: %v", err)
	}
	defer cleanup()

	app.logger.Info("health daemon ready",
		zap.Duration("tick_interval", cfg.Health.TickInterval),
		zap.Bool("offline_enabled", cfg.Health.OfflineEnabled),
		zap.Duration("startup", time.Since(start)),
	)
	if err := app.Run(ctx); err != nil {
		app.logger.Error("health daemon stopped", zap.Error(err))
	}
}
