//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"

	"github.com/cory-johannsen/mudhealth/internal/config"
	"github.com/cory-johannsen/mudhealth/internal/engine"
)

func initApp(ctx context.Context, cfg config.Config) (*App, func(), error) {
	wire.Build(
		wire.FieldsOf(new(config.Config), "Database", "Logging", "Health", "Status"),
		provideLogger,
		providePool,
		provideWoundRepository,
		provideSessionRepository,
		provideHeartbeat,
		provideStatus,
		engine.ProviderSet,
		newApp,
	)
	return nil, nil, nil
}
