package wound

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/mudhealth/internal/game/dice"
)

// Env bundles the immutable tables and the external collaborators every
// wound in one engine shares. It is built once at startup.
type Env struct {
	Tables     *Tables
	Checker    Checker
	Roller     *dice.Roller
	Infections InfectionFactory
	Logger     *zap.Logger
}

// NewEnv builds an Env.
//
// Precondition: every argument must be non-nil.
// Postcondition: Returns a ready Env.
func NewEnv(tables *Tables, checker Checker, roller *dice.Roller, infections InfectionFactory, logger *zap.Logger) *Env {
	if tables == nil || checker == nil || roller == nil || infections == nil || logger == nil {
		panic("wound.NewEnv: all collaborators must be non-nil")
	}
	return &Env{
		Tables:     tables,
		Checker:    checker,
		Roller:     roller,
		Infections: infections,
		Logger:     logger,
	}
}
