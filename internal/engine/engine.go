// Package engine assembles the wound engine from configuration: tables,
// dice, skill checks, infections, body templates and healing strategies.
package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/cory-johannsen/mudhealth/internal/config"
	"github.com/cory-johannsen/mudhealth/internal/game/body"
	"github.com/cory-johannsen/mudhealth/internal/game/dice"
	"github.com/cory-johannsen/mudhealth/internal/game/health"
	"github.com/cory-johannsen/mudhealth/internal/game/infection"
	"github.com/cory-johannsen/mudhealth/internal/game/skill"
	"github.com/cory-johannsen/mudhealth/internal/game/wound"
	"github.com/cory-johannsen/mudhealth/internal/scripting"
)

// ProviderSet builds an *Env and a *BodyFactory from a config.HealthConfig
// and a *zap.Logger.
var ProviderSet = wire.NewSet(
	NewTables,
	NewRoller,
	NewChecker,
	NewInfectionFactory,
	wound.NewEnv,
	NewRegistry,
	NewStrategies,
	NewBodyFactory,
)

// NewTables loads cfg.TablesFile, or the compiled-in tables when unset.
func NewTables(cfg config.HealthConfig) (*wound.Tables, error) {
	if cfg.TablesFile == "" {
		return wound.DefaultTables(), nil
	}
	t, err := wound.LoadTables(cfg.TablesFile)
	if err != nil {
		return nil, fmt.Errorf("loading wound tables: %w", err)
	}
	return t, nil
}

// NewRoller returns a logged roller. A non-zero cfg.Seed makes it
// deterministic; otherwise it draws from crypto/rand.
func NewRoller(cfg config.HealthConfig, logger *zap.Logger) *dice.Roller {
	if cfg.Seed != 0 {
		return dice.NewLoggedRoller(dice.NewSeededSource(cfg.Seed), logger)
	}
	return dice.NewLoggedRoller(dice.NewCryptoSource(), logger)
}

// NewChecker returns the d100 skill checker.
func NewChecker(roller *dice.Roller, logger *zap.Logger) wound.Checker {
	return skill.NewDiceChecker(roller, nil, logger)
}

// NewInfectionFactory returns the default infection factory.
func NewInfectionFactory(logger *zap.Logger) wound.InfectionFactory {
	return infection.NewFactory(infection.DefaultParams(), logger)
}

// NewRegistry loads every template in cfg.ContentDir. A missing directory
// yields just the compiled-in humanoid, which is also added when the
// directory does not define one.
func NewRegistry(cfg config.HealthConfig, logger *zap.Logger) (*body.Registry, error) {
	reg, err := body.LoadDirectory(cfg.ContentDir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Warn("body template dir missing, using built-in humanoid", zap.String("dir", cfg.ContentDir))
		reg = body.NewRegistry()
	case err != nil:
		return nil, err
	}
	if _, ok := reg.Get(body.Humanoid().ID); !ok {
		reg.Register(body.Humanoid())
	}
	logger.Info("body templates loaded", zap.Strings("templates", reg.IDs()))
	return reg, nil
}

// Strategies hands each template its healing strategy: the Lua hook of the
// template's scope when scripts are configured, otherwise the table.
type Strategies struct {
	table   *health.TableStrategy
	scripts *scripting.Manager
}

// NewStrategies loads cfg.StrategyFile and, when cfg.ScriptDir is set, the
// shared scripts in it plus one scope per template subdirectory.
//
// Postcondition: the returned cleanup closes every Lua VM.
func NewStrategies(cfg config.HealthConfig, reg *body.Registry, roller *dice.Roller, logger *zap.Logger) (*Strategies, func(), error) {
	table := health.DefaultStrategy()
	if cfg.StrategyFile != "" {
		var err error
		if table, err = health.LoadStrategy(cfg.StrategyFile); err != nil {
			return nil, nil, err
		}
	}
	s := &Strategies{table: table}
	if cfg.ScriptDir == "" {
		return s, func() {}, nil
	}

	mgr := scripting.NewManager(roller, logger)
	if err := mgr.LoadGlobal(cfg.ScriptDir, cfg.InstructionLimit); err != nil {
		mgr.Close()
		return nil, nil, fmt.Errorf("loading health scripts: %w", err)
	}
	for _, id := range reg.IDs() {
		dir := filepath.Join(cfg.ScriptDir, id)
		if st, err := os.Stat(dir); err != nil || !st.IsDir() {
			continue
		}
		if err := mgr.LoadScope(id, dir, cfg.InstructionLimit); err != nil {
			mgr.Close()
			return nil, nil, fmt.Errorf("loading %s health scripts: %w", id, err)
		}
	}
	s.scripts = mgr
	return s, mgr.Close, nil
}

// For returns the strategy for bodies built from templateID.
func (s *Strategies) For(templateID string) wound.HealthStrategy {
	if s.scripts == nil {
		return s.table
	}
	return health.Fallback{Primary: scripting.NewStrategy(s.scripts, templateID), Secondary: s.table}
}

// BodyFactory builds bodies from registered templates.
type BodyFactory struct {
	env        *wound.Env
	registry   *body.Registry
	strategies *Strategies
	maxOffline time.Duration
}

// NewBodyFactory returns a BodyFactory.
func NewBodyFactory(cfg config.HealthConfig, env *wound.Env, reg *body.Registry, strategies *Strategies) *BodyFactory {
	return &BodyFactory{env: env, registry: reg, strategies: strategies, maxOffline: cfg.MaxOffline}
}

// New builds body id from templateID.
func (f *BodyFactory) New(id, templateID string) (*body.Body, error) {
	tmpl, ok := f.registry.Get(templateID)
	if !ok {
		return nil, fmt.Errorf("body %s: unknown template %q", id, templateID)
	}
	return body.New(body.Options{
		ID:         id,
		Template:   tmpl,
		Env:        f.env,
		Strategy:   f.strategies.For(templateID),
		MaxOffline: f.maxOffline,
	}), nil
}

// Env returns the shared wound environment.
func (f *BodyFactory) Env() *wound.Env { return f.env }
