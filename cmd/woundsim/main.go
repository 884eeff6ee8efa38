// Package main provides woundsim, a command that inflicts a single wound on
// a fresh body, applies a list of treatments and reports the wound after a
// number of heartbeats and an optional offline stretch.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/cory-johannsen/mudhealth/internal/config"
	"github.com/cory-johannsen/mudhealth/internal/engine"
	"github.com/cory-johannsen/mudhealth/internal/game/wound"
	"github.com/cory-johannsen/mudhealth/internal/observability"
)

func main() {
	if err := runCLI(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "woundsim:", err)
		os.Exit(1)
	}
}

func runCLI(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("woundsim", flag.ContinueOnError)
	fs.SetOutput(out)
	var (
		content  = fs.String("content", "content/bodies", "body template directory")
		scripts  = fs.String("scripts", "", "Lua health script directory")
		tables   = fs.String("tables", "", "wound tables YAML override")
		template = fs.String("template", "humanoid", "body template")
		part     = fs.String("part", "torso", "bodypart to wound")
		variant  = fs.String("variant", "", "wound variant (template default when empty)")
		dmgType  = fs.String("type", string(wound.DamageSlashing), "damage type")
		amount   = fs.Float64("amount", 30, "damage amount")
		pain     = fs.Float64("pain", -1, "pain inflicted (defaults to amount)")
		stun     = fs.Float64("stun", 0, "stun inflicted")
		lodged   = fs.String("lodged", "", "name of an object left in the wound")
		treat    = fs.String("treat", "", `treatments, e.g. "trauma:pass,tend" (no outcome rolls a check)`)
		ticks    = fs.Int("ticks", 10, "heartbeats to run")
		offline  = fs.Duration("offline", 0, "offline time to catch up after the ticks")
		rate     = fs.Float64("rate", 1, "healing rate multiplier")
		exertion = fs.String("exertion", "rest", "owner exertion")
		combat   = fs.Bool("combat", false, "owner is in combat")
		asleep   = fs.Bool("asleep", false, "owner is asleep")
		seed     = fs.Int64("seed", 1, "dice seed (0 draws from crypto/rand)")
		asJSON   = fs.Bool("json", false, "print the report as JSON")
		verbose  = fs.Bool("v", false, "log dice rolls and checks")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	steps, err := parseSteps(*treat)
	if err != nil {
		return err
	}
	ex, err := wound.ParseExertion(*exertion)
	if err != nil {
		return err
	}
	p := *pain
	if p < 0 {
		p = *amount
	}

	logger := zap.NewNop()
	if *verbose {
		if logger, err = observability.NewLogger(config.LoggingConfig{Level: "debug", Format: "console"}); err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()
	}

	hc, err := healthConfig(*content, *scripts, *tables, *seed)
	if err != nil {
		return err
	}
	factory, cleanup, err := newFactory(hc, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	rep, err := simulate(factory, scenario{
		template: *template,
		part:     *part,
		variant:  *variant,
		damage:   wound.Damage{Type: wound.DamageType(*dmgType), Amount: *amount, Pain: p, Stun: *stun, ActorID: "woundsim"},
		lodged:   *lodged,
		steps:    steps,
		ticks:    *ticks,
		offline:  *offline,
		rate:     *rate,
		combat:   *combat,
		asleep:   *asleep,
		exertion: ex,
	})
	if err != nil {
		return err
	}
	if *asJSON {
		return rep.writeJSON(out)
	}
	rep.writeText(out)
	return nil
}

// healthConfig starts from the daemon defaults and applies the flags.
func healthConfig(content, scripts, tables string, seed int64) (config.HealthConfig, error) {
	cfg, err := config.LoadFromViper(config.Defaults())
	if err != nil {
		return config.HealthConfig{}, err
	}
	hc := cfg.Health
	hc.ContentDir = content
	hc.ScriptDir = scripts
	hc.TablesFile = tables
	hc.Seed = seed
	return hc, nil
}

func newFactory(hc config.HealthConfig, logger *zap.Logger) (*engine.BodyFactory, func(), error) {
	tables, err := engine.NewTables(hc)
	if err != nil {
		return nil, nil, err
	}
	roller := engine.NewRoller(hc, logger)
	env := wound.NewEnv(tables, engine.NewChecker(roller, logger), roller, engine.NewInfectionFactory(logger), logger)
	reg, err := engine.NewRegistry(hc, logger)
	if err != nil {
		return nil, nil, err
	}
	strategies, cleanup, err := engine.NewStrategies(hc, reg, roller, logger)
	if err != nil {
		return nil, nil, err
	}
	return engine.NewBodyFactory(hc, env, reg, strategies), cleanup, nil
}
