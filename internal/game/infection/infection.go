// Package infection provides the concrete infection entity attached to
// wounds.
//
// An infection carries an intensity that drifts each tick by a
// virulence-scaled growth rate less the host's natural recovery. It is
// healed once intensity reaches zero.
package infection

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/cory-johannsen/mudhealth/internal/game/wound"
)

// Params tunes the infection model.
type Params struct {
	InitialIntensity float64 `yaml:"initial_intensity"`
	// GrowthPerRung is the per-tick intensity growth for each rung of
	// virulence above Automatic.
	GrowthPerRung float64 `yaml:"growth_per_rung"`
	// Recovery is the per-tick intensity the host fights off.
	Recovery     float64 `yaml:"recovery"`
	PainFactor   float64 `yaml:"pain_factor"`
	MaxIntensity float64 `yaml:"max_intensity"`
}

// DefaultParams returns the compiled-in model. Virulence Hard and below is
// eventually fought off; VeryHard and above grows.
func DefaultParams() Params {
	return Params{
		InitialIntensity: 1,
		GrowthPerRung:    0.003,
		Recovery:         0.02,
		PainFactor:       0.5,
		MaxIntensity:     100,
	}
}

// Validate checks the parameter invariants.
func (p Params) Validate() error {
	switch {
	case p.InitialIntensity <= 0:
		return fmt.Errorf("infection: initial_intensity must be > 0")
	case p.GrowthPerRung < 0 || p.Recovery < 0:
		return fmt.Errorf("infection: growth_per_rung and recovery must be >= 0")
	case p.MaxIntensity < p.InitialIntensity:
		return fmt.Errorf("infection: max_intensity must be >= initial_intensity")
	}
	return nil
}

// Infection is one infection owned by one wound.
type Infection struct {
	kind      string
	virulence wound.Difficulty
	intensity float64
	woundID   string
	part      *wound.Bodypart
	params    Params
	deleted   bool
	logger    *zap.Logger
}

// Type returns the infection type tag.
func (i *Infection) Type() string { return i.kind }

// Virulence returns the virulence the infection was confirmed at.
func (i *Infection) Virulence() wound.Difficulty { return i.virulence }

// Intensity returns the current intensity.
func (i *Infection) Intensity() float64 { return i.intensity }

// Deleted reports whether Delete has been called.
func (i *Infection) Deleted() bool { return i.deleted }

// drift is the net intensity change per tick.
func (i *Infection) drift() float64 {
	return i.params.GrowthPerRung*float64(i.virulence) - i.params.Recovery
}

func (i *Infection) clamp(v float64) float64 {
	return math.Min(i.params.MaxIntensity, math.Max(0, v))
}

// Tick advances the infection one heartbeat.
func (i *Infection) Tick() {
	i.intensity = i.clamp(i.intensity + i.drift())
}

// AdvanceOffline advances the infection across ticks heartbeats at once.
// The drift is constant, so the result matches ticking one by one.
func (i *Infection) AdvanceOffline(ticks float64) {
	if ticks <= 0 {
		return
	}
	i.intensity = i.clamp(i.intensity + i.drift()*ticks)
}

func (i *Infection) IsHealed() bool { return i.intensity <= 0 }

func (i *Infection) Pain() float64 { return i.intensity * i.params.PainFactor }

func (i *Infection) Delete() {
	if i.deleted {
		return
	}
	i.deleted = true
	i.logger.Debug("infection deleted",
		zap.String("wound", i.woundID),
		zap.String("type", i.kind),
	)
}

func (i *Infection) Snapshot() wound.InfectionSnapshot {
	return wound.InfectionSnapshot{
		Type:      i.kind,
		Virulence: i.virulence.String(),
		Intensity: i.intensity,
	}
}

// Factory creates infections with one parameter set.
type Factory struct {
	params Params
	logger *zap.Logger
}

// NewFactory returns a Factory.
//
// Precondition: params must pass Validate; logger must be non-nil.
func NewFactory(params Params, logger *zap.Logger) *Factory {
	if logger == nil {
		panic("infection.NewFactory: logger must be non-nil")
	}
	if err := params.Validate(); err != nil {
		panic("infection.NewFactory: " + err.Error())
	}
	return &Factory{params: params, logger: logger}
}

func (f *Factory) New(spec wound.InfectionSpec) wound.Infection {
	return &Infection{
		kind:      spec.Type,
		virulence: spec.Virulence,
		intensity: f.params.InitialIntensity,
		woundID:   spec.WoundID,
		part:      spec.Bodypart,
		params:    f.params,
		logger:    f.logger,
	}
}

func (f *Factory) Restore(snap wound.InfectionSnapshot, woundID string, part *wound.Bodypart) (wound.Infection, error) {
	v, err := wound.ParseDifficulty(snap.Virulence)
	if err != nil {
		return nil, fmt.Errorf("restoring infection: %w", err)
	}
	return &Infection{
		kind:      snap.Type,
		virulence: v,
		intensity: f.clamp(snap.Intensity),
		woundID:   woundID,
		part:      part,
		params:    f.params,
		logger:    f.logger,
	}, nil
}

func (f *Factory) clamp(v float64) float64 {
	return math.Min(f.params.MaxIntensity, math.Max(0, v))
}
