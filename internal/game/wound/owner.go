package wound

import "time"

// Bodypart is the struck part of an owner. Wounds reference it; they never
// own it.
type Bodypart struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	// Capacity is the hitpoint capacity used for severity classification and
	// as the cap on a wound's damage.
	Capacity       float64 `yaml:"capacity"`
	DamageModifier float64 `yaml:"damage_modifier"`
	PainModifier   float64 `yaml:"pain_modifier"`
	StunModifier   float64 `yaml:"stun_modifier"`
	BleedModifier  float64 `yaml:"bleed_modifier"`
	// Organ marks internal parts. Wounds on organs are internal.
	Organ bool `yaml:"organ"`
}

// Actor is anything that can perform or be the subject of a skill check.
type Actor interface {
	ID() string
}

// Terrain describes the infection environment the owner is in.
type Terrain struct {
	InfectionMultiplier float64
	InfectionType       string
	Virulence           Difficulty
}

// State is a snapshot of the owner conditions that gate healing.
type State struct {
	InCombat    bool
	NeedsBreath bool
	Breathing   bool
	Asleep      bool
	// Hunger and Thirst are deficits in [0, 1]; 0 is fully sated.
	Hunger  float64
	Thirst  float64
	Terrain Terrain
}

// HealthStrategy supplies the per-check healing quantum for a wound.
type HealthStrategy interface {
	HealingQuantum(w Wound, outcome Outcome, kind HealKind) float64
}

// Owner is the body (or severed bodypart item) that owns a wound list.
type Owner interface {
	Actor
	// SeverityFor classifies w from its current damage and bodypart capacity.
	SeverityFor(w Wound) Severity
	// SeverityFloor maps a tier back to a damage value on part. With exact
	// set it returns the lowest damage that still classifies as s; otherwise
	// a representative value inside the tier below s's upper bound.
	SeverityFloor(part *Bodypart, s Severity, exact bool) float64
	HealthStrategy() HealthStrategy
	State() State

	Antiseptic(part *Bodypart) bool
	ApplyAntiseptic(part *Bodypart, d time.Duration)
	IsBound(part *Bodypart) bool
	Absorbers(part *Bodypart) []Absorber
	// InfectionResistances returns the merit-adjusted virulence for every
	// resistance that applies to infType. Empty means none apply.
	InfectionResistances(infType string, base Difficulty) []Difficulty
	InfectionChanceMultiplier() float64

	// WoundChanged is the fire-and-forget persistence hook.
	WoundChanged(w Wound)
}

// Checker is the skill-check oracle.
type Checker interface {
	Check(actor Actor, difficulty Difficulty, bonus float64) Outcome
}

// Distributor is implemented by checkers that can report the probability of
// every outcome of a check. Offline catch-up weighs healing by it instead of
// rolling; checkers without it are assumed to Pass anything that is possible.
type Distributor interface {
	Distribution(actor Actor, difficulty Difficulty, bonus float64) Distribution
}

// Distribution is the probability of each outcome of one check, indexed by
// Outcome. The entries of a well-formed distribution sum to 1.
type Distribution [MajorPass + 1]float64

// Certain returns the distribution that always yields o.
func Certain(o Outcome) Distribution {
	var d Distribution
	d[o] = 1
	return d
}

// Expect returns the sum of P(o)*f(o) over the passing outcomes; failures
// contribute nothing.
func (d Distribution) Expect(f func(o Outcome) float64) float64 {
	var sum float64
	for o := MinorPass; o <= MajorPass; o++ {
		if d[o] > 0 {
			sum += d[o] * f(o)
		}
	}
	return sum
}

// PassChance is the probability of MinorPass or better.
func (d Distribution) PassChance() float64 {
	return d.Expect(func(Outcome) float64 { return 1 })
}

// Infection is an entity owned by at most one wound.
type Infection interface {
	Tick()
	IsHealed() bool
	Delete()
	Pain() float64
}

// OfflineInfection is implemented by infections that can advance across a
// number of heartbeat intervals without being ticked one by one.
type OfflineInfection interface {
	Infection
	AdvanceOffline(ticks float64)
}

// InfectionSpec describes a newly confirmed infection.
type InfectionSpec struct {
	Type      string
	Virulence Difficulty
	WoundID   string
	Bodypart  *Bodypart
}

// InfectionSnapshot is the persisted form of an infection.
type InfectionSnapshot struct {
	Type      string  `json:"type"`
	Virulence string  `json:"virulence"`
	Intensity float64 `json:"intensity"`
}

// Snapshotter is implemented by infections that can be persisted.
type Snapshotter interface {
	Snapshot() InfectionSnapshot
}

// InfectionFactory creates and restores Infection entities.
type InfectionFactory interface {
	New(spec InfectionSpec) Infection
	Restore(snap InfectionSnapshot, woundID string, part *Bodypart) (Infection, error)
}

// LodgedObject is a foreign object embedded in a wound.
type LodgedObject interface {
	ID() string
	Name() string
	Delete()
}

// Absorber is a worn or binding item that can soak up leaked fluid.
type Absorber interface {
	Name() string
	// Absorb takes up to amount and returns how much was absorbed.
	Absorb(amount float64) float64
}

// Item is the tool or consumable used for a treatment. It may be nil.
type Item interface {
	Name() string
}

// Consumable items are used up by one treatment attempt.
type Consumable interface {
	Item
	Consume()
}
