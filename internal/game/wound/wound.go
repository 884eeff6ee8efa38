package wound

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// ErrNoBodypart is returned when a wound is constructed without a bodypart.
var ErrNoBodypart = errors.New("wound: bodypart is required")

// ErrUnknownVariant is returned for an unrecognised variant tag.
var ErrUnknownVariant = errors.New("wound: unknown variant")

// Variant is the closed set of wound implementations.
type Variant int

const (
	VariantSimple Variant = iota
	VariantSimpleOrganic
	VariantRobot
	VariantBoneFracture
	VariantHealingSimple
)

// String returns the persisted type tag of the variant.
func (v Variant) String() string {
	switch v {
	case VariantSimple:
		return "simple"
	case VariantSimpleOrganic:
		return "simple_organic"
	case VariantRobot:
		return "robot"
	case VariantBoneFracture:
		return "bone_fracture"
	case VariantHealingSimple:
		return "healing_simple"
	default:
		return fmt.Sprintf("variant(%d)", int(v))
	}
}

// ParseVariant maps a persisted type tag back to a Variant.
func ParseVariant(s string) (Variant, error) {
	for v := VariantSimple; v <= VariantHealingSimple; v++ {
		if v.String() == s {
			return v, nil
		}
	}
	return VariantSimple, fmt.Errorf("%w: %q", ErrUnknownVariant, s)
}

// Damage is one application of harm to a bodypart.
type Damage struct {
	Type     DamageType
	Amount   float64
	Pain     float64
	Stun     float64
	Bodypart *Bodypart
	ActorID  string
	ToolID   string
	Lodged   LodgedObject
}

// BleedResult is what one bleed tick produced.
type BleedResult struct {
	// Leaked is the volume lost this tick.
	Leaked float64
	// Absorbed is the portion of Leaked soaked up by worn items.
	Absorbed float64
	// Visible is false when worn items absorbed the whole leak.
	Visible bool
	// Reopened is set when exertion pushed the wound one stage back
	// toward bleeding.
	Reopened bool
}

// Pooled returns the leaked volume that reached the ground.
func (r BleedResult) Pooled() float64 { return r.Leaked - r.Absorbed }

// Wound is the contract shared by all five variants. The set of
// implementations is closed: only types in this package satisfy it.
type Wound interface {
	ID() string
	Variant() Variant
	Owner() Owner
	Bodypart() *Bodypart
	DamageType() DamageType
	Internal() bool

	OriginalDamage() float64
	CurrentDamage() float64
	// CurrentPain is the wound's own pain plus any infection pain. The two
	// addends are stored apart and only combined here.
	CurrentPain() float64
	CurrentStun() float64
	Severity() Severity
	BleedStatus() BleedStatus

	Infection() Infection
	Lodged() LodgedObject
	ActorOrigin() string
	ToolOrigin() string
	InflictedBy(actorID string) bool
	TreatmentAttempts() uint32
	TendedOutcome() Outcome

	SufferAdditionalDamage(d Damage)
	ShouldBeRemoved() bool
	Describe(kind Examination, outcome Outcome) string
	CanBeTreated(t Treatment) Difficulty
	Treat(treater Actor, t Treatment, item Item, outcome Outcome, silent bool) TreatResult
	Bleed(currentBlood float64, exertion Exertion, totalBlood float64) BleedResult
	HealingTick(rate, bonus float64) bool
	InfectionTick()
	DoOfflineHealing(elapsed time.Duration, rate, bonus float64)
	// Delete cascades to the lodged object and the infection.
	Delete()

	state() *core
}

// core is the state every variant carries.
type core struct {
	self  Wound
	env   *Env
	owner Owner

	id         string
	part       *Bodypart
	damageType DamageType

	originalDamage float64
	currentDamage  float64
	currentPain    float64
	currentStun    float64

	infection   Infection
	lodged      LodgedObject
	actorOrigin string
	toolOrigin  string
	attempts    uint32
	tended      Outcome
}

// New creates a fresh wound of variant v from d.
//
// Precondition: env and owner must be non-nil.
// Postcondition: Returns ErrNoBodypart if d.Bodypart is nil; otherwise
// CurrentDamage() == min(d.Amount * DamageModifier, Capacity).
func New(env *Env, owner Owner, v Variant, d Damage) (Wound, error) {
	if d.Bodypart == nil {
		return nil, ErrNoBodypart
	}
	c := core{
		env:         env,
		owner:       owner,
		id:          uuid.NewString(),
		part:        d.Bodypart,
		damageType:  d.Type,
		lodged:      d.Lodged,
		actorOrigin: d.ActorID,
		toolOrigin:  d.ToolID,
	}
	c.currentDamage = c.cap(math.Max(0, d.Amount) * d.Bodypart.DamageModifier)
	c.originalDamage = c.currentDamage

	var w Wound
	switch v {
	case VariantSimple:
		s := &SimpleWound{core: c}
		w = s
	case VariantSimpleOrganic:
		o := &OrganicWound{core: c}
		o.currentPain = math.Max(0, d.Pain) * d.Bodypart.PainModifier
		o.currentStun = math.Max(0, d.Stun) * d.Bodypart.StunModifier
		w = o
	case VariantRobot:
		r := &RobotWound{core: c}
		r.currentStun = math.Max(0, d.Stun) * d.Bodypart.StunModifier
		w = r
	case VariantBoneFracture:
		f := &FractureWound{core: c}
		f.currentPain = math.Max(0, d.Pain) * d.Bodypart.PainModifier
		f.currentStun = math.Max(0, d.Stun) * d.Bodypart.StunModifier
		w = f
	case VariantHealingSimple:
		h := &HealingWound{core: c}
		h.currentStun = math.Max(0, d.Stun) * d.Bodypart.StunModifier
		w = h
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownVariant, int(v))
	}
	w.state().self = w

	// Bleed onset and pain capping depend on severity, which the owner can
	// only classify once self is set.
	switch x := w.(type) {
	case *OrganicWound:
		x.onset()
	case *RobotWound:
		x.onset()
	case *FractureWound:
		x.capPain()
	}
	return w, nil
}

func (c *core) state() *core { return c }

func (c *core) ID() string             { return c.id }
func (c *core) Owner() Owner           { return c.owner }
func (c *core) Bodypart() *Bodypart    { return c.part }
func (c *core) DamageType() DamageType { return c.damageType }
func (c *core) Internal() bool         { return c.part.Organ }

func (c *core) OriginalDamage() float64 { return c.originalDamage }
func (c *core) CurrentDamage() float64  { return c.currentDamage }
func (c *core) CurrentStun() float64    { return c.currentStun }

func (c *core) CurrentPain() float64 {
	p := c.currentPain
	if c.infection != nil {
		p += c.infection.Pain()
	}
	return p
}

func (c *core) Severity() Severity { return c.owner.SeverityFor(c.self) }

// BleedStatus is NeverBled for variants without a bleed machine.
func (c *core) BleedStatus() BleedStatus { return NeverBled }

func (c *core) Infection() Infection      { return c.infection }
func (c *core) Lodged() LodgedObject      { return c.lodged }
func (c *core) ActorOrigin() string       { return c.actorOrigin }
func (c *core) ToolOrigin() string        { return c.toolOrigin }
func (c *core) TreatmentAttempts() uint32 { return c.attempts }
func (c *core) TendedOutcome() Outcome    { return c.tended }

// InflictedBy reports whether actorID dealt this wound, for friendly-wound
// flagging.
func (c *core) InflictedBy(actorID string) bool {
	return actorID != "" && c.actorOrigin == actorID
}

func (c *core) Delete() {
	if c.lodged != nil {
		c.lodged.Delete()
		c.lodged = nil
	}
	c.dropInfection()
}

func (c *core) dropInfection() {
	if c.infection != nil {
		c.infection.Delete()
		c.infection = nil
	}
}

func (c *core) cap(damage float64) float64 {
	return math.Min(math.Max(0, damage), c.part.Capacity)
}

// accumulate merges d into the shared numeric state and resets treatment
// progress. Pain and stun only accrue on variants that track them.
func (c *core) accumulate(d Damage, pain, stun bool) {
	add := math.Max(0, d.Amount) * c.part.DamageModifier
	c.currentDamage = c.cap(c.currentDamage + add)
	c.originalDamage = c.cap(c.originalDamage + add)
	if pain {
		c.currentPain += math.Max(0, d.Pain) * c.part.PainModifier
	}
	if stun {
		c.currentStun += math.Max(0, d.Stun) * c.part.StunModifier
	}
	if c.lodged == nil && d.Lodged != nil {
		c.lodged = d.Lodged
	}
	if c.actorOrigin == "" {
		c.actorOrigin = d.ActorID
	}
	if c.toolOrigin == "" {
		c.toolOrigin = d.ToolID
	}
	c.attempts = 0
	c.tended = OutcomeNone
}

func (c *core) changed() {
	c.owner.WoundChanged(c.self)
}

// removable is the shared part of every removal predicate.
func (c *core) removable() bool {
	return c.currentDamage <= 0 && c.infection == nil && c.lodged == nil
}
