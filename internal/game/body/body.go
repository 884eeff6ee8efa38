// Package body implements the owning body: the bodyparts, the severity
// classifier, the wound list and the per-heartbeat ordering of healing,
// bleeding and infection.
//
// A Body is not safe for concurrent use. The heartbeat drives every body
// from one goroutine.
package body

import (
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/mudhealth/internal/game/wound"
)

// ErrUnknownPart is returned for damage aimed at a part the body lacks.
var ErrUnknownPart = errors.New("body: unknown bodypart")

// Resistance is a merit that eases the virulence of matching infections.
type Resistance struct {
	// InfectionType matches one type; empty matches every type.
	InfectionType string `yaml:"infection_type"`
	// Rungs is how many difficulty rungs easier the virulence becomes.
	Rungs int `yaml:"rungs"`
}

// Options configures a new Body.
type Options struct {
	ID       string
	Template *Template
	Env      *wound.Env
	Strategy wound.HealthStrategy
	// Thresholds defaults to DefaultThresholds.
	Thresholds *Thresholds
	// Clock defaults to time.Now.
	Clock func() time.Time
	// MaxOffline caps the elapsed time handed to catch-up. Zero means no cap.
	MaxOffline time.Duration
}

// Body is a concrete wound.Owner.
type Body struct {
	id         string
	tmpl       *Template
	env        *wound.Env
	strategy   wound.HealthStrategy
	thresholds Thresholds
	clock      func() time.Time
	maxOffline time.Duration
	logger     *zap.Logger

	parts  map[string]*wound.Bodypart
	order  []*wound.Bodypart
	wounds []wound.Wound

	blood      float64
	totalBlood float64
	pooled     float64
	exertion   wound.Exertion
	state      wound.State

	bound       map[string]bool
	absorbers   map[string][]wound.Absorber
	antiseptic  map[string]time.Time
	resistances []Resistance
	infectMult  float64

	dirty   map[string]wound.Wound
	removed []string
}

// New builds a Body from opts.
//
// Precondition: opts.Template, opts.Env and opts.Strategy must be non-nil
// and opts.ID non-empty.
// Postcondition: Returns a body at full blood volume with no wounds.
func New(opts Options) *Body {
	if opts.ID == "" || opts.Template == nil || opts.Env == nil || opts.Strategy == nil {
		panic("body.New: ID, Template, Env and Strategy are required")
	}
	b := &Body{
		id:          opts.ID,
		tmpl:        opts.Template,
		env:         opts.Env,
		strategy:    opts.Strategy,
		thresholds:  DefaultThresholds(),
		clock:       opts.Clock,
		maxOffline:  opts.MaxOffline,
		logger:      opts.Env.Logger.With(zap.String("body", opts.ID)),
		parts:       make(map[string]*wound.Bodypart, len(opts.Template.Parts)),
		blood:       opts.Template.BloodVolume,
		totalBlood:  opts.Template.BloodVolume,
		bound:       make(map[string]bool),
		absorbers:   make(map[string][]wound.Absorber),
		antiseptic:  make(map[string]time.Time),
		infectMult:  1,
		dirty:       make(map[string]wound.Wound),
		state:       wound.State{NeedsBreath: opts.Template.NeedsBreath, Breathing: true},
		resistances: nil,
	}
	if opts.Thresholds != nil {
		b.thresholds = *opts.Thresholds
	}
	if b.clock == nil {
		b.clock = time.Now
	}
	for i := range opts.Template.Parts {
		p := opts.Template.Parts[i]
		b.parts[p.ID] = &p
		b.order = append(b.order, &p)
	}
	return b
}

func (b *Body) ID() string { return b.id }

// Template returns the body's template.
func (b *Body) Template() *Template { return b.tmpl }

// Part returns the named bodypart.
func (b *Body) Part(id string) (*wound.Bodypart, bool) {
	p, ok := b.parts[id]
	return p, ok
}

// Parts returns the bodyparts in template order.
func (b *Body) Parts() []*wound.Bodypart { return b.order }

// Wounds returns the current wound list. The slice must not be modified.
func (b *Body) Wounds() []wound.Wound { return b.wounds }

// WoundsOn returns the wounds on part id.
func (b *Body) WoundsOn(id string) []wound.Wound {
	var out []wound.Wound
	for _, w := range b.wounds {
		if w.Bodypart().ID == id {
			out = append(out, w)
		}
	}
	return out
}

// Wound returns the wound with id.
func (b *Body) Wound(id string) (wound.Wound, bool) {
	for _, w := range b.wounds {
		if w.ID() == id {
			return w, true
		}
	}
	return nil, false
}

// Blood returns the current and total blood volume.
func (b *Body) Blood() (current, total float64) { return b.blood, b.totalBlood }

// SetBlood restores the current blood volume, clamped to [0, total].
func (b *Body) SetBlood(v float64) { b.blood = math.Min(b.totalBlood, math.Max(0, v)) }

// Pooled returns the fluid lost to the ground so far.
func (b *Body) Pooled() float64 { return b.pooled }

// TotalPain sums the pain of every wound.
func (b *Body) TotalPain() float64 {
	var p float64
	for _, w := range b.wounds {
		p += w.CurrentPain()
	}
	return p
}

// TotalStun sums the stun of every wound.
func (b *Body) TotalStun() float64 {
	var s float64
	for _, w := range b.wounds {
		s += w.CurrentStun()
	}
	return s
}

// Inflict applies d to the body. Damage of the same type and variant on a
// part that already carries such a wound merges into it; otherwise a fresh
// wound of variant v is created.
//
// Postcondition: Returns the merged or created wound, or ErrUnknownPart.
func (b *Body) Inflict(v wound.Variant, d wound.Damage) (wound.Wound, error) {
	if d.Bodypart == nil {
		return nil, wound.ErrNoBodypart
	}
	part, ok := b.parts[d.Bodypart.ID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPart, d.Bodypart.ID)
	}
	d.Bodypart = part
	for _, w := range b.wounds {
		if w.Bodypart() == part && w.DamageType() == d.Type && w.Variant() == v {
			w.SufferAdditionalDamage(d)
			b.logger.Debug("wound worsened",
				zap.String("wound", w.ID()),
				zap.String("bodypart", part.ID),
				zap.Float64("damage", w.CurrentDamage()),
			)
			return w, nil
		}
	}
	w, err := wound.New(b.env, b, v, d)
	if err != nil {
		return nil, fmt.Errorf("inflicting wound on %s: %w", b.id, err)
	}
	b.wounds = append(b.wounds, w)
	b.dirty[w.ID()] = w
	b.logger.Debug("wound inflicted",
		zap.String("wound", w.ID()),
		zap.String("variant", v.String()),
		zap.String("bodypart", part.ID),
		zap.String("severity", w.Severity().String()),
	)
	return w, nil
}

// InflictOn is Inflict on the named part with the template's default variant.
func (b *Body) InflictOn(partID string, d wound.Damage) (wound.Wound, error) {
	part, ok := b.parts[partID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPart, partID)
	}
	d.Bodypart = part
	return b.Inflict(b.tmpl.DefaultVariant(), d)
}

// Adopt appends a restored wound to the list.
func (b *Body) Adopt(w wound.Wound) {
	b.wounds = append(b.wounds, w)
}

// TickReport summarises one heartbeat.
type TickReport struct {
	Healed   int
	Leaked   float64
	Pooled   float64
	Reopened int
	Removed  int
}

// Tick runs one health heartbeat: for each wound in order a healing tick,
// a bleed and an infection tick; then the removal sweep.
func (b *Body) Tick(rate, bonus float64) TickReport {
	var rep TickReport
	b.expireAntiseptic()
	for _, w := range append([]wound.Wound(nil), b.wounds...) {
		if w.HealingTick(rate, bonus) {
			rep.Healed++
		}
		res := w.Bleed(b.blood, b.exertion, b.totalBlood)
		b.loseBlood(res)
		rep.Leaked += res.Leaked
		rep.Pooled += res.Pooled()
		if res.Reopened {
			rep.Reopened++
		}
		w.InfectionTick()
	}
	rep.Removed = b.sweep()
	return rep
}

func (b *Body) loseBlood(res wound.BleedResult) {
	if res.Leaked <= 0 {
		return
	}
	b.blood = math.Max(0, b.blood-res.Leaked)
	b.pooled += res.Pooled()
}

// CatchUp advances every wound across elapsed on reconnect. Elapsed is capped
// at the configured maximum.
func (b *Body) CatchUp(elapsed time.Duration, rate, bonus float64) int {
	if elapsed <= 0 {
		return 0
	}
	if b.maxOffline > 0 && elapsed > b.maxOffline {
		b.logger.Info("offline elapsed capped",
			zap.Duration("elapsed", elapsed),
			zap.Duration("cap", b.maxOffline),
		)
		elapsed = b.maxOffline
	}
	b.expireAntiseptic()
	for _, w := range append([]wound.Wound(nil), b.wounds...) {
		w.DoOfflineHealing(elapsed, rate, bonus)
	}
	return b.sweep()
}

// sweep deletes every wound whose removal predicate holds.
func (b *Body) sweep() int {
	kept := b.wounds[:0]
	removed := 0
	for _, w := range b.wounds {
		if !w.ShouldBeRemoved() {
			kept = append(kept, w)
			continue
		}
		w.Delete()
		delete(b.dirty, w.ID())
		b.removed = append(b.removed, w.ID())
		removed++
		b.logger.Debug("wound removed", zap.String("wound", w.ID()))
	}
	for i := len(kept); i < len(b.wounds); i++ {
		b.wounds[i] = nil
	}
	b.wounds = kept
	return removed
}

// SetExertion sets the current physical effort.
func (b *Body) SetExertion(e wound.Exertion) { b.exertion = e }

// Exertion returns the current physical effort.
func (b *Body) Exertion() wound.Exertion { return b.exertion }

// SetCombat marks the body in or out of combat.
func (b *Body) SetCombat(in bool) { b.state.InCombat = in }

// SetAsleep marks the body asleep or awake.
func (b *Body) SetAsleep(asleep bool) { b.state.Asleep = asleep }

// SetBreathing marks whether the body is currently breathing.
func (b *Body) SetBreathing(breathing bool) { b.state.Breathing = breathing }

// SetNeeds sets the hunger and thirst deficits in [0, 1].
func (b *Body) SetNeeds(hunger, thirst float64) {
	clamp := func(v float64) float64 { return math.Min(1, math.Max(0, v)) }
	b.state.Hunger, b.state.Thirst = clamp(hunger), clamp(thirst)
}

// SetTerrain sets the infection environment.
func (b *Body) SetTerrain(t wound.Terrain) { b.state.Terrain = t }

// SetResistances replaces the infection resistance merits.
func (b *Body) SetResistances(rs []Resistance) { b.resistances = rs }

// SetInfectionChanceMultiplier sets the external infection odds scale.
func (b *Body) SetInfectionChanceMultiplier(m float64) { b.infectMult = math.Max(0, m) }

// Bind marks part as bound, optionally with an absorbing dressing.
func (b *Body) Bind(partID string, dressing wound.Absorber) error {
	if _, ok := b.parts[partID]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPart, partID)
	}
	b.bound[partID] = true
	if dressing != nil {
		b.absorbers[partID] = append(b.absorbers[partID], dressing)
	}
	return nil
}

// Unbind removes any binding and dressings from part.
func (b *Body) Unbind(partID string) {
	delete(b.bound, partID)
	delete(b.absorbers, partID)
}

// Wear adds a worn absorber covering part without binding it.
func (b *Body) Wear(partID string, a wound.Absorber) error {
	if _, ok := b.parts[partID]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPart, partID)
	}
	b.absorbers[partID] = append(b.absorbers[partID], a)
	return nil
}

func (b *Body) expireAntiseptic() {
	now := b.clock()
	for id, until := range b.antiseptic {
		if !now.Before(until) {
			delete(b.antiseptic, id)
		}
	}
}

// Owner implementation.

func (b *Body) SeverityFor(w wound.Wound) wound.Severity {
	return b.thresholds.Classify(w.CurrentDamage(), w.Bodypart().Capacity)
}

func (b *Body) SeverityFloor(part *wound.Bodypart, s wound.Severity, exact bool) float64 {
	return b.thresholds.Floor(part.Capacity, s, exact)
}

func (b *Body) HealthStrategy() wound.HealthStrategy { return b.strategy }

func (b *Body) State() wound.State { return b.state }

func (b *Body) Antiseptic(part *wound.Bodypart) bool {
	until, ok := b.antiseptic[part.ID]
	return ok && b.clock().Before(until)
}

func (b *Body) ApplyAntiseptic(part *wound.Bodypart, d time.Duration) {
	if d <= 0 {
		return
	}
	until := b.clock().Add(d)
	if cur, ok := b.antiseptic[part.ID]; !ok || until.After(cur) {
		b.antiseptic[part.ID] = until
	}
}

func (b *Body) IsBound(part *wound.Bodypart) bool { return b.bound[part.ID] }

func (b *Body) Absorbers(part *wound.Bodypart) []wound.Absorber { return b.absorbers[part.ID] }

func (b *Body) InfectionResistances(infType string, base wound.Difficulty) []wound.Difficulty {
	var out []wound.Difficulty
	for _, r := range b.resistances {
		if r.InfectionType == "" || r.InfectionType == infType {
			out = append(out, base.Easier(r.Rungs))
		}
	}
	return out
}

func (b *Body) InfectionChanceMultiplier() float64 { return b.infectMult }

func (b *Body) WoundChanged(w wound.Wound) { b.dirty[w.ID()] = w }
