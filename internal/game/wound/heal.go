package wound

import (
	"math"
	"time"

	"go.uber.org/zap"
)

// maxOfflineIterations bounds the catch-up loop. Every iteration crosses a
// severity or stage boundary, of which there are far fewer.
const maxOfflineIterations = 64

// suspension returns the reason healing cannot progress right now, or "".
func (c *core) suspension(combat, bleeding bool) string {
	st := c.owner.State()
	switch {
	case combat && st.InCombat:
		return "in combat"
	case c.lodged != nil:
		return "lodged object"
	case st.NeedsBreath && !st.Breathing:
		return "not breathing"
	case bleeding:
		return "bleeding"
	}
	return ""
}

func (c *core) skip(reason string) {
	c.env.Logger.Debug("healing skipped",
		zap.String("wound", c.id),
		zap.String("variant", c.self.Variant().String()),
		zap.String("reason", reason),
	)
}

// multiplier combines tend quality, sleep, needs deficits and the external
// rate into one non-negative scale.
func (c *core) multiplier(tend *[MajorPass + 1]float64, rate float64) float64 {
	t := c.env.Tables
	st := c.owner.State()
	m := tend[c.tended]
	if st.Asleep {
		m *= t.SleepMultiplier
	}
	needs := 1 - t.HungerPenalty*clamp01(st.Hunger) - t.ThirstPenalty*clamp01(st.Thirst)
	return math.Max(0, m*needs*rate)
}

// healDifficulty is the mend difficulty, one stage easier once tended.
func (c *core) healDifficulty(d Difficulty) Difficulty {
	if c.tended != OutcomeNone {
		return d.Easier(1)
	}
	return d
}

// odds is the outcome distribution of one healing check at d.
func (c *core) odds(d Difficulty, bonus float64) Distribution {
	if dist, ok := c.env.Checker.(Distributor); ok {
		return dist.Distribution(c.owner, d, bonus)
	}
	if d == DifficultyImpossible {
		return Certain(MajorFail)
	}
	return Certain(Pass)
}

// gain is what one healing check at d yields, f(outcome) on a pass and 0
// otherwise. Online it rolls; offline it is the expectation over odds, so
// a run of online ticks averages to the offline rate.
func (c *core) gain(d Difficulty, bonus float64, offline bool, f func(o Outcome) float64) float64 {
	if offline {
		return c.odds(d, bonus).Expect(f)
	}
	o := c.env.Checker.Check(c.owner, d, bonus)
	if !o.IsPass() {
		return 0
	}
	return f(o)
}

// quantum is the healing achieved by one check for kind.
func (c *core) quantum(kind HealKind, d Difficulty, bonus, mult float64, offline bool) float64 {
	return c.gain(d, bonus, offline, func(o Outcome) float64 {
		return math.Max(0, c.owner.HealthStrategy().HealingQuantum(c.self, o, kind)*mult)
	})
}

// rates is the per-tick healing of each dimension.
type rates struct {
	damage, pain, stun float64
}

func (c *core) sampleRates(p linearPlan, bonus, mult float64, offline bool) rates {
	var r rates
	d := c.healDifficulty(p.diff())
	if p.stun && c.currentStun > 0 {
		r.stun = c.quantum(HealStun, d, bonus, mult, offline)
	}
	if p.pain && c.currentPain > 0 {
		r.pain = c.quantum(HealPain, d, bonus, mult, offline)
	}
	if !p.noDamage && c.currentDamage > 0 {
		r.damage = c.quantum(HealDamage, d, bonus, mult, offline)
	}
	return r
}

// apply advances every dimension by ticks at r. Healing stops pain at
// floor(damage) but never raises it.
func (c *core) apply(r rates, ticks float64, floor func(damage float64) float64) bool {
	before := c.currentDamage + c.currentPain + c.currentStun
	c.currentStun = math.Max(0, c.currentStun-r.stun*ticks)
	c.currentDamage = math.Max(0, c.currentDamage-r.damage*ticks)
	lo := 0.0
	if floor != nil {
		lo = math.Min(c.currentPain, floor(c.currentDamage))
	}
	c.currentPain = math.Max(lo, c.currentPain-r.pain*ticks)
	return c.currentDamage+c.currentPain+c.currentStun < before
}

// nextDamageBoundary returns the highest severity floor strictly below the
// current damage, or 0.
func (c *core) nextDamageBoundary() float64 {
	for s := c.self.Severity(); s > SeverityNone; s-- {
		if f := c.owner.SeverityFloor(c.part, s, true); f < c.currentDamage && f > 0 {
			return f
		}
	}
	return 0
}

// linearPlan describes how a variant heals linearly between damage
// boundaries.
type linearPlan struct {
	combat    bool
	bleeding  func() bool
	tend      *[MajorPass + 1]float64
	diff      func() Difficulty
	pain      bool
	stun      bool
	noDamage  bool
	painFloor func(damage float64) float64
	afterStep func()
}

// onlineLinear is one healing tick for a linear plan.
func (c *core) onlineLinear(p linearPlan, rate, bonus float64) bool {
	if reason := c.suspension(p.combat, p.bleeding != nil && p.bleeding()); reason != "" {
		c.skip(reason)
		return false
	}
	r := c.sampleRates(p, bonus, c.multiplier(p.tend, rate), false)
	progressed := c.apply(r, 1, p.painFloor)
	if p.afterStep != nil {
		p.afterStep()
	}
	if progressed {
		c.changed()
	}
	return progressed
}

// offlineLinear advances a linear plan across elapsed. Each iteration either
// exhausts the remaining time or stops exactly on the next damage boundary,
// so the loop runs at most once per severity tier.
func (c *core) offlineLinear(p linearPlan, elapsed time.Duration, rate, bonus float64) int {
	remaining := ticksIn(c.env.Tables, elapsed)
	iterations := 0
	for remaining > 0 && !c.self.ShouldBeRemoved() && iterations < maxOfflineIterations {
		if reason := c.suspension(p.combat, p.bleeding != nil && p.bleeding()); reason != "" {
			c.skip(reason)
			break
		}
		iterations++
		r := c.sampleRates(p, bonus, c.multiplier(p.tend, rate), true)
		if r.damage <= 0 || c.currentDamage <= 0 {
			c.apply(r, remaining, p.painFloor)
			remaining = 0
		} else {
			target := c.nextDamageBoundary()
			need := (c.currentDamage - target) / r.damage
			if need >= remaining {
				c.apply(r, remaining, p.painFloor)
				remaining = 0
			} else {
				c.apply(r, need, p.painFloor)
				c.currentDamage = target
				remaining -= need
			}
		}
		if p.afterStep != nil {
			p.afterStep()
		}
	}
	if iterations >= maxOfflineIterations {
		c.env.Logger.Warn("offline healing iteration cap reached",
			zap.String("wound", c.id),
			zap.Float64("remaining_ticks", remaining),
		)
	}
	return iterations
}

// offlineInfection advances an attached infection across elapsed when it
// supports closed-form advance. New infections are never rolled offline.
func (c *core) offlineInfection(elapsed time.Duration) {
	inf, ok := c.infection.(OfflineInfection)
	if !ok {
		return
	}
	inf.AdvanceOffline(ticksIn(c.env.Tables, elapsed))
	if inf.IsHealed() {
		c.dropInfection()
	}
}

func (c *core) logOffline(elapsed time.Duration, iterations int) {
	c.env.Logger.Debug("offline healing",
		zap.String("wound", c.id),
		zap.String("variant", c.self.Variant().String()),
		zap.Duration("elapsed", elapsed),
		zap.Int("iterations", iterations),
		zap.Float64("damage", c.currentDamage),
	)
}

func ticksIn(t *Tables, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(d) / float64(t.TickInterval)
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}
