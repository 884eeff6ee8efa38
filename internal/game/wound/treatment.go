package wound

import (
	"math"

	"go.uber.org/zap"
)

// Effect is the narrative-free summary of what a treatment did.
type Effect int

const (
	EffectNone Effect = iota
	EffectFailed
	EffectHealed
	EffectBleedControlled
	EffectClosed
	EffectCleaned
	EffectProtected
	EffectTended
	EffectRelocated
	EffectReinforced
	EffectRemoved
	EffectMishap
)

var effectNames = [...]string{
	"none", "failed", "healed", "bleed controlled", "closed", "cleaned",
	"protected", "tended", "relocated", "reinforced", "removed", "mishap",
}

func (e Effect) String() string {
	if e < 0 || int(e) >= len(effectNames) {
		return "unknown"
	}
	return effectNames[e]
}

// TreatResult reports what one call to Treat did.
type TreatResult struct {
	Treatment  Treatment
	Outcome    Outcome
	Difficulty Difficulty
	Effect     Effect
	// Removed is the lodged object handed back by a successful Remove.
	Removed LodgedObject
	// Mishap is the extra damage a MajorFail inflicted.
	Mishap float64
}

// mendDifficulty is the severity ladder escalated by prior failed attempts.
func (c *core) mendDifficulty() Difficulty {
	return baseDifficulty(c.self.Severity()).Harder(attemptEscalation(c.attempts))
}

// blocked reports whether a lodged object prevents t.
func (c *core) blocked(t Treatment) bool {
	return c.lodged != nil && t != TreatRemove && t != TreatMend
}

// traumaDifficulty adds the damage-type escalation for trauma control.
func (c *core) traumaDifficulty() Difficulty {
	return c.mendDifficulty().Harder(c.env.Tables.Profile(c.damageType).TraumaEscalation)
}

// begin starts a treatment: it resolves the difficulty and consumes item.
// ok is false when the treatment does not apply.
func (c *core) begin(t Treatment, item Item, o Outcome) (TreatResult, bool) {
	d := c.self.CanBeTreated(t)
	res := TreatResult{Treatment: t, Outcome: o, Difficulty: d}
	if !d.Possible() {
		return res, false
	}
	if cons, ok := item.(Consumable); ok && cons != nil {
		cons.Consume()
	}
	return res, true
}

// failed records a failed attempt and, for risky treatments, a mishap on
// MajorFail.
func (c *core) failed(res *TreatResult, risky bool) {
	c.attempts++
	res.Effect = EffectFailed
	if risky && res.Outcome == MajorFail {
		res.Mishap = c.mishap()
		if res.Mishap > 0 {
			res.Effect = EffectMishap
		}
	}
}

// mishap rolls the configured mishap damage onto the wound.
func (c *core) mishap() float64 {
	roll, err := c.env.Roller.RollExpr(c.env.Tables.MishapDamage)
	if err != nil {
		c.env.Logger.Warn("mishap damage roll failed", zap.Error(err))
		return 0
	}
	before := c.currentDamage
	c.currentDamage = c.cap(c.currentDamage + float64(roll.Total()))
	dealt := c.currentDamage - before
	if c.tracksPain() {
		c.currentPain += dealt * c.env.Tables.MishapPain * c.part.PainModifier
	}
	return dealt
}

// tracksPain reports whether the variant carries its own pain.
func (c *core) tracksPain() bool {
	switch c.self.(type) {
	case *OrganicWound, *FractureWound:
		return true
	default:
		return false
	}
}

// healTiers applies a mend or repair pass: MinorPass heals down one tier,
// Pass two, MajorPass fully. Pain scales with the damage removed.
func (c *core) healTiers(o Outcome) bool {
	before := c.currentDamage
	if before <= 0 {
		return false
	}
	var after float64
	switch o {
	case MajorPass:
		after = 0
	case Pass, MinorPass:
		tiers := 1
		if o == Pass {
			tiers = 2
		}
		target := c.self.Severity().Step(-tiers)
		if target == SeverityNone {
			after = 0
		} else {
			after = math.Min(before, c.owner.SeverityFloor(c.part, target, false))
		}
	default:
		return false
	}
	c.currentDamage = math.Max(0, after)
	if before > 0 {
		c.currentPain *= c.currentDamage / before
	}
	return c.currentDamage < before
}

// removeLodged detaches the lodged object without deleting it.
func (c *core) removeLodged() LodgedObject {
	obj := c.lodged
	c.lodged = nil
	return obj
}

// tend records the best tend quality so far.
func (c *core) tend(o Outcome) {
	if o > c.tended {
		c.tended = o
	}
}

// finish logs and persists a treatment.
func (c *core) finish(treater Actor, res TreatResult, silent bool) TreatResult {
	if !silent {
		var by string
		if treater != nil {
			by = treater.ID()
		}
		c.env.Logger.Debug("wound treated",
			zap.String("wound", c.id),
			zap.String("treater", by),
			zap.String("treatment", res.Treatment.String()),
			zap.String("outcome", res.Outcome.String()),
			zap.String("difficulty", res.Difficulty.String()),
			zap.String("effect", res.Effect.String()),
		)
	}
	c.changed()
	return res
}
