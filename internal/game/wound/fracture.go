package wound

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
)

// FractureWound is a broken bone. It heals through five sequential stages
// whose progress is independent of damage-based severity. Damage clears
// only when ossification completes.
type FractureWound struct {
	core
	stage      Stage
	progress   float64
	relocated  bool
	reinforced bool
}

func (w *FractureWound) Variant() Variant { return VariantBoneFracture }

// Stage returns the current repair stage.
func (w *FractureWound) Stage() Stage { return w.stage }

// StageProgress returns the healing-minutes accrued in the current stage.
func (w *FractureWound) StageProgress() float64 { return w.progress }

func (w *FractureWound) Relocated() bool  { return w.relocated }
func (w *FractureWound) Reinforced() bool { return w.reinforced }

// painCeiling is the most pain the current stage allows.
func (w *FractureWound) painCeiling() float64 {
	return w.originalDamage * w.part.PainModifier * w.env.Tables.Stages[w.stage].PainCeiling
}

func (w *FractureWound) capPain() {
	w.currentPain = math.Min(w.currentPain, w.painCeiling())
}

// SufferAdditionalDamage merges d and sends the bone back to Trauma.
//
// Postcondition: Stage() == StageTrauma; Relocated() and Reinforced() are false.
func (w *FractureWound) SufferAdditionalDamage(d Damage) {
	w.accumulate(d, true, true)
	w.stage = StageTrauma
	w.progress = 0
	w.relocated = false
	w.reinforced = false
	w.capPain()
	w.changed()
}

// complete reports whether ossification has finished.
func (w *FractureWound) complete() bool {
	return w.stage == StageOssification &&
		w.progress >= w.env.Tables.Stages[StageOssification].BaseLength
}

func (w *FractureWound) ShouldBeRemoved() bool {
	return w.complete() && w.infection == nil && w.lodged == nil
}

func (w *FractureWound) Bleed(float64, Exertion, float64) BleedResult { return BleedResult{} }

// stalled reports whether progress is held at the end of Relocation until
// the bone is relocated.
func (w *FractureWound) stalled() bool {
	return w.stage == StageRelocation && !w.relocated
}

// room is the healing-minutes left before the next boundary.
func (w *FractureWound) room() float64 {
	return math.Max(0, w.env.Tables.Stages[w.stage].BaseLength-w.progress)
}

// promote crosses the boundary at the end of the current stage.
func (w *FractureWound) promote() {
	length := w.env.Tables.Stages[w.stage].BaseLength
	if w.stage == StageOssification {
		w.progress = length
		w.currentDamage = 0
		return
	}
	from := w.stage
	w.stage++
	w.progress = 0
	w.capPain()
	w.env.Logger.Debug("fracture stage advanced",
		zap.String("wound", w.id),
		zap.String("from", from.String()),
		zap.String("to", w.stage.String()),
	)
}

// advance adds amount healing-minutes, promoting across as many stages as
// it covers and carrying the remainder forward.
func (w *FractureWound) advance(amount float64) {
	for amount > 0 && !w.complete() {
		room := w.room()
		if amount < room {
			w.progress += amount
			return
		}
		if w.stalled() {
			w.progress = w.env.Tables.Stages[w.stage].BaseLength
			return
		}
		amount -= room
		w.promote()
	}
}

// relocate marks the bone relocated, jumping straight to Reparation when it
// has not got there yet.
func (w *FractureWound) relocate() {
	w.relocated = true
	if w.stage < StageReparation {
		w.stage = StageReparation
		w.progress = 0
		w.capPain()
	}
}

func (w *FractureWound) plan() linearPlan {
	return linearPlan{
		combat:   true,
		tend:     &w.env.Tables.OrganicTend,
		diff:     w.mendDifficulty,
		pain:     true,
		stun:     true,
		noDamage: true,
	}
}

// stageRate is the healing-minutes gained per tick.
func (w *FractureWound) stageRate(p linearPlan, rate, bonus float64, offline bool) float64 {
	if w.complete() || (w.stalled() && w.room() <= 0) {
		return 0
	}
	t := w.env.Tables
	factor := w.gain(w.healDifficulty(p.diff()), bonus, offline, func(o Outcome) float64 { return t.StageFactor[o] })
	if factor <= 0 {
		return 0
	}
	r := t.TickMinutes() * factor * w.multiplier(p.tend, rate)
	if w.reinforced {
		r *= t.ReinforcedMultiplier
	}
	return r
}

func (w *FractureWound) HealingTick(rate, bonus float64) bool {
	p := w.plan()
	if reason := w.suspension(p.combat, false); reason != "" {
		w.skip(reason)
		return false
	}
	stage, progress := w.stage, w.progress
	w.advance(w.stageRate(p, rate, bonus, false))
	healed := w.apply(w.sampleRates(p, bonus, w.multiplier(p.tend, rate), false), 1, nil)
	w.capPain()
	progressed := healed || w.stage != stage || w.progress != progress
	if progressed {
		w.changed()
	}
	return progressed
}

func (w *FractureWound) infectionEligible() bool {
	t := w.env.Tables
	return w.stage <= t.FractureInfectionStages && w.Severity() >= t.FractureInfectionFloor
}

func (w *FractureWound) InfectionTick() {
	w.infectionTick(w.infectionEligible(), false, nil)
}

// DoOfflineHealing advances the stage machine across elapsed. Each iteration
// either exhausts the remaining ticks or stops exactly on the next stage
// boundary.
func (w *FractureWound) DoOfflineHealing(elapsed time.Duration, rate, bonus float64) {
	p := w.plan()
	remaining := ticksIn(w.env.Tables, elapsed)
	iterations := 0
	for remaining > 0 && !w.ShouldBeRemoved() && iterations < maxOfflineIterations {
		if reason := w.suspension(p.combat, false); reason != "" {
			w.skip(reason)
			break
		}
		iterations++
		r := w.sampleRates(p, bonus, w.multiplier(p.tend, rate), true)
		s := w.stageRate(p, rate, bonus, true)
		room := w.room()
		switch {
		case s <= 0:
			w.apply(r, remaining, nil)
			remaining = 0
		case s*remaining < room:
			w.progress += s * remaining
			w.apply(r, remaining, nil)
			remaining = 0
		case w.stalled():
			w.progress = w.env.Tables.Stages[w.stage].BaseLength
			w.apply(r, remaining, nil)
			remaining = 0
		default:
			need := room / s
			w.apply(r, need, nil)
			w.promote()
			remaining -= need
		}
		w.capPain()
	}
	if iterations >= maxOfflineIterations {
		w.env.Logger.Warn("offline healing iteration cap reached",
			zap.String("wound", w.id),
			zap.Float64("remaining_ticks", remaining),
		)
	}
	w.offlineInfection(elapsed)
	w.logOffline(elapsed, iterations)
	w.changed()
}

func (w *FractureWound) CanBeTreated(t Treatment) Difficulty {
	if w.blocked(t) {
		return DifficultyImpossible
	}
	switch t {
	case TreatRelocation:
		if w.relocated || w.stage > StageRelocation {
			return DifficultyImpossible
		}
		return w.mendDifficulty()
	case TreatSet:
		if !w.relocated || w.tended == MajorPass {
			return DifficultyImpossible
		}
		return w.mendDifficulty().Easier(1)
	case TreatSurgicalSet:
		if w.reinforced || w.complete() {
			return DifficultyImpossible
		}
		return w.mendDifficulty().Harder(2)
	case TreatAntiseptic:
		if w.owner.Antiseptic(w.part) {
			return DifficultyImpossible
		}
		return w.mendDifficulty().Easier(1)
	case TreatRemove:
		if w.lodged == nil {
			return DifficultyImpossible
		}
		return w.mendDifficulty().Harder(1)
	case TreatMend, TreatTrauma, TreatClose, TreatClean, TreatTend, TreatRepair:
		return DifficultyImpossible
	default:
		panic(fmt.Sprintf("wound.FractureWound.CanBeTreated: unhandled treatment %s", t))
	}
}

func (w *FractureWound) Treat(treater Actor, t Treatment, item Item, o Outcome, silent bool) TreatResult {
	res, ok := w.begin(t, item, o)
	if !ok {
		return res
	}
	if !o.IsPass() {
		w.failed(&res, t == TreatRelocation || t == TreatSurgicalSet || t == TreatRemove)
		w.capPain()
		return w.finish(treater, res, silent)
	}
	switch t {
	case TreatRelocation:
		w.relocate()
		res.Effect = EffectRelocated
	case TreatSet:
		w.tend(o)
		res.Effect = EffectTended
	case TreatSurgicalSet:
		w.reinforced = true
		if !w.relocated {
			w.relocate()
		}
		if o == MajorPass {
			w.tend(o)
		}
		res.Effect = EffectReinforced
	case TreatAntiseptic:
		w.owner.ApplyAntiseptic(w.part, w.env.Tables.AntisepticDuration[o])
		res.Effect = EffectProtected
	case TreatRemove:
		res.Removed = w.removeLodged()
		res.Effect = EffectRemoved
	default:
		panic(fmt.Sprintf("wound.FractureWound.Treat: unhandled treatment %s", t))
	}
	return w.finish(treater, res, silent)
}
