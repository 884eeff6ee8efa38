package wound

import (
	"fmt"
	"time"
)

// HealingWound is the recovery husk left once a wound has been treated. It
// heals damage and stun without any combat gating and accepts only Mend.
type HealingWound struct {
	core
}

func (w *HealingWound) Variant() Variant { return VariantHealingSimple }

func (w *HealingWound) SufferAdditionalDamage(d Damage) {
	w.accumulate(d, false, true)
	w.changed()
}

func (w *HealingWound) ShouldBeRemoved() bool { return w.removable() }

func (w *HealingWound) Bleed(float64, Exertion, float64) BleedResult { return BleedResult{} }

// plan uses the recovery tend table, not the organic one. The two tables
// differ on purpose.
func (w *HealingWound) plan() linearPlan {
	return linearPlan{
		tend: &w.env.Tables.RecoveryTend,
		diff: w.mendDifficulty,
		stun: true,
	}
}

func (w *HealingWound) HealingTick(rate, bonus float64) bool {
	return w.onlineLinear(w.plan(), rate, bonus)
}

func (w *HealingWound) InfectionTick() {
	w.infectionTick(false, false, nil)
}

func (w *HealingWound) DoOfflineHealing(elapsed time.Duration, rate, bonus float64) {
	n := w.offlineLinear(w.plan(), elapsed, rate, bonus)
	w.offlineInfection(elapsed)
	w.logOffline(elapsed, n)
	w.changed()
}

func (w *HealingWound) CanBeTreated(t Treatment) Difficulty {
	if w.blocked(t) {
		return DifficultyImpossible
	}
	switch t {
	case TreatMend:
		if w.currentDamage <= 0 {
			return DifficultyImpossible
		}
		return w.mendDifficulty()
	case TreatRemove:
		if w.lodged == nil {
			return DifficultyImpossible
		}
		return w.mendDifficulty()
	case TreatTrauma, TreatClose, TreatClean, TreatRelocation, TreatSet,
		TreatSurgicalSet, TreatTend, TreatRepair, TreatAntiseptic:
		return DifficultyImpossible
	default:
		panic(fmt.Sprintf("wound.HealingWound.CanBeTreated: unhandled treatment %s", t))
	}
}

func (w *HealingWound) Treat(treater Actor, t Treatment, item Item, o Outcome, silent bool) TreatResult {
	res, ok := w.begin(t, item, o)
	if !ok {
		return res
	}
	if !o.IsPass() {
		w.failed(&res, false)
		return w.finish(treater, res, silent)
	}
	switch t {
	case TreatMend:
		if w.healTiers(o) {
			res.Effect = EffectHealed
		}
	case TreatRemove:
		res.Removed = w.removeLodged()
		res.Effect = EffectRemoved
	default:
		panic(fmt.Sprintf("wound.HealingWound.Treat: unhandled treatment %s", t))
	}
	return w.finish(treater, res, silent)
}
