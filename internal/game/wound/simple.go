package wound

import (
	"fmt"
	"time"
)

// SimpleWound is damage to an inert item. It never heals by itself and only
// responds to Repair, Mend and Remove.
type SimpleWound struct {
	core
}

func (w *SimpleWound) Variant() Variant { return VariantSimple }

func (w *SimpleWound) SufferAdditionalDamage(d Damage) {
	w.accumulate(d, false, false)
	w.changed()
}

func (w *SimpleWound) ShouldBeRemoved() bool {
	return w.currentDamage <= 0 && w.lodged == nil
}

func (w *SimpleWound) Bleed(float64, Exertion, float64) BleedResult { return BleedResult{} }

func (w *SimpleWound) HealingTick(float64, float64) bool { return false }

func (w *SimpleWound) InfectionTick() {}

func (w *SimpleWound) DoOfflineHealing(time.Duration, float64, float64) {}

func (w *SimpleWound) CanBeTreated(t Treatment) Difficulty {
	if w.blocked(t) {
		return DifficultyImpossible
	}
	switch t {
	case TreatMend, TreatRepair:
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
		TreatSurgicalSet, TreatTend, TreatAntiseptic:
		return DifficultyImpossible
	default:
		panic(fmt.Sprintf("wound.SimpleWound.CanBeTreated: unhandled treatment %s", t))
	}
}

func (w *SimpleWound) Treat(treater Actor, t Treatment, item Item, o Outcome, silent bool) TreatResult {
	res, ok := w.begin(t, item, o)
	if !ok {
		return res
	}
	if !o.IsPass() {
		w.failed(&res, t == TreatRepair)
		return w.finish(treater, res, silent)
	}
	switch t {
	case TreatMend, TreatRepair:
		if w.healTiers(o) {
			res.Effect = EffectHealed
		}
	case TreatRemove:
		res.Removed = w.removeLodged()
		res.Effect = EffectRemoved
	default:
		panic(fmt.Sprintf("wound.SimpleWound.Treat: unhandled treatment %s", t))
	}
	return w.finish(treater, res, silent)
}
