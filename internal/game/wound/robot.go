package wound

import (
	"fmt"
	"time"
)

// RobotWound is the mechanical analogue of OrganicWound. It leaks fluid
// through the same bleed machine but feels no pain, never infects and does
// not heal without repair.
type RobotWound struct {
	core
	bleeder
}

func (w *RobotWound) Variant() Variant         { return VariantRobot }
func (w *RobotWound) BleedStatus() BleedStatus { return w.status }

func (w *RobotWound) onset() {
	if meetsOnset(w.env.Tables, w.damageType, w.Severity(), w.Internal()) {
		w.move(Bleeding)
	}
}

func (w *RobotWound) SufferAdditionalDamage(d Damage) {
	w.accumulate(d, false, true)
	if meetsOnset(w.env.Tables, w.damageType, w.Severity(), w.Internal()) {
		w.worsen()
	}
	w.changed()
}

func (w *RobotWound) ShouldBeRemoved() bool {
	return w.removable() && w.status != Bleeding
}

func (w *RobotWound) Bleed(currentBlood float64, exertion Exertion, totalBlood float64) BleedResult {
	return w.bleedTick(&w.bleeder, currentBlood, exertion, totalBlood)
}

// HealingTick only clears stun; structural damage needs Repair.
func (w *RobotWound) HealingTick(rate, bonus float64) bool {
	if w.currentStun <= 0 {
		return false
	}
	return w.onlineLinear(w.plan(), rate, bonus)
}

func (w *RobotWound) plan() linearPlan {
	return linearPlan{
		tend:     &w.env.Tables.RecoveryTend,
		diff:     w.mendDifficulty,
		stun:     true,
		noDamage: true,
	}
}

func (w *RobotWound) InfectionTick() {
	w.infectionTick(false, false, nil)
}

func (w *RobotWound) DoOfflineHealing(elapsed time.Duration, rate, bonus float64) {
	n := 0
	if w.currentStun > 0 {
		n = w.offlineLinear(w.plan(), elapsed, rate, bonus)
	}
	w.logOffline(elapsed, n)
	w.changed()
}

func (w *RobotWound) CanBeTreated(t Treatment) Difficulty {
	if w.blocked(t) {
		return DifficultyImpossible
	}
	switch t {
	case TreatMend, TreatRepair:
		if w.currentDamage <= 0 {
			return DifficultyImpossible
		}
		return w.mendDifficulty()
	case TreatTrauma:
		if w.status != Bleeding {
			return DifficultyImpossible
		}
		return w.traumaDifficulty()
	case TreatClose:
		if w.status != TraumaControlled {
			return DifficultyImpossible
		}
		return w.mendDifficulty()
	case TreatRemove:
		if w.lodged == nil {
			return DifficultyImpossible
		}
		return w.mendDifficulty().Harder(1)
	case TreatClean, TreatRelocation, TreatSet, TreatSurgicalSet, TreatTend, TreatAntiseptic:
		return DifficultyImpossible
	default:
		panic(fmt.Sprintf("wound.RobotWound.CanBeTreated: unhandled treatment %s", t))
	}
}

func (w *RobotWound) Treat(treater Actor, t Treatment, item Item, o Outcome, silent bool) TreatResult {
	res, ok := w.begin(t, item, o)
	if !ok {
		return res
	}
	if !o.IsPass() {
		if t == TreatClose && o == MajorFail {
			w.reopen()
		}
		w.failed(&res, t == TreatRepair || t == TreatRemove)
		return w.finish(treater, res, silent)
	}
	switch t {
	case TreatMend, TreatRepair:
		if w.healTiers(o) {
			res.Effect = EffectHealed
		}
		if w.currentDamage <= 0 && w.status == TraumaControlled {
			w.move(Closed)
		}
	case TreatTrauma:
		w.move(TraumaControlled)
		res.Effect = EffectBleedControlled
	case TreatClose:
		w.move(Closed)
		res.Effect = EffectClosed
	case TreatRemove:
		res.Removed = w.removeLodged()
		res.Effect = EffectRemoved
	default:
		panic(fmt.Sprintf("wound.RobotWound.Treat: unhandled treatment %s", t))
	}
	return w.finish(treater, res, silent)
}
