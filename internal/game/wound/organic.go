package wound

import (
	"fmt"
	"time"
)

// OrganicWound is the full living-tissue model: pain, stun, bleeding,
// infection and natural healing.
type OrganicWound struct {
	core
	bleeder
	hygiene
}

func (w *OrganicWound) Variant() Variant         { return VariantSimpleOrganic }
func (w *OrganicWound) BleedStatus() BleedStatus { return w.status }

// Cleaned reports whether the wound has been successfully cleaned since it
// was last damaged.
func (w *OrganicWound) Cleaned() bool { return w.cleaned }

// CleanAttempted reports whether any clean was attempted since the wound was
// last damaged.
func (w *OrganicWound) CleanAttempted() bool { return w.cleanAttempted }

func (w *OrganicWound) onset() {
	if meetsOnset(w.env.Tables, w.damageType, w.Severity(), w.Internal()) {
		w.move(Bleeding)
	}
}

func (w *OrganicWound) SufferAdditionalDamage(d Damage) {
	w.accumulate(d, true, true)
	w.hygiene.reset()
	if meetsOnset(w.env.Tables, w.damageType, w.Severity(), w.Internal()) {
		w.worsen()
	}
	w.changed()
}

func (w *OrganicWound) ShouldBeRemoved() bool {
	return w.removable() && w.status != Bleeding
}

func (w *OrganicWound) Bleed(currentBlood float64, exertion Exertion, totalBlood float64) BleedResult {
	return w.bleedTick(&w.bleeder, currentBlood, exertion, totalBlood)
}

func (w *OrganicWound) plan() linearPlan {
	return linearPlan{
		combat:   true,
		bleeding: func() bool { return w.status == Bleeding },
		tend:     &w.env.Tables.OrganicTend,
		diff:     w.mendDifficulty,
		pain:     true,
		stun:     true,
		painFloor: func(damage float64) float64 {
			return damage * w.part.PainModifier / 2
		},
		afterStep: func() { w.naturalClosure(&w.bleeder) },
	}
}

func (w *OrganicWound) HealingTick(rate, bonus float64) bool {
	return w.onlineLinear(w.plan(), rate, bonus)
}

func (w *OrganicWound) infectionEligible() bool {
	return w.status != Bleeding && w.Severity() >= w.env.Tables.OrganicInfectionFloor
}

func (w *OrganicWound) InfectionTick() {
	w.infectionTick(w.infectionEligible(), w.status == TraumaControlled, &w.hygiene)
}

func (w *OrganicWound) DoOfflineHealing(elapsed time.Duration, rate, bonus float64) {
	n := w.offlineLinear(w.plan(), elapsed, rate, bonus)
	w.offlineInfection(elapsed)
	w.logOffline(elapsed, n)
	w.changed()
}

func (w *OrganicWound) CanBeTreated(t Treatment) Difficulty {
	if w.blocked(t) {
		return DifficultyImpossible
	}
	if w.Internal() && t != TreatMend && t != TreatRemove {
		return DifficultyImpossible
	}
	switch t {
	case TreatMend:
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
	case TreatClean:
		if w.cleaned || w.currentDamage <= 0 {
			return DifficultyImpossible
		}
		return w.mendDifficulty().Easier(1)
	case TreatAntiseptic:
		if w.owner.Antiseptic(w.part) {
			return DifficultyImpossible
		}
		return w.mendDifficulty().Easier(1)
	case TreatTend:
		if w.tended == MajorPass || w.currentDamage <= 0 {
			return DifficultyImpossible
		}
		return w.mendDifficulty()
	case TreatRemove:
		if w.lodged == nil {
			return DifficultyImpossible
		}
		return w.mendDifficulty().Harder(1)
	case TreatRelocation, TreatSet, TreatSurgicalSet, TreatRepair:
		return DifficultyImpossible
	default:
		panic(fmt.Sprintf("wound.OrganicWound.CanBeTreated: unhandled treatment %s", t))
	}
}

func (w *OrganicWound) Treat(treater Actor, t Treatment, item Item, o Outcome, silent bool) TreatResult {
	res, ok := w.begin(t, item, o)
	if !ok {
		return res
	}
	if !o.IsPass() {
		switch t {
		case TreatClean:
			// A botched clean contaminates the wound; lesser failures still
			// count as diligence.
			if o == MajorFail {
				w.hygiene.reset()
			} else {
				w.cleanAttempted = true
			}
		case TreatClose:
			if o == MajorFail {
				w.reopen()
			}
		}
		w.failed(&res, t == TreatRemove)
		return w.finish(treater, res, silent)
	}
	switch t {
	case TreatMend:
		if w.healTiers(o) {
			res.Effect = EffectHealed
		}
		w.naturalClosure(&w.bleeder)
	case TreatTrauma:
		w.move(TraumaControlled)
		res.Effect = EffectBleedControlled
	case TreatClose:
		w.move(Closed)
		res.Effect = EffectClosed
	case TreatClean:
		w.cleaned, w.cleanAttempted = true, true
		res.Effect = EffectCleaned
	case TreatAntiseptic:
		w.owner.ApplyAntiseptic(w.part, w.env.Tables.AntisepticDuration[o])
		res.Effect = EffectProtected
	case TreatTend:
		w.tend(o)
		res.Effect = EffectTended
	case TreatRemove:
		res.Removed = w.removeLodged()
		res.Effect = EffectRemoved
		if o == MinorPass {
			w.currentPain += w.env.Tables.MishapPain * w.part.PainModifier
		}
	default:
		panic(fmt.Sprintf("wound.OrganicWound.Treat: unhandled treatment %s", t))
	}
	return w.finish(treater, res, silent)
}
