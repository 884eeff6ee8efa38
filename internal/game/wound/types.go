// Package wound models individual injuries: their damage, pain, bleeding,
// infection and staged repair, and the treatments that act on them.
//
// A wound is owned by exactly one Owner (a body or a severed bodypart item).
// All mutation happens on the owner's heartbeat; nothing in this package is
// safe for concurrent use and none of it needs to be.
package wound

import "fmt"

// Severity is the discrete injury-magnitude tier derived from damage and
// bodypart capacity. It is never stored on a wound.
type Severity int

const (
	SeverityNone Severity = iota
	SeveritySuperficial
	SeverityMinor
	SeveritySmall
	SeverityModerate
	SeveritySevere
	SeverityVerySevere
	SeverityGrievous
	SeverityHorrifying
)

var severityNames = [...]string{
	"none", "superficial", "minor", "small", "moderate",
	"severe", "very severe", "grievous", "horrifying",
}

// String returns the lower-case display name of the tier.
func (s Severity) String() string {
	if s < 0 || int(s) >= len(severityNames) {
		return fmt.Sprintf("severity(%d)", int(s))
	}
	return severityNames[s]
}

// Step returns s moved by delta tiers, clamped to [None, Horrifying].
func (s Severity) Step(delta int) Severity {
	n := int(s) + delta
	if n < int(SeverityNone) {
		return SeverityNone
	}
	if n > int(SeverityHorrifying) {
		return SeverityHorrifying
	}
	return Severity(n)
}

// DamageType tags the mechanism that produced a wound.
type DamageType string

const (
	DamageSlashing   DamageType = "slashing"
	DamageChopping   DamageType = "chopping"
	DamageCrushing   DamageType = "crushing"
	DamagePiercing   DamageType = "piercing"
	DamageBallistic  DamageType = "ballistic"
	DamageBurning    DamageType = "burning"
	DamageFreezing   DamageType = "freezing"
	DamageChemical   DamageType = "chemical"
	DamageShockwave  DamageType = "shockwave"
	DamageBite       DamageType = "bite"
	DamageClaw       DamageType = "claw"
	DamageElectrical DamageType = "electrical"
	DamageHypoxia    DamageType = "hypoxia"
	DamageCellular   DamageType = "cellular"
	DamageShearing   DamageType = "shearing"
	DamageWrenching  DamageType = "wrenching"
	DamageFalling    DamageType = "falling"
)

// BleedStatus is the external fluid-loss state of a wound.
type BleedStatus int

const (
	NeverBled BleedStatus = iota
	Bleeding
	TraumaControlled
	Closed
)

// String returns the display name of the status.
func (b BleedStatus) String() string {
	switch b {
	case NeverBled:
		return "never bled"
	case Bleeding:
		return "bleeding"
	case TraumaControlled:
		return "trauma controlled"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("bleedstatus(%d)", int(b))
	}
}

// Stage is a bone-fracture repair phase.
type Stage int

const (
	StageTrauma Stage = iota
	StageReaction
	StageRelocation
	StageReparation
	StageOssification
)

// String returns the display name of the stage.
func (s Stage) String() string {
	switch s {
	case StageTrauma:
		return "trauma"
	case StageReaction:
		return "reaction"
	case StageRelocation:
		return "relocation"
	case StageReparation:
		return "reparation"
	case StageOssification:
		return "ossification"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Outcome is the ordered result of a skill check. OutcomeNone sorts below
// every real result and marks "never attempted".
type Outcome int

const (
	OutcomeNone Outcome = iota
	MajorFail
	Fail
	MinorFail
	MinorPass
	Pass
	MajorPass
)

// IsPass reports whether o is MinorPass or better.
func (o Outcome) IsPass() bool { return o >= MinorPass }

// String returns the display name of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case MajorFail:
		return "major fail"
	case Fail:
		return "fail"
	case MinorFail:
		return "minor fail"
	case MinorPass:
		return "minor pass"
	case Pass:
		return "pass"
	case MajorPass:
		return "major pass"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// ParseOutcome maps a display name back to an Outcome.
func ParseOutcome(s string) (Outcome, error) {
	for o := OutcomeNone; o <= MajorPass; o++ {
		if o.String() == s {
			return o, nil
		}
	}
	return OutcomeNone, fmt.Errorf("unknown outcome %q", s)
}

// Exertion is the owner's current physical effort.
type Exertion int

const (
	ExertionStasis Exertion = iota
	ExertionRest
	ExertionLow
	ExertionNormal
	ExertionHeavy
	ExertionVeryHeavy
	ExertionExtremelyHeavy
)

var exertionNames = [...]string{"stasis", "rest", "low", "normal", "heavy", "very heavy", "extremely heavy"}

// String returns the display name of the exertion level.
func (e Exertion) String() string {
	if e < ExertionStasis || e > ExertionExtremelyHeavy {
		return fmt.Sprintf("exertion(%d)", int(e))
	}
	return exertionNames[e]
}

// ParseExertion maps a display name back to an Exertion.
func ParseExertion(s string) (Exertion, error) {
	for i, n := range exertionNames {
		if n == s {
			return Exertion(i), nil
		}
	}
	return ExertionStasis, fmt.Errorf("unknown exertion %q", s)
}

// Examination is the kind of look an observer takes at a wound.
type Examination int

const (
	ExamGlance Examination = iota
	ExamLook
	ExamExamine
	ExamTriage
	ExamSelf
)

// Treatment is a category of medical or mechanical intervention.
type Treatment int

const (
	TreatMend Treatment = iota
	TreatTrauma
	TreatClose
	TreatClean
	TreatRelocation
	TreatSet
	TreatSurgicalSet
	TreatTend
	TreatRepair
	TreatRemove
	TreatAntiseptic
)

// AllTreatments lists every treatment kind in declaration order.
var AllTreatments = []Treatment{
	TreatMend, TreatTrauma, TreatClose, TreatClean, TreatRelocation, TreatSet,
	TreatSurgicalSet, TreatTend, TreatRepair, TreatRemove, TreatAntiseptic,
}

// String returns the lower-case name of the treatment.
func (t Treatment) String() string {
	switch t {
	case TreatMend:
		return "mend"
	case TreatTrauma:
		return "trauma"
	case TreatClose:
		return "close"
	case TreatClean:
		return "clean"
	case TreatRelocation:
		return "relocation"
	case TreatSet:
		return "set"
	case TreatSurgicalSet:
		return "surgical set"
	case TreatTend:
		return "tend"
	case TreatRepair:
		return "repair"
	case TreatRemove:
		return "remove"
	case TreatAntiseptic:
		return "antiseptic"
	default:
		return fmt.Sprintf("treatment(%d)", int(t))
	}
}

// ParseTreatment maps a lower-case name back to a Treatment.
func ParseTreatment(s string) (Treatment, error) {
	for _, t := range AllTreatments {
		if t.String() == s {
			return t, nil
		}
	}
	return TreatMend, fmt.Errorf("unknown treatment %q", s)
}

// HealKind names the dimension a health quantum applies to.
type HealKind int

const (
	HealDamage HealKind = iota
	HealPain
	HealStun
)

// String returns the lower-case name of the heal kind.
func (k HealKind) String() string {
	switch k {
	case HealDamage:
		return "damage"
	case HealPain:
		return "pain"
	case HealStun:
		return "stun"
	default:
		return fmt.Sprintf("healkind(%d)", int(k))
	}
}
