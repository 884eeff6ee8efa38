package wound

import (
	"fmt"
	"strings"
)

// glanceShift moves the glance visibility threshold by check outcome. Better
// outcomes notice smaller wounds.
var glanceShift = [MajorPass + 1]int{
	OutcomeNone: 1,
	MajorFail:   3,
	Fail:        2,
	MinorFail:   1,
	MinorPass:   0,
	Pass:        -1,
	MajorPass:   -2,
}

// visible reports whether an observer using kind with outcome o notices the
// wound at all.
func (c *core) visible(kind Examination, o Outcome, sev Severity) bool {
	if sev == SeverityNone && c.lodged == nil && c.infection == nil {
		return false
	}
	switch kind {
	case ExamSelf, ExamTriage, ExamExamine:
		return true
	case ExamLook:
		return !c.Internal()
	case ExamGlance:
		if c.Internal() {
			return false
		}
		shift := 0
		if o >= OutcomeNone && o <= MajorPass {
			shift = glanceShift[o]
		}
		return sev >= c.env.Tables.GlanceThreshold.Step(shift)
	default:
		panic(fmt.Sprintf("wound.Describe: unhandled examination %d", int(kind)))
	}
}

func (c *core) noun() string {
	p := c.env.Tables.Profile(c.damageType)
	if _, robot := c.self.(*RobotWound); robot {
		return p.RobotNoun
	}
	if _, bone := c.self.(*FractureWound); bone {
		return "fracture"
	}
	return p.Noun
}

// Describe returns a short plain-text description of the wound for an
// observer, or "" when the observer does not notice it.
func (c *core) Describe(kind Examination, o Outcome) string {
	sev := c.self.Severity()
	if !c.visible(kind, o, sev) {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "a %s %s on the %s", sev, c.noun(), c.part.Name)

	var tags []string
	if kind == ExamExamine || kind == ExamTriage {
		if c.lodged != nil {
			tags = append(tags, c.lodged.Name()+" lodged")
		}
		if c.infection != nil {
			tags = append(tags, "infected")
		}
		if c.tended != OutcomeNone {
			tags = append(tags, "tended")
		}
		if ow, ok := c.self.(*OrganicWound); ok && ow.cleaned {
			tags = append(tags, "cleaned")
		}
	}
	if kind == ExamTriage {
		if st := c.self.BleedStatus(); st != NeverBled {
			tags = append(tags, st.String())
		}
		if f, ok := c.self.(*FractureWound); ok {
			tags = append(tags, f.stage.String())
			if f.relocated {
				tags = append(tags, "relocated")
			}
		}
		if c.owner.Antiseptic(c.part) {
			tags = append(tags, "antiseptic")
		}
	}
	if kind == ExamSelf {
		if c.self.CurrentPain() > 0 {
			tags = append(tags, "painful")
		}
		if c.self.BleedStatus() == Bleeding {
			tags = append(tags, "bleeding")
		}
	}
	if c.actorOrigin != "" && kind == ExamSelf && c.actorOrigin == c.owner.ID() {
		tags = append(tags, "self-inflicted")
	}
	if len(tags) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(tags, ", "))
	}
	return b.String()
}
