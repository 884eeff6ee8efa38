package wound

import (
	"go.uber.org/zap"
)

// hygiene is the clean state of an organic wound.
type hygiene struct {
	cleaned        bool
	cleanAttempted bool
}

// suppress runs the secondary hygiene rolls after the primary infection roll
// fired. A suppressed infection flags the wound as needing a fresh clean.
//
// Postcondition: Returns true iff the infection was suppressed.
func (h *hygiene) suppress(c *core) bool {
	t := c.env.Tables
	if h.cleaned && c.env.Roller.Chance(t.CleanSuppression) {
		h.cleaned, h.cleanAttempted = false, false
		return true
	}
	if h.cleanAttempted && c.env.Roller.Chance(t.AttemptSuppression) {
		h.cleaned, h.cleanAttempted = false, false
		return true
	}
	return false
}

func (h *hygiene) reset() {
	h.cleaned, h.cleanAttempted = false, false
}

// infectable holds the eligibility rules shared by every infecting variant.
func (c *core) infectable() bool {
	t := c.env.Tables
	switch {
	case c.infection != nil:
		return false
	case c.currentDamage <= 0:
		return false
	case t.Profile(c.damageType).InfectionMultiplier <= 0:
		return false
	case c.currentDamage < t.HealedFraction*c.originalDamage:
		return false
	case c.owner.Antiseptic(c.part):
		return false
	}
	return true
}

// infectionChance is the per-tick probability of a new infection.
func (c *core) infectionChance(untreated bool) float64 {
	t := c.env.Tables
	st := c.owner.State()
	p := t.InfectionBaseChance *
		t.Profile(c.damageType).InfectionMultiplier *
		st.Terrain.InfectionMultiplier *
		t.InfectionSeverity[c.self.Severity()] *
		c.owner.InfectionChanceMultiplier()
	if untreated {
		p *= t.UntreatedMultiplier
	}
	return p
}

// infectionTick ticks an attached infection, or rolls for a new one when
// eligible reports the variant-specific gate is open.
func (c *core) infectionTick(eligible, untreated bool, h *hygiene) {
	if c.infection != nil {
		c.infection.Tick()
		if c.infection.IsHealed() {
			c.env.Logger.Debug("infection healed", zap.String("wound", c.id))
			c.dropInfection()
			c.changed()
		}
		return
	}
	if !eligible || !c.infectable() {
		return
	}
	p := c.infectionChance(untreated)
	if p <= 0 || !c.env.Roller.Chance(p) {
		return
	}
	if h != nil && h.suppress(c) {
		c.env.Logger.Debug("infection suppressed by hygiene", zap.String("wound", c.id))
		c.changed()
		return
	}
	c.infect()
}

// infect attaches a new infection at the owner's most favourable virulence.
func (c *core) infect() {
	terrain := c.owner.State().Terrain
	virulence := terrain.Virulence
	for i, v := range c.owner.InfectionResistances(terrain.InfectionType, terrain.Virulence) {
		if i == 0 || v < virulence {
			virulence = v
		}
	}
	c.infection = c.env.Infections.New(InfectionSpec{
		Type:      terrain.InfectionType,
		Virulence: virulence,
		WoundID:   c.id,
		Bodypart:  c.part,
	})
	c.env.Logger.Info("wound infected",
		zap.String("wound", c.id),
		zap.String("owner", c.owner.ID()),
		zap.String("bodypart", c.part.ID),
		zap.String("type", terrain.InfectionType),
		zap.String("virulence", virulence.String()),
	)
	c.changed()
}
