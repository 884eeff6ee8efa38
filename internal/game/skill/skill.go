// Package skill provides skill-check oracles for the health engine.
package skill

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/mudhealth/internal/game/dice"
	"github.com/cory-johannsen/mudhealth/internal/game/wound"
)

// Band widths for the six-tier outcome, in percentile points of margin.
const (
	majorMargin = 40
	fullMargin  = 20
)

// Target returns the d100 total needed to pass at d.
//
// Postcondition: Target(Automatic) == 5 and each rung adds 10.
func Target(d wound.Difficulty) float64 {
	return float64(5 + 10*int(d))
}

// OutcomeFor maps a check total against difficulty d to the six-tier outcome.
//
// Postcondition: Impossible always yields MajorFail; Automatic never fails.
func OutcomeFor(total float64, d wound.Difficulty) wound.Outcome {
	if d == wound.DifficultyImpossible {
		return wound.MajorFail
	}
	margin := total - Target(d)
	var o wound.Outcome
	switch {
	case margin >= majorMargin:
		o = wound.MajorPass
	case margin >= fullMargin:
		o = wound.Pass
	case margin >= 0:
		o = wound.MinorPass
	case margin >= -fullMargin:
		o = wound.MinorFail
	case margin >= -majorMargin:
		o = wound.Fail
	default:
		o = wound.MajorFail
	}
	if d == wound.DifficultyAutomatic && !o.IsPass() {
		o = wound.MinorPass
	}
	return o
}

// BonusFunc supplies an actor's standing skill bonus.
type BonusFunc func(actor wound.Actor) float64

// DiceChecker rolls 1d100 plus bonuses against the difficulty ladder.
type DiceChecker struct {
	roller *dice.Roller
	bonus  BonusFunc
	logger *zap.Logger
}

// NewDiceChecker returns a DiceChecker.
//
// Precondition: roller and logger must be non-nil. bonus may be nil.
func NewDiceChecker(roller *dice.Roller, bonus BonusFunc, logger *zap.Logger) *DiceChecker {
	if roller == nil || logger == nil {
		panic("skill.NewDiceChecker: roller and logger must be non-nil")
	}
	return &DiceChecker{roller: roller, bonus: bonus, logger: logger}
}

func (c *DiceChecker) standing(actor wound.Actor) float64 {
	if c.bonus == nil || actor == nil {
		return 0
	}
	return c.bonus(actor)
}

// Check rolls one check for actor.
func (c *DiceChecker) Check(actor wound.Actor, d wound.Difficulty, bonus float64) wound.Outcome {
	if d == wound.DifficultyImpossible {
		return wound.MajorFail
	}
	roll := c.roller.Percentile()
	total := float64(roll) + bonus + c.standing(actor)
	o := OutcomeFor(total, d)
	c.logger.Debug("skill check",
		zap.String("difficulty", d.String()),
		zap.Int("roll", roll),
		zap.Float64("total", total),
		zap.String("outcome", o.String()),
	)
	return o
}

// Distribution is the exact outcome distribution of Check: each of the 100
// faces of the d100 carries 1% to the outcome its total maps to.
func (c *DiceChecker) Distribution(actor wound.Actor, d wound.Difficulty, bonus float64) wound.Distribution {
	if d == wound.DifficultyImpossible {
		return wound.Certain(wound.MajorFail)
	}
	var dist wound.Distribution
	base := bonus + c.standing(actor)
	for roll := 1; roll <= 100; roll++ {
		dist[OutcomeFor(float64(roll)+base, d)] += 0.01
	}
	return dist
}

// FixedChecker returns the same outcome for every possible check.
type FixedChecker struct {
	Outcome wound.Outcome
}

func (c FixedChecker) Check(_ wound.Actor, d wound.Difficulty, _ float64) wound.Outcome {
	if d == wound.DifficultyImpossible {
		return wound.MajorFail
	}
	return c.Outcome
}

func (c FixedChecker) Distribution(actor wound.Actor, d wound.Difficulty, bonus float64) wound.Distribution {
	return wound.Certain(c.Check(actor, d, bonus))
}

// SequenceChecker replays outcomes in order and repeats the last one.
type SequenceChecker struct {
	Outcomes []wound.Outcome
	next     int
}

func (c *SequenceChecker) Check(_ wound.Actor, d wound.Difficulty, _ float64) wound.Outcome {
	if d == wound.DifficultyImpossible || len(c.Outcomes) == 0 {
		return wound.MajorFail
	}
	o := c.Outcomes[c.next]
	if c.next < len(c.Outcomes)-1 {
		c.next++
	}
	return o
}
