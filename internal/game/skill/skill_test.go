package skill_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/mudhealth/internal/game/dice"
	"github.com/cory-johannsen/mudhealth/internal/game/skill"
	"github.com/cory-johannsen/mudhealth/internal/game/wound"
)

type actor string

func (a actor) ID() string { return string(a) }

func TestOutcomeFor_Bands(t *testing.T) {
	d := wound.DifficultyNormal // target 55
	assert.Equal(t, wound.MajorPass, skill.OutcomeFor(95, d))
	assert.Equal(t, wound.Pass, skill.OutcomeFor(75, d))
	assert.Equal(t, wound.MinorPass, skill.OutcomeFor(55, d))
	assert.Equal(t, wound.MinorFail, skill.OutcomeFor(54, d))
	assert.Equal(t, wound.Fail, skill.OutcomeFor(30, d))
	assert.Equal(t, wound.MajorFail, skill.OutcomeFor(10, d))
}

func TestOutcomeFor_Automatic_NeverFails(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		total := rapid.Float64Range(-200, 200).Draw(rt, "total")
		assert.True(rt, skill.OutcomeFor(total, wound.DifficultyAutomatic).IsPass())
	})
}

func TestOutcomeFor_Impossible_AlwaysMajorFail(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		total := rapid.Float64Range(-200, 500).Draw(rt, "total")
		assert.Equal(rt, wound.MajorFail, skill.OutcomeFor(total, wound.DifficultyImpossible))
	})
}

func TestOutcomeFor_MonotoneInTotal(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		d := wound.Difficulty(rapid.IntRange(0, int(wound.DifficultyInsane)).Draw(rt, "d"))
		a := rapid.Float64Range(-100, 200).Draw(rt, "a")
		b := rapid.Float64Range(-100, 200).Draw(rt, "b")
		if a > b {
			a, b = b, a
		}
		assert.LessOrEqual(rt, skill.OutcomeFor(a, d), skill.OutcomeFor(b, d))
	})
}

func TestDiceChecker_UsesStandingBonus(t *testing.T) {
	r := dice.NewLoggedRoller(dice.NewSeededSource(1), zap.NewNop())
	c := skill.NewDiceChecker(r, func(wound.Actor) float64 { return 500 }, zap.NewNop())
	assert.Equal(t, wound.MajorPass, c.Check(actor("a"), wound.DifficultyInsane, 0))
	assert.InDelta(t, 1, c.Distribution(actor("a"), wound.DifficultyInsane, 0)[wound.MajorPass], 1e-9)
	assert.Equal(t, wound.MajorFail, c.Check(actor("a"), wound.DifficultyImpossible, 0))
}

func TestDiceChecker_Distribution(t *testing.T) {
	r := dice.NewLoggedRoller(dice.NewSeededSource(1), zap.NewNop())
	c := skill.NewDiceChecker(r, nil, zap.NewNop())

	// Hard needs 65: 1-24 major fail, 25-44 fail, 45-64 minor fail, 65-84
	// minor pass, 85-100 pass.
	got := c.Distribution(actor("a"), wound.DifficultyHard, 0)
	want := wound.Distribution{0, 0.24, 0.20, 0.20, 0.20, 0.16, 0}
	for o := wound.OutcomeNone; o <= wound.MajorPass; o++ {
		assert.InDelta(t, want[o], got[o], 1e-9, "%s", o)
	}
	assert.InDelta(t, 0.36, got.PassChance(), 1e-9)

	assert.Equal(t, wound.Certain(wound.MajorFail), c.Distribution(actor("a"), wound.DifficultyImpossible, 0))
	assert.InDelta(t, 1, c.Distribution(actor("a"), wound.DifficultyAutomatic, 0).PassChance(), 1e-9)
}

func TestDiceChecker_DistributionMatchesRolls(t *testing.T) {
	r := dice.NewLoggedRoller(dice.NewSeededSource(11), zap.NewNop())
	c := skill.NewDiceChecker(r, nil, zap.NewNop())
	const n = 20000
	var counts wound.Distribution
	for i := 0; i < n; i++ {
		counts[c.Check(actor("a"), wound.DifficultyNormal, 5)]++
	}
	dist := c.Distribution(actor("a"), wound.DifficultyNormal, 5)
	for o := wound.MajorFail; o <= wound.MajorPass; o++ {
		assert.InDelta(t, dist[o], counts[o]/n, 0.02, "%s", o)
	}
}

func TestProperty_DistributionSumsToOne(t *testing.T) {
	r := dice.NewLoggedRoller(dice.NewSeededSource(1), zap.NewNop())
	c := skill.NewDiceChecker(r, nil, zap.NewNop())
	rapid.Check(t, func(rt *rapid.T) {
		d := wound.Difficulty(rapid.IntRange(0, int(wound.DifficultyImpossible)).Draw(rt, "d"))
		bonus := rapid.Float64Range(-100, 100).Draw(rt, "bonus")
		var sum float64
		for _, p := range c.Distribution(actor("a"), d, bonus) {
			sum += p
		}
		assert.InDelta(rt, 1, sum, 1e-9)
	})
}

func TestFixedChecker(t *testing.T) {
	c := skill.FixedChecker{Outcome: wound.Pass}
	assert.Equal(t, wound.Pass, c.Check(nil, wound.DifficultyHard, 0))
	assert.Equal(t, wound.MajorFail, c.Check(nil, wound.DifficultyImpossible, 0))
	assert.Equal(t, wound.Certain(wound.Pass), c.Distribution(nil, wound.DifficultyHard, 0))
}

func TestSequenceChecker_RepeatsLast(t *testing.T) {
	c := &skill.SequenceChecker{Outcomes: []wound.Outcome{wound.Fail, wound.MajorPass}}
	assert.Equal(t, wound.Fail, c.Check(nil, wound.DifficultyEasy, 0))
	assert.Equal(t, wound.MajorPass, c.Check(nil, wound.DifficultyEasy, 0))
	assert.Equal(t, wound.MajorPass, c.Check(nil, wound.DifficultyEasy, 0))
}
