package wound_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/mudhealth/internal/game/body"
	"github.com/cory-johannsen/mudhealth/internal/game/infection"
	"github.com/cory-johannsen/mudhealth/internal/game/wound"
)

func TestInfectionTick_InfectsEligibleWound(t *testing.T) {
	f := newFixture(t)
	f.infectious(wound.DifficultyNormal)
	w := f.inflict(t, wound.VariantSimpleOrganic, wound.DamageBurning, 35)

	w.InfectionTick()

	require.NotNil(t, w.Infection())
	inf := w.Infection().(*infection.Infection)
	assert.Equal(t, "rot", inf.Type())
	assert.Equal(t, wound.DifficultyNormal, inf.Virulence())
	assert.Equal(t, 1, f.logs.FilterMessage("wound infected").Len())
}

func TestInfectionTick_NeverDoubles(t *testing.T) {
	f := newFixture(t)
	f.infectious(wound.DifficultyInsane)
	w := f.inflict(t, wound.VariantSimpleOrganic, wound.DamageBurning, 35)
	w.InfectionTick()
	first := w.Infection()
	require.NotNil(t, first)

	for i := 0; i < 50; i++ {
		w.InfectionTick()
		require.Same(t, first, w.Infection())
	}
	assert.Equal(t, 1, f.logs.FilterMessage("wound infected").Len())
}

func TestInfectionTick_HealedInfectionDetaches(t *testing.T) {
	f := newFixture(t)
	f.infectious(wound.DifficultyEasy)
	w := f.inflict(t, wound.VariantSimpleOrganic, wound.DamageBurning, 35)
	w.InfectionTick()
	inf := w.Infection().(*infection.Infection)

	ticks := 0
	for w.Infection() != nil && ticks < 500 {
		w.InfectionTick()
		ticks++
	}

	assert.Nil(t, w.Infection())
	assert.True(t, inf.Deleted())
	assert.True(t, inf.IsHealed())
	assert.Less(t, ticks, 500)
}

func TestInfectionTick_Ineligible(t *testing.T) {
	cases := []struct {
		name    string
		variant wound.Variant
		part    string
		dt      wound.DamageType
		amount  float64
	}{
		{"bleeding", wound.VariantSimpleOrganic, "arm", wound.DamageSlashing, 35},
		{"excluded damage type", wound.VariantSimpleOrganic, "arm", wound.DamageCrushing, 35},
		{"below minimum severity", wound.VariantSimpleOrganic, "arm", wound.DamageBurning, 15},
		{"robot", wound.VariantRobot, "arm", wound.DamageBurning, 80},
		{"simple", wound.VariantSimple, "arm", wound.DamageBurning, 80},
		{"healing", wound.VariantHealingSimple, "arm", wound.DamageBurning, 80},
		{"fracture below severe", wound.VariantBoneFracture, "arm", wound.DamageBallistic, 35},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.infectious(wound.DifficultyInsane)
			w := f.inflictOn(t, tc.part, tc.variant, wound.Damage{Type: tc.dt, Amount: tc.amount})
			for i := 0; i < 20; i++ {
				w.InfectionTick()
			}
			assert.Nil(t, w.Infection())
		})
	}
}

func TestInfectionTick_LargelyHealedWoundIsSafe(t *testing.T) {
	f := newFixture(t)
	f.infectious(wound.DifficultyInsane)
	w := f.inflict(t, wound.VariantSimpleOrganic, wound.DamageBurning, 90)
	w.Treat(medic, wound.TreatMend, nil, wound.Pass, true)
	w.Treat(medic, wound.TreatMend, nil, wound.Pass, true)
	require.Less(t, w.CurrentDamage(), w.OriginalDamage()/2)
	require.GreaterOrEqual(t, w.Severity(), wound.SeveritySmall)

	w.InfectionTick()
	assert.Nil(t, w.Infection())
}

func TestInfectionTick_Fracture(t *testing.T) {
	f := newFixture(t)
	f.infectious(wound.DifficultyInsane)
	w := f.inflict(t, wound.VariantBoneFracture, wound.DamageBallistic, 45)
	w.InfectionTick()
	assert.NotNil(t, w.Infection(), "open fresh fracture")

	f = newFixture(t)
	f.infectious(wound.DifficultyInsane)
	w = f.inflict(t, wound.VariantBoneFracture, wound.DamageBallistic, 45)
	w.Treat(medic, wound.TreatRelocation, nil, wound.Pass, true)
	w.InfectionTick()
	assert.Nil(t, w.Infection(), "past reaction")
}

func TestInfectionTick_AntisepticProtects(t *testing.T) {
	f := newFixture(t)
	f.infectious(wound.DifficultyInsane)
	w := f.inflict(t, wound.VariantSimpleOrganic, wound.DamageBurning, 35)
	w.Treat(medic, wound.TreatAntiseptic, nil, wound.Pass, true)

	w.InfectionTick()
	assert.Nil(t, w.Infection())

	f.now = f.now.Add(5 * time.Hour)
	w.InfectionTick()
	assert.NotNil(t, w.Infection())
}

func TestInfectionTick_HygieneSuppresses(t *testing.T) {
	tables := wound.DefaultTables()
	tables.CleanSuppression = 1
	tables.AttemptSuppression = 1

	t.Run("cleaned", func(t *testing.T) {
		f := newFixture(t, withTables(tables))
		f.infectious(wound.DifficultyInsane)
		w := f.inflict(t, wound.VariantSimpleOrganic, wound.DamageBurning, 35)
		ow := w.(*wound.OrganicWound)
		w.Treat(medic, wound.TreatClean, nil, wound.Pass, true)

		w.InfectionTick()
		assert.Nil(t, w.Infection())
		assert.False(t, ow.Cleaned(), "spent on suppression")

		w.InfectionTick()
		assert.NotNil(t, w.Infection())
	})
	t.Run("attempted", func(t *testing.T) {
		f := newFixture(t, withTables(tables))
		f.infectious(wound.DifficultyInsane)
		w := f.inflict(t, wound.VariantSimpleOrganic, wound.DamageBurning, 35)
		w.Treat(medic, wound.TreatClean, nil, wound.MinorFail, true)

		w.InfectionTick()
		assert.Nil(t, w.Infection())
		w.InfectionTick()
		assert.NotNil(t, w.Infection())
	})
}

func TestInfectionTick_ResistanceEasesVirulence(t *testing.T) {
	f := newFixture(t)
	f.infectious(wound.DifficultyHard)
	f.body.SetResistances([]body.Resistance{
		{InfectionType: "rot", Rungs: 1},
		{Rungs: 3},
		{InfectionType: "plague", Rungs: 5},
	})
	w := f.inflict(t, wound.VariantSimpleOrganic, wound.DamageBurning, 35)

	w.InfectionTick()

	inf := w.Infection().(*infection.Infection)
	assert.Equal(t, wound.DifficultyVeryEasy, inf.Virulence())
}

func TestInfectionTick_ChanceMultiplierZeroDisables(t *testing.T) {
	f := newFixture(t)
	f.infectious(wound.DifficultyInsane)
	f.body.SetInfectionChanceMultiplier(0)
	w := f.inflict(t, wound.VariantSimpleOrganic, wound.DamageBurning, 35)

	w.InfectionTick()
	assert.Nil(t, w.Infection())
}

func TestOfflineHealing_AdvancesExistingInfection(t *testing.T) {
	f := newFixture(t)
	f.infectious(wound.DifficultyEasy)
	w := f.inflict(t, wound.VariantSimpleOrganic, wound.DamageBurning, 35)
	w.InfectionTick()
	inf := w.Infection().(*infection.Infection)

	// Easy drifts down 0.008 a tick from 1.
	w.DoOfflineHealing(200*time.Minute, 1, 0)

	assert.Nil(t, w.Infection())
	assert.True(t, inf.Deleted())
}
