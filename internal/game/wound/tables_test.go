package wound_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/mudhealth/internal/game/wound"
)

func TestDefaultTables_Valid(t *testing.T) {
	require.NoError(t, wound.DefaultTables().Validate())
}

func TestParseTables_Overrides(t *testing.T) {
	data := []byte(`
tick_interval: 30s
damage_types:
  slashing:
    bleed_onset: severe
  acid:
    infection_multiplier: 0.5
    noun: acid burn
stages:
  reparation:
    base_length: 100
organic_tend:
  pass: 3
healing:
  natural_closure: minor
bleed:
  bound_multiplier: 0.25
infection:
  base_chance: 0.01
treatment:
  mishap_damage: 2d6
glance_threshold: severe
`)
	tab, err := wound.ParseTables(data)
	require.NoError(t, err)

	def := wound.DefaultTables()
	assert.Equal(t, 30*time.Second, tab.TickInterval)
	assert.Equal(t, wound.SeveritySevere, tab.Profile(wound.DamageSlashing).BleedOnset)
	assert.Equal(t, def.Profile(wound.DamageSlashing).TraumaEscalation, tab.Profile(wound.DamageSlashing).TraumaEscalation)
	assert.Equal(t, "acid burn", tab.Profile("acid").Noun)
	assert.Equal(t, 0.5, tab.Profile("acid").InfectionMultiplier)
	assert.Equal(t, 100.0, tab.Stages[wound.StageReparation].BaseLength)
	assert.Equal(t, def.Stages[wound.StageOssification], tab.Stages[wound.StageOssification])
	assert.Equal(t, 3.0, tab.OrganicTend[wound.Pass])
	assert.Equal(t, def.RecoveryTend, tab.RecoveryTend)
	assert.Equal(t, wound.SeverityMinor, tab.NaturalClosure)
	assert.Equal(t, 0.25, tab.BoundMultiplier)
	assert.Equal(t, 0.01, tab.InfectionBaseChance)
	assert.Equal(t, "2d6", tab.MishapDamage)
	assert.Equal(t, wound.SeveritySevere, tab.GlanceThreshold)
	assert.Equal(t, 0.5, tab.TickMinutes())
}

func TestParseTables_Empty(t *testing.T) {
	tab, err := wound.ParseTables(nil)
	require.NoError(t, err)
	assert.Equal(t, wound.DefaultTables(), tab)
}

func TestParseTables_Rejects(t *testing.T) {
	cases := map[string]string{
		"unknown field":       "tick_rate: 1m\n",
		"bad duration":        "tick_interval: soon\n",
		"bad severity":        "glance_threshold: enormous\n",
		"bad outcome":         "organic_tend:\n  great: 2\n",
		"bad stage":           "stages:\n  knitting:\n    base_length: 1\n",
		"suppression range":   "infection:\n  clean_suppression: 2\n",
		"bad mishap dice":     "treatment:\n  mishap_damage: lots\n",
		"healing mishap":      "treatment:\n  mishap_damage: 1d4-5\n",
		"short severity list": "infection:\n  severity_multipliers: [1, 2]\n",
		"zero stage":          "stages:\n  trauma:\n    base_length: 0\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := wound.ParseTables([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadTables(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wounds.yaml")
	require.NoError(t, os.WriteFile(path, []byte("healing:\n  sleep_multiplier: 2\n"), 0o644))

	tab, err := wound.LoadTables(path)
	require.NoError(t, err)
	assert.Equal(t, 2.0, tab.SleepMultiplier)

	_, err = wound.LoadTables(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestSeverity_Step(t *testing.T) {
	assert.Equal(t, wound.SeverityNone, wound.SeverityMinor.Step(-5))
	assert.Equal(t, wound.SeverityHorrifying, wound.SeveritySevere.Step(10))
	assert.Equal(t, wound.SeveritySmall, wound.SeverityModerate.Step(-1))
}

func TestDifficulty_Harder(t *testing.T) {
	assert.Equal(t, wound.DifficultyInsane, wound.DifficultyHard.Harder(20))
	assert.Equal(t, wound.DifficultyAutomatic, wound.DifficultyEasy.Easier(20))
	assert.Equal(t, wound.DifficultyImpossible, wound.DifficultyImpossible.Easier(3))
	assert.False(t, wound.DifficultyImpossible.Possible())
}

func TestParseNames(t *testing.T) {
	for _, tr := range wound.AllTreatments {
		got, err := wound.ParseTreatment(tr.String())
		require.NoError(t, err)
		assert.Equal(t, tr, got)
	}
	for o := wound.OutcomeNone; o <= wound.MajorPass; o++ {
		got, err := wound.ParseOutcome(o.String())
		require.NoError(t, err)
		assert.Equal(t, o, got)
	}
	for d := wound.DifficultyAutomatic; d <= wound.DifficultyImpossible; d++ {
		got, err := wound.ParseDifficulty(d.String())
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}
	for s := wound.SeverityNone; s <= wound.SeverityHorrifying; s++ {
		got, err := wound.ParseSeverity(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := wound.ParseTreatment("leeches")
	assert.Error(t, err)
}

func TestParseExertion(t *testing.T) {
	for e := wound.ExertionStasis; e <= wound.ExertionExtremelyHeavy; e++ {
		got, err := wound.ParseExertion(e.String())
		require.NoError(t, err)
		assert.Equal(t, e, got)
	}
	_, err := wound.ParseExertion("sprinting")
	assert.Error(t, err)
	assert.Equal(t, "exertion(42)", wound.Exertion(42).String())
}
