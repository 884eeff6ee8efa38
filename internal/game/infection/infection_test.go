package infection_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/mudhealth/internal/game/infection"
	"github.com/cory-johannsen/mudhealth/internal/game/wound"
)

func newInfection(t testing.TB, v wound.Difficulty) *infection.Infection {
	f := infection.NewFactory(infection.DefaultParams(), zap.NewNop())
	inf := f.New(wound.InfectionSpec{Type: "rot", Virulence: v, WoundID: "w1"})
	i, ok := inf.(*infection.Infection)
	require.True(t, ok)
	return i
}

func TestInfection_LowVirulenceHeals(t *testing.T) {
	i := newInfection(t, wound.DifficultyEasy)
	for n := 0; n < 10000 && !i.IsHealed(); n++ {
		i.Tick()
	}
	assert.True(t, i.IsHealed())
	assert.Zero(t, i.Pain())
}

func TestInfection_HighVirulenceGrowsToCap(t *testing.T) {
	i := newInfection(t, wound.DifficultyInsane)
	for n := 0; n < 20000; n++ {
		i.Tick()
	}
	assert.False(t, i.IsHealed())
	assert.Equal(t, infection.DefaultParams().MaxIntensity, i.Intensity())
}

func TestInfection_AdvanceOffline_MatchesTicks(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		v := wound.Difficulty(rapid.IntRange(0, int(wound.DifficultyInsane)).Draw(rt, "virulence"))
		n := rapid.IntRange(0, 2000).Draw(rt, "ticks")
		online := newInfection(t, v)
		offline := newInfection(t, v)
		for k := 0; k < n; k++ {
			online.Tick()
		}
		offline.AdvanceOffline(float64(n))
		assert.InDelta(rt, online.Intensity(), offline.Intensity(), 1e-6)
	})
}

func TestInfection_SnapshotRestore(t *testing.T) {
	f := infection.NewFactory(infection.DefaultParams(), zap.NewNop())
	i := newInfection(t, wound.DifficultyHard)
	i.Tick()
	got, err := f.Restore(i.Snapshot(), "w1", nil)
	require.NoError(t, err)
	assert.Equal(t, i.Snapshot(), got.(*infection.Infection).Snapshot())
}

func TestInfection_RestoreRejectsBadVirulence(t *testing.T) {
	f := infection.NewFactory(infection.DefaultParams(), zap.NewNop())
	_, err := f.Restore(wound.InfectionSnapshot{Type: "rot", Virulence: "spicy"}, "w1", nil)
	assert.Error(t, err)
}

func TestInfection_DeleteIsIdempotent(t *testing.T) {
	i := newInfection(t, wound.DifficultyHard)
	i.Delete()
	i.Delete()
	assert.True(t, i.Deleted())
}

func TestNewFactory_PanicsOnInvalidParams(t *testing.T) {
	p := infection.DefaultParams()
	p.InitialIntensity = 0
	assert.Panics(t, func() { infection.NewFactory(p, zap.NewNop()) })
}
