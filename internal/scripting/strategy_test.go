package scripting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/mudhealth/internal/game/body"
	"github.com/cory-johannsen/mudhealth/internal/game/dice"
	"github.com/cory-johannsen/mudhealth/internal/game/health"
	"github.com/cory-johannsen/mudhealth/internal/game/infection"
	"github.com/cory-johannsen/mudhealth/internal/game/skill"
	"github.com/cory-johannsen/mudhealth/internal/game/wound"
	"github.com/cory-johannsen/mudhealth/internal/scripting"
)

const quantumScript = `
function healing_quantum(kind, outcome, severity, current)
	if kind == "damage" and outcome == "pass" then
		if severity == "severe" then
			return current / 10
		end
		return 2
	end
	if kind == "stun" then
		return "lots"
	end
	if kind == "pain" and outcome == "major pass" then
		return -1
	end
	return nil
end
`

func scriptedWound(t *testing.T, strategy wound.HealthStrategy) (*body.Body, wound.Wound) {
	t.Helper()
	logger := zap.NewNop()
	env := wound.NewEnv(wound.DefaultTables(), skill.FixedChecker{Outcome: wound.Pass},
		dice.NewLoggedRoller(dice.NewSeededSource(3), logger),
		infection.NewFactory(infection.DefaultParams(), logger), logger)
	b := body.New(body.Options{ID: "pc-9", Template: body.Humanoid(), Env: env, Strategy: strategy})
	w, err := b.InflictOn("torso", wound.Damage{Type: wound.DamageBurning, Amount: 45, Pain: 20, Stun: 4})
	require.NoError(t, err)
	return b, w
}

func TestStrategy_Quantum(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.LoadScope("humanoid", writeTempLua(t, "health.lua", quantumScript), 0))
	s := scripting.NewStrategy(mgr, "humanoid")
	_, w := scriptedWound(t, health.DefaultStrategy())

	q, ok := s.Quantum(w, wound.Pass, wound.HealDamage)
	require.True(t, ok)
	assert.InDelta(t, 4.5, q, 1e-9)

	_, ok = s.Quantum(w, wound.Pass, wound.HealStun)
	assert.False(t, ok, "non-number declines")
	_, ok = s.Quantum(w, wound.MajorPass, wound.HealPain)
	assert.False(t, ok, "negative declines")
	_, ok = s.Quantum(w, wound.Fail, wound.HealDamage)
	assert.False(t, ok, "nil declines")
	_, ok = s.Quantum(nil, wound.Pass, wound.HealDamage)
	assert.False(t, ok)
}

func TestStrategy_MissingScopeDeclines(t *testing.T) {
	mgr, _ := newTestManager(t)
	_, w := scriptedWound(t, health.DefaultStrategy())
	_, ok := scripting.NewStrategy(mgr, "nowhere").Quantum(w, wound.Pass, wound.HealDamage)
	assert.False(t, ok)
}

func TestStrategy_DrivesHealingThroughFallback(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.LoadScope("humanoid", writeTempLua(t, "health.lua", quantumScript), 0))
	strategy := health.Fallback{Primary: scripting.NewStrategy(mgr, "humanoid"), Secondary: health.DefaultStrategy()}
	_, w := scriptedWound(t, strategy)

	w.HealingTick(1, 0)

	// The script heals a tenth of a severe wound; stun falls back to the table.
	assert.InDelta(t, 40.5, w.CurrentDamage(), 1e-9)
	assert.InDelta(t, 3, w.CurrentStun(), 1e-9)
}

func TestNewStrategy_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { scripting.NewStrategy(nil, "x") })
}
