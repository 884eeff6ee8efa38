package wound_test

import (
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/mudhealth/internal/game/body"
	"github.com/cory-johannsen/mudhealth/internal/game/dice"
	"github.com/cory-johannsen/mudhealth/internal/game/health"
	"github.com/cory-johannsen/mudhealth/internal/game/infection"
	"github.com/cory-johannsen/mudhealth/internal/game/skill"
	"github.com/cory-johannsen/mudhealth/internal/game/wound"
)

// tb is the subset of testing.TB that *rapid.T also satisfies.
type tb interface {
	Helper()
	Errorf(format string, args ...any)
	FailNow()
}

var allVariants = []wound.Variant{
	wound.VariantSimple,
	wound.VariantSimpleOrganic,
	wound.VariantRobot,
	wound.VariantBoneFracture,
	wound.VariantHealingSimple,
}

type fixture struct {
	env  *wound.Env
	body *body.Body
	logs *observer.ObservedLogs
	now  time.Time
}

type fixtureOpt func(*fixtureConfig)

type fixtureConfig struct {
	tables  *wound.Tables
	checker wound.Checker
	seed    int64
}

func withTables(t *wound.Tables) fixtureOpt { return func(c *fixtureConfig) { c.tables = t } }
func withChecker(ch wound.Checker) fixtureOpt {
	return func(c *fixtureConfig) { c.checker = ch }
}
func withSeed(s int64) fixtureOpt { return func(c *fixtureConfig) { c.seed = s } }

func testStrategy() *health.TableStrategy {
	return &health.TableStrategy{
		Name:   "test",
		Damage: health.Quanta{MinorPass: 0.5, Pass: 1, MajorPass: 2},
		Pain:   health.Quanta{MinorPass: 0.5, Pass: 1, MajorPass: 2},
		Stun:   health.Quanta{MinorPass: 1, Pass: 2, MajorPass: 4},
	}
}

func testTemplate() *body.Template {
	part := func(id string, organ bool) wound.Bodypart {
		return wound.Bodypart{
			ID: id, Name: id, Capacity: 100,
			DamageModifier: 1, PainModifier: 1, StunModifier: 1, BleedModifier: 1,
			Organ: organ,
		}
	}
	return &body.Template{
		ID:          "test",
		Name:        "Test",
		BloodVolume: 5,
		NeedsBreath: true,
		Parts:       []wound.Bodypart{part("arm", false), part("leg", false), part("heart", true)},
	}
}

func newFixture(t tb, opts ...fixtureOpt) *fixture {
	t.Helper()
	cfg := fixtureConfig{
		tables:  wound.DefaultTables(),
		checker: skill.FixedChecker{Outcome: wound.Pass},
		seed:    1,
	}
	for _, o := range opts {
		o(&cfg)
	}
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	roller := dice.NewLoggedRoller(dice.NewSeededSource(cfg.seed), zap.NewNop())
	env := wound.NewEnv(cfg.tables, cfg.checker, roller,
		infection.NewFactory(infection.DefaultParams(), logger), logger)
	f := &fixture{env: env, logs: logs, now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	f.body = body.New(body.Options{
		ID:       "b1",
		Template: testTemplate(),
		Env:      env,
		Strategy: testStrategy(),
		Clock:    func() time.Time { return f.now },
	})
	return f
}

func (f *fixture) part(t tb, id string) *wound.Bodypart {
	t.Helper()
	p, ok := f.body.Part(id)
	require.True(t, ok, "part %s", id)
	return p
}

func (f *fixture) inflict(t tb, v wound.Variant, dt wound.DamageType, amount float64) wound.Wound {
	t.Helper()
	return f.inflictOn(t, "arm", v, wound.Damage{Type: dt, Amount: amount})
}

// inflictOn fills in pain, stun and origin when d leaves them zero.
func (f *fixture) inflictOn(t tb, part string, v wound.Variant, d wound.Damage) wound.Wound {
	t.Helper()
	d.Bodypart = f.part(t, part)
	if d.Pain == 0 {
		d.Pain = d.Amount
	}
	if d.Stun == 0 {
		d.Stun = d.Amount / 2
	}
	if d.ActorID == "" {
		d.ActorID = "attacker"
	}
	w, err := f.body.Inflict(v, d)
	require.NoError(t, err)
	return w
}

// infectious makes every eligible infection roll succeed.
func (f *fixture) infectious(v wound.Difficulty) {
	f.body.SetTerrain(wound.Terrain{InfectionMultiplier: 1e7, InfectionType: "rot", Virulence: v})
}

type actor string

func (a actor) ID() string { return string(a) }

const medic = actor("medic")

func newObject(name string) *body.Object { return body.NewObject(name) }
