package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/mudhealth/internal/game/body"
	"github.com/cory-johannsen/mudhealth/internal/game/dice"
	"github.com/cory-johannsen/mudhealth/internal/game/health"
	"github.com/cory-johannsen/mudhealth/internal/game/infection"
	"github.com/cory-johannsen/mudhealth/internal/game/skill"
	"github.com/cory-johannsen/mudhealth/internal/game/wound"
	"github.com/cory-johannsen/mudhealth/internal/storage/postgres"
	"github.com/cory-johannsen/mudhealth/internal/testutil"
)

var (
	_ body.Store        = (*postgres.WoundRepository)(nil)
	_ body.SessionStore = (*postgres.SessionRepository)(nil)
)

func makeRecord(owner string) wound.Record {
	return wound.Record{
		ID:                uuid.NewString(),
		OwnerID:           owner,
		Bodypart:          "torso",
		Variant:           wound.VariantSimpleOrganic.String(),
		DamageType:        string(wound.DamageSlashing),
		OriginalDamage:    45,
		CurrentDamage:     40,
		CurrentPain:       30,
		CurrentStun:       2,
		TreatmentAttempts: 3,
		TendedOutcome:     wound.Pass.String(),
		ActorOrigin:       "orc",
		ToolOrigin:        "cleaver",
		Extra:             []byte(`{"bleed_status": "bleeding"}`),
	}
}

func TestWoundRepository(t *testing.T) {
	repo := postgres.NewWoundRepository(testutil.NewPool(t))
	ctx := context.Background()

	t.Run("save and get", func(t *testing.T) {
		rec := makeRecord("pc-save")
		require.NoError(t, repo.SaveWound(ctx, rec))

		got, err := repo.GetWound(ctx, rec.ID)
		require.NoError(t, err)
		// jsonb normalises whitespace.
		assert.JSONEq(t, string(rec.Extra), string(got.Extra))
		got.Extra = rec.Extra
		if diff := cmp.Diff(rec, got); diff != "" {
			t.Errorf("record mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("save upserts", func(t *testing.T) {
		rec := makeRecord("pc-upsert")
		require.NoError(t, repo.SaveWound(ctx, rec))
		rec.CurrentDamage = 12
		rec.Extra = nil
		require.NoError(t, repo.SaveWound(ctx, rec))

		recs, err := repo.WoundsByOwner(ctx, "pc-upsert")
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, 12.0, recs[0].CurrentDamage)
		assert.JSONEq(t, `{}`, string(recs[0].Extra))
	})

	t.Run("delete tolerates misses", func(t *testing.T) {
		rec := makeRecord("pc-delete")
		require.NoError(t, repo.SaveWound(ctx, rec))
		require.NoError(t, repo.DeleteWound(ctx, rec.ID))
		require.NoError(t, repo.DeleteWound(ctx, rec.ID))

		_, err := repo.GetWound(ctx, rec.ID)
		assert.ErrorIs(t, err, postgres.ErrWoundNotFound)
	})

	t.Run("owners are isolated", func(t *testing.T) {
		require.NoError(t, repo.SaveWound(ctx, makeRecord("pc-a")))
		require.NoError(t, repo.SaveWound(ctx, makeRecord("pc-a")))
		require.NoError(t, repo.SaveWound(ctx, makeRecord("pc-b")))

		a, err := repo.WoundsByOwner(ctx, "pc-a")
		require.NoError(t, err)
		assert.Len(t, a, 2)
		none, err := repo.WoundsByOwner(ctx, "pc-nobody")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("body round trip", func(t *testing.T) {
		logger := zap.NewNop()
		env := wound.NewEnv(wound.DefaultTables(), skill.FixedChecker{Outcome: wound.Pass},
			dice.NewLoggedRoller(dice.NewSeededSource(5), logger),
			infection.NewFactory(infection.DefaultParams(), logger), logger)
		newBody := func() *body.Body {
			return body.New(body.Options{ID: "pc-body", Template: body.Humanoid(), Env: env, Strategy: health.DefaultStrategy()})
		}

		b := newBody()
		d := wound.Damage{Type: wound.DamagePiercing, Amount: 50, Pain: 50, Lodged: body.NewObject("bolt")}
		w, err := b.InflictOn("left_leg", d)
		require.NoError(t, err)
		require.NoError(t, b.Flush(ctx, repo))

		again := newBody()
		require.NoError(t, again.Load(ctx, repo))
		require.Len(t, again.Wounds(), 1)
		back := again.Wounds()[0]
		assert.Equal(t, w.BleedStatus(), back.BleedStatus())
		assert.InDelta(t, w.CurrentDamage(), back.CurrentDamage(), 1e-9)
		require.NotNil(t, back.Lodged())
		assert.Equal(t, "bolt", back.Lodged().Name())
	})

	t.Run("damage values survive storage", func(t *testing.T) {
		rapid.Check(t, func(rt *rapid.T) {
			rec := makeRecord("pc-prop")
			rec.CurrentDamage = rapid.Float64Range(0, 1000).Draw(rt, "damage")
			rec.TreatmentAttempts = rapid.Uint32Range(0, 1<<20).Draw(rt, "attempts")
			require.NoError(rt, repo.SaveWound(ctx, rec))
			got, err := repo.GetWound(ctx, rec.ID)
			require.NoError(rt, err)
			assert.Equal(rt, rec.CurrentDamage, got.CurrentDamage)
			assert.Equal(rt, rec.TreatmentAttempts, got.TreatmentAttempts)
		})
	})
}

func TestSessionRepository(t *testing.T) {
	repo := postgres.NewSessionRepository(testutil.NewPool(t))
	ctx := context.Background()

	_, err := repo.Get(ctx, "pc-1")
	assert.ErrorIs(t, err, postgres.ErrSessionNotFound)

	seen := time.Date(2026, 5, 1, 8, 30, 0, 0, time.UTC)
	require.NoError(t, repo.Save(ctx, body.Session{OwnerID: "pc-1", TemplateID: "humanoid", Blood: 4.2, LastSeen: seen}))
	require.NoError(t, repo.Save(ctx, body.Session{OwnerID: "pc-1", TemplateID: "humanoid", Blood: 3.9, LastSeen: seen.Add(time.Hour)}))

	got, err := repo.Get(ctx, "pc-1")
	require.NoError(t, err)
	assert.Equal(t, 3.9, got.Blood)
	assert.True(t, seen.Add(time.Hour).Equal(got.LastSeen))

	require.NoError(t, repo.Save(ctx, body.Session{OwnerID: "pc-0", TemplateID: "android", Blood: 0, LastSeen: seen}))
	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "pc-0", all[0].OwnerID)
	assert.Equal(t, "android", all[0].TemplateID)

	require.NoError(t, repo.Delete(ctx, "pc-1"))
	require.NoError(t, repo.Delete(ctx, "pc-1"))
	_, err = repo.Get(ctx, "pc-1")
	assert.ErrorIs(t, err, postgres.ErrSessionNotFound)
}
