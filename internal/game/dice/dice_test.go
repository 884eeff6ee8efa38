package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/mudhealth/internal/game/dice"
)

func TestParse(t *testing.T) {
	cases := map[string]dice.Expr{
		"1d4":      {Count: 1, Sides: 4},
		"d6":       {Count: 1, Sides: 6},
		"2D6":      {Count: 2, Sides: 6},
		"1d4+1":    {Count: 1, Sides: 4, Modifier: 1},
		"3d6 - 2":  {Count: 3, Sides: 6, Modifier: -2},
		" 10d10 ":  {Count: 10, Sides: 10},
		"100d2+50": {Count: 100, Sides: 2, Modifier: 50},
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			got, err := dice.Parse(in)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestParse_Rejects(t *testing.T) {
	for _, in := range []string{"", "lots", "4", "d", "0d6", "2d1", "2d0", "101d6", "2d6+", "1d4+1d4", "4d6kh3", "-1d4"} {
		t.Run(in, func(t *testing.T) {
			_, err := dice.Parse(in)
			assert.Error(t, err)
		})
	}
}

func TestExpr_Bounds(t *testing.T) {
	e, err := dice.Parse("2d6-1")
	require.NoError(t, err)
	assert.Equal(t, 1, e.Min())
	assert.Equal(t, 11, e.Max())
	assert.Equal(t, "2d6-1", e.String())

	mishap, err := dice.Parse("d4")
	require.NoError(t, err)
	assert.Equal(t, "1d4", mishap.String())
	assert.Equal(t, 1, mishap.Min())
}

// The default mishap expression lands on every face of a d4.
func TestRoller_MishapCoversFaces(t *testing.T) {
	r := dice.NewLoggedRoller(dice.NewSeededSource(21), zap.NewNop())
	seen := map[int]int{}
	for i := 0; i < 400; i++ {
		res, err := r.RollExpr("1d4")
		require.NoError(t, err)
		require.Len(t, res.Dice, 1)
		seen[res.Total()]++
	}
	assert.Len(t, seen, 4)
	for face := 1; face <= 4; face++ {
		assert.Positive(t, seen[face], "face %d", face)
	}
}

func TestRoller_Roll_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		e := dice.Expr{
			Count:    rapid.IntRange(1, 20).Draw(rt, "count"),
			Sides:    rapid.IntRange(2, 20).Draw(rt, "sides"),
			Modifier: rapid.IntRange(-10, 10).Draw(rt, "modifier"),
		}
		r := dice.NewLoggedRoller(dice.NewSeededSource(rapid.Int64().Draw(rt, "seed")), zap.NewNop())
		res := r.Roll(e)

		assert.Len(rt, res.Dice, e.Count)
		for _, d := range res.Dice {
			assert.GreaterOrEqual(rt, d, 1)
			assert.LessOrEqual(rt, d, e.Sides)
		}
		assert.GreaterOrEqual(rt, res.Total(), e.Min())
		assert.LessOrEqual(rt, res.Total(), e.Max())
		assert.Equal(rt, e.String(), res.Expr)

		back, err := dice.Parse(res.Expr)
		require.NoError(rt, err)
		assert.Equal(rt, e, back)
	})
}

func TestResult_Total(t *testing.T) {
	assert.Equal(t, 12, dice.Result{Dice: []int{4, 5}, Modifier: 3}.Total())
	assert.Equal(t, -2, dice.Result{Modifier: -2}.Total())
}

func TestCryptoSource_Intn_InRange(t *testing.T) {
	src := dice.NewCryptoSource()
	for i := 0; i < 1000; i++ {
		v := src.Intn(6)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 6)
	}
}

func TestCryptoSource_Intn_PanicsOnZero(t *testing.T) {
	assert.Panics(t, func() { dice.NewCryptoSource().Intn(0) })
}
