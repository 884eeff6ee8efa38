package body_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cory-johannsen/mudhealth/internal/game/body"
)

func TestDressing_Absorb(t *testing.T) {
	d := body.NewDressing("bandage", 0.1)

	assert.InDelta(t, 0.06, d.Absorb(0.06), 1e-12)
	assert.False(t, d.Saturated())
	assert.InDelta(t, 0.04, d.Absorb(0.06), 1e-12)
	assert.True(t, d.Saturated())
	assert.Zero(t, d.Absorb(1))
	assert.Zero(t, body.NewDressing("rag", 0.1).Absorb(-1))
	assert.True(t, body.NewDressing("scrap", -2).Saturated())
}

func TestSupply_Consume(t *testing.T) {
	s := body.NewSupply("splint", 2)
	s.Consume()
	s.Consume()
	s.Consume()
	assert.Zero(t, s.Uses())
	assert.Equal(t, "splint", s.Name())
}

func TestObject(t *testing.T) {
	a, b := body.NewObject("bullet"), body.NewObject("bullet")
	assert.NotEqual(t, a.ID(), b.ID())
	assert.False(t, a.Deleted())
	a.Delete()
	assert.True(t, a.Deleted())

	r := body.RestoreObject("obj-1", "shard")
	assert.Equal(t, "obj-1", r.ID())
	assert.Equal(t, "shard", r.Name())
}
