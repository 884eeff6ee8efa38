package wound

import (
	"fmt"
	"math"

	"go.uber.org/zap"
)

// bleedEdges is the complete transition relation of the bleed machine.
var bleedEdges = map[BleedStatus][]BleedStatus{
	NeverBled:        {Bleeding},
	Bleeding:         {TraumaControlled},
	TraumaControlled: {Closed, Bleeding},
	Closed:           {TraumaControlled},
}

// CanTransition reports whether from -> to is an edge of the bleed machine.
func CanTransition(from, to BleedStatus) bool {
	for _, e := range bleedEdges[from] {
		if e == to {
			return true
		}
	}
	return false
}

// bleeder is the bleed state shared by organic and robot wounds.
type bleeder struct {
	status BleedStatus
}

// move performs from -> to if it is a legal edge.
//
// Postcondition: Returns true iff the status changed.
func (b *bleeder) move(to BleedStatus) bool {
	if !CanTransition(b.status, to) {
		return false
	}
	b.status = to
	return true
}

// reopen reverts one stage toward Bleeding.
func (b *bleeder) reopen() bool {
	switch b.status {
	case Closed:
		return b.move(TraumaControlled)
	case TraumaControlled:
		return b.move(Bleeding)
	default:
		return false
	}
}

// worsen is applied when fresh damage lands on an already-existing wound
// that meets the onset threshold.
func (b *bleeder) worsen() bool {
	switch b.status {
	case NeverBled:
		return b.move(Bleeding)
	default:
		return b.reopen()
	}
}

// meetsOnset reports whether a wound of damage type dt and severity s on an
// external part starts bleeding.
func meetsOnset(t *Tables, dt DamageType, s Severity, internal bool) bool {
	if internal {
		return false
	}
	p := t.Profile(dt)
	return p.Bleeds && s >= p.BleedOnset
}

// bleedTick runs one bleed heartbeat for c with bleed state b.
func (c *core) bleedTick(b *bleeder, currentBlood float64, exertion Exertion, totalBlood float64) BleedResult {
	t := c.env.Tables
	switch b.status {
	case NeverBled:
		return BleedResult{}
	case Bleeding:
		sev := c.self.Severity()
		scale := math.Max(0, float64(int(sev)+int(exertion)-t.BleedSeverityOffset))
		if scale == 0 {
			return BleedResult{}
		}
		volume := math.Max(currentBlood, t.BloodVolumeFloor*totalBlood)
		amount := scale * t.BleedPercentPerSeverity * c.part.BleedModifier * volume
		if c.owner.IsBound(c.part) {
			amount *= t.BoundMultiplier
		}
		if amount <= 0 {
			return BleedResult{}
		}
		res := BleedResult{Leaked: amount, Visible: true}
		remaining := amount
		for _, a := range c.owner.Absorbers(c.part) {
			if remaining <= 0 {
				break
			}
			got := math.Min(remaining, math.Max(0, a.Absorb(remaining)))
			res.Absorbed += got
			remaining -= got
		}
		if res.Absorbed > 0 {
			res.Visible = false
		}
		return res
	case TraumaControlled, Closed:
		if exertion < t.ReopenThreshold {
			return BleedResult{}
		}
		chance := float64((int(exertion)+int(c.self.Severity())-t.ReopenOffset)*2) / 100
		if chance <= 0 || !c.env.Roller.Chance(chance) {
			return BleedResult{}
		}
		from := b.status
		if !b.reopen() {
			return BleedResult{}
		}
		c.env.Logger.Debug("wound reopened",
			zap.String("wound", c.id),
			zap.String("from", from.String()),
			zap.String("to", b.status.String()),
			zap.Float64("chance", chance),
		)
		c.changed()
		return BleedResult{Reopened: true}
	default:
		panic(fmt.Sprintf("wound: unhandled bleed status %d", int(b.status)))
	}
}

// naturalClosure closes a trauma-controlled wound once it has healed to the
// configured severity.
func (c *core) naturalClosure(b *bleeder) {
	if b.status == TraumaControlled && c.self.Severity() <= c.env.Tables.NaturalClosure {
		b.move(Closed)
	}
}
