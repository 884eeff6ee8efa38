package body

import (
	"math"

	"github.com/cory-johannsen/mudhealth/internal/game/wound"
)

// Thresholds are the damage/capacity ratios at which each severity tier
// begins, indexed by severity.
type Thresholds [wound.SeverityHorrifying + 1]float64

// DefaultThresholds returns the compiled-in classification ratios.
func DefaultThresholds() Thresholds {
	return Thresholds{0, 0.0001, 0.1, 0.2, 0.3, 0.4, 0.55, 0.7, 0.85}
}

// Classify maps damage on a part of capacity to a tier.
//
// Postcondition: damage <= 0 always classifies as SeverityNone.
func (th Thresholds) Classify(damage, capacity float64) wound.Severity {
	if damage <= 0 || capacity <= 0 {
		return wound.SeverityNone
	}
	// Floor(capacity, s, true) must classify as s.
	for s := wound.SeverityHorrifying; s > wound.SeverityNone; s-- {
		if damage >= th[s]*capacity {
			return s
		}
	}
	return wound.SeverityNone
}

// Floor maps tier s back to a damage value on a part of capacity. Exact
// returns the lowest damage that classifies as s; otherwise the midpoint of
// the tier.
func (th Thresholds) Floor(capacity float64, s wound.Severity, exact bool) float64 {
	if s <= wound.SeverityNone {
		return 0
	}
	if s > wound.SeverityHorrifying {
		s = wound.SeverityHorrifying
	}
	lo := th[s] * capacity
	if exact {
		return lo
	}
	hi := capacity
	if s < wound.SeverityHorrifying {
		hi = th[s+1] * capacity
	}
	return math.Max(lo, (lo+hi)/2)
}
