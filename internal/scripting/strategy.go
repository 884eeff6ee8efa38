package scripting

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/cory-johannsen/mudhealth/internal/game/wound"
)

// HealingQuantumHook is the Lua global a health script defines:
//
//	function healing_quantum(kind, outcome, severity, current) return n end
//
// kind is "damage", "pain" or "stun"; outcome and severity are display
// names; current is the wound's current value of kind.
const HealingQuantumHook = "healing_quantum"

// Strategy adapts a scope's healing_quantum hook to health.Provider. It
// declines whenever the hook is missing, errors, or returns a non-number.
type Strategy struct {
	mgr   *Manager
	scope string
}

// NewStrategy returns a Strategy calling into scope.
//
// Precondition: mgr must be non-nil.
func NewStrategy(mgr *Manager, scope string) *Strategy {
	if mgr == nil {
		panic("scripting.NewStrategy: mgr must be non-nil")
	}
	return &Strategy{mgr: mgr, scope: scope}
}

func current(w wound.Wound, kind wound.HealKind) float64 {
	switch kind {
	case wound.HealDamage:
		return w.CurrentDamage()
	case wound.HealPain:
		return w.CurrentPain()
	case wound.HealStun:
		return w.CurrentStun()
	default:
		return 0
	}
}

// Quantum implements health.Provider.
func (s *Strategy) Quantum(w wound.Wound, o wound.Outcome, kind wound.HealKind) (float64, bool) {
	if w == nil {
		return 0, false
	}
	ret, err := s.mgr.CallHook(s.scope, HealingQuantumHook,
		lua.LString(kind.String()),
		lua.LString(o.String()),
		lua.LString(w.Severity().String()),
		lua.LNumber(current(w, kind)),
	)
	if err != nil {
		return 0, false
	}
	n, ok := ret.(lua.LNumber)
	if !ok || float64(n) < 0 {
		return 0, false
	}
	return float64(n), true
}
