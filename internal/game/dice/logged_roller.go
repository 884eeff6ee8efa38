package dice

import "go.uber.org/zap"

// chanceResolution is the granularity of percent-chance rolls.
const chanceResolution = 1_000_000

// Roller draws from a Source and logs what it drew.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	if src == nil || logger == nil {
		panic("dice.NewLoggedRoller: src and logger must be non-nil")
	}
	return &Roller{src: src, logger: logger}
}

// Roll rolls e and logs the dice at debug level.
func (r *Roller) Roll(e Expr) Result {
	res := e.roll(r.src)
	r.logger.Debug("dice roll",
		zap.String("expression", res.Expr),
		zap.Ints("dice", res.Dice),
		zap.Int("modifier", res.Modifier),
		zap.Int("total", res.Total()),
	)
	return res
}

// RollExpr parses s and rolls it.
func (r *Roller) RollExpr(s string) (Result, error) {
	e, err := Parse(s)
	if err != nil {
		return Result{}, err
	}
	return r.Roll(e), nil
}

// Float64 returns a uniform value in [0, 1).
func (r *Roller) Float64() float64 {
	return float64(r.src.Intn(chanceResolution)) / chanceResolution
}

// Chance reports true with probability p. Values of p outside (0, 1) are
// clamped: p <= 0 never fires and p >= 1 always does.
func (r *Roller) Chance(p float64) bool {
	switch {
	case p <= 0:
		return false
	case p >= 1:
		return true
	}
	return r.Float64() < p
}

// Percentile rolls 1d100.
//
// Postcondition: return value is in [1, 100].
func (r *Roller) Percentile() int {
	v := r.src.Intn(100) + 1
	r.logger.Debug("percentile roll", zap.Int("total", v))
	return v
}
