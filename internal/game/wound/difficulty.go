package wound

import "fmt"

// Difficulty is a rung on the check-difficulty ladder. DifficultyImpossible
// is the sentinel returned by CanBeTreated for inapplicable treatments.
type Difficulty int

const (
	DifficultyAutomatic Difficulty = iota
	DifficultyTrivial
	DifficultyExtremelyEasy
	DifficultyVeryEasy
	DifficultyEasy
	DifficultyNormal
	DifficultyHard
	DifficultyVeryHard
	DifficultyExtremelyHard
	DifficultyInsane
	DifficultyImpossible
)

var difficultyNames = [...]string{
	"automatic", "trivial", "extremely easy", "very easy", "easy", "normal",
	"hard", "very hard", "extremely hard", "insane", "impossible",
}

// String returns the display name of the rung.
func (d Difficulty) String() string {
	if d < 0 || int(d) >= len(difficultyNames) {
		return fmt.Sprintf("difficulty(%d)", int(d))
	}
	return difficultyNames[d]
}

// Possible reports whether d is anything other than DifficultyImpossible.
func (d Difficulty) Possible() bool { return d != DifficultyImpossible }

// Harder returns d escalated by stages rungs, clamped to [Automatic, Insane].
// Impossible stays Impossible.
func (d Difficulty) Harder(stages int) Difficulty {
	if d == DifficultyImpossible {
		return d
	}
	n := int(d) + stages
	if n < int(DifficultyAutomatic) {
		return DifficultyAutomatic
	}
	if n > int(DifficultyInsane) {
		return DifficultyInsane
	}
	return Difficulty(n)
}

// Easier returns d reduced by stages rungs.
func (d Difficulty) Easier(stages int) Difficulty { return d.Harder(-stages) }

// ParseDifficulty maps a display name back to a Difficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	for i, n := range difficultyNames {
		if n == s {
			return Difficulty(i), nil
		}
	}
	return DifficultyImpossible, fmt.Errorf("unknown difficulty %q", s)
}

// baseDifficulty aligns the severity tiers with the difficulty ladder:
// None is Automatic and Horrifying is ExtremelyHard.
func baseDifficulty(s Severity) Difficulty {
	return DifficultyAutomatic.Harder(int(s))
}

// attemptEscalation is one stage per three prior failed treatment attempts.
func attemptEscalation(attempts uint32) int {
	return int(attempts / 3)
}
