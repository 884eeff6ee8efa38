package dice

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// maxDice bounds Count so a config typo cannot stall a tick.
const maxDice = 100

var exprPattern = regexp.MustCompile(`^(\d*)d(\d+)([+-]\d+)?$`)

// Expr is a parsed NdS+M expression.
type Expr struct {
	Count    int
	Sides    int
	Modifier int
}

// Parse reads "d4", "2d6", "1d4+1" or "3d6-2". Whitespace and case are
// ignored.
func Parse(s string) (Expr, error) {
	norm := strings.ToLower(strings.Join(strings.Fields(s), ""))
	m := exprPattern.FindStringSubmatch(norm)
	if m == nil {
		return Expr{}, fmt.Errorf("dice: %q is not an NdS+M expression", s)
	}
	e := Expr{Count: 1}
	if m[1] != "" {
		e.Count, _ = strconv.Atoi(m[1])
	}
	e.Sides, _ = strconv.Atoi(m[2])
	if m[3] != "" {
		e.Modifier, _ = strconv.Atoi(m[3])
	}
	switch {
	case e.Count < 1 || e.Count > maxDice:
		return Expr{}, fmt.Errorf("dice: %q: count must be in [1, %d]", s, maxDice)
	case e.Sides < 2:
		return Expr{}, fmt.Errorf("dice: %q: a die needs at least 2 sides", s)
	}
	return e, nil
}

// Min is the lowest total the expression can roll.
func (e Expr) Min() int { return e.Count + e.Modifier }

// Max is the highest total the expression can roll.
func (e Expr) Max() int { return e.Count*e.Sides + e.Modifier }

// String renders e in canonical form.
func (e Expr) String() string {
	if e.Modifier == 0 {
		return fmt.Sprintf("%dd%d", e.Count, e.Sides)
	}
	return fmt.Sprintf("%dd%d%+d", e.Count, e.Sides, e.Modifier)
}

func (e Expr) roll(src Source) Result {
	res := Result{Expr: e.String(), Dice: make([]int, e.Count), Modifier: e.Modifier}
	for i := range res.Dice {
		res.Dice[i] = src.Intn(e.Sides) + 1
	}
	return res
}
