// internal/engine/payoff.go
package engine

// Strategy is one of the three per-turn stances.
type Strategy string

const (
	StrategySubmission  Strategy = "V"
	StrategyCooperation Strategy = "C"
	StrategyWar         Strategy = "G"
)

// Valid reports whether s is one of the three known strategies.
func (s Strategy) Valid() bool {
	switch s {
	case StrategySubmission, StrategyCooperation, StrategyWar:
		return true
	}
	return false
}

// Payoff coefficients. These are fixed rule parameters, not tunables.
const (
	coefA = 0.0 // submission vs submission, share kept by opponent
	coefB = 0.0 // submission vs submission, share received back
	coefC = 0.2 // cooperation growth factor
	coefD = 0.2 // war attrition factor
	coefE = 0.3 // transfer rate on an asymmetric outcome
	coefF = 0.8 // cooperation split in favor of the cooperator
)

// Gains evaluates the payoff matrix for one battle.
//
// x and y are the players' effective values for the turn (the drawn card's
// PFH, replaced by the sacrifice card's PFH when a sacrifice was made).
// Every formula is computed in floating point, truncated toward zero, has the
// sacrifice cost deducted for a sacrificing player, and is finally clamped
// at zero. The result is each player's PFH gain for the turn.
func Gains(s1, s2 Strategy, x, y int, sacrificed1, sacrificed2 bool, sacrificeCost int) (int, int) {
	fx, fy := float64(x), float64(y)

	var g1, g2 int
	switch {
	case s1 == StrategySubmission && s2 == StrategySubmission:
		g1 = int((1-coefA)*fx + coefB*fy)
		g2 = int(coefA*fx + (1-coefB)*fy)
	case s1 == StrategySubmission && s2 == StrategyCooperation:
		g1 = int(fx + (1-coefF)*coefC*(fx+fy))
		g2 = int(fy + coefF*coefC*(fx+fy))
	case s1 == StrategySubmission && s2 == StrategyWar:
		g1 = int((1 - coefE) * fx)
		g2 = int(fy + coefE*fx)
	case s1 == StrategyCooperation && s2 == StrategySubmission:
		g1 = int(fx + coefF*coefC*(fx+fy))
		g2 = int(fy + (1-coefF)*coefC*(fx+fy))
	case s1 == StrategyCooperation && s2 == StrategyCooperation:
		g1 = int((1 + coefC) * fx)
		g2 = int((1 + coefC) * fy)
	case s1 == StrategyCooperation && s2 == StrategyWar:
		g1 = int((1 - coefE) * (1 + coefC) * fx)
		g2 = int((1 + coefC) * (fy + coefE*fx))
	case s1 == StrategyWar && s2 == StrategySubmission:
		g1 = int(fx + coefE*fy)
		g2 = int((1 - coefE) * fy)
	case s1 == StrategyWar && s2 == StrategyCooperation:
		g1 = int((1 + coefC) * (fx + coefE*fy))
		g2 = int((1 - coefE) * (1 + coefC) * fy)
	case s1 == StrategyWar && s2 == StrategyWar:
		// The stronger side raids the weaker; equal values only attrit.
		var takeX, takeY float64
		if fx > fy {
			takeX = 1
		} else if fy > fx {
			takeY = 1
		}
		g1 = int((1-coefD)*fx + coefE*fy*takeX - coefE*fx*takeY)
		g2 = int((1-coefD)*fy + coefE*fx*takeY - coefE*fy*takeX)
	}

	if sacrificed1 {
		g1 -= sacrificeCost
	}
	if sacrificed2 {
		g2 -= sacrificeCost
	}

	return clampZero(g1), clampZero(g2)
}

func clampZero(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
