// internal/engine/victory.go
package engine

// Winner identifies the outcome side of a finished session.
type Winner int

const (
	WinnerNone Winner = iota // no terminal condition, or a draw
	WinnerPlayerA
	WinnerPlayerB
)

// VictoryRules carries the thresholds the victory check evaluates against.
type VictoryRules struct {
	WinningPFH           int
	MaxTurns             int
	MaxConsecutiveLosses int
}

// CheckVictory evaluates the terminal conditions after a battle, in strict
// priority order:
//
//  1. A player whose zero-PFH streak reached the loss threshold loses.
//  2. A player at or above the winning PFH wins.
//  3. At the turn cap, the higher-PFH player wins; equal PFH is a draw.
//
// Only the first matching condition applies. Returns whether the session
// ended and, if so, who won (WinnerNone for a draw).
func CheckVictory(pfhA, pfhB, streakA, streakB, turn int, rules VictoryRules) (bool, Winner) {
	if streakA >= rules.MaxConsecutiveLosses {
		return true, WinnerPlayerB
	}
	if streakB >= rules.MaxConsecutiveLosses {
		return true, WinnerPlayerA
	}

	if pfhA >= rules.WinningPFH {
		return true, WinnerPlayerA
	}
	if pfhB >= rules.WinningPFH {
		return true, WinnerPlayerB
	}

	if turn >= rules.MaxTurns {
		switch {
		case pfhA > pfhB:
			return true, WinnerPlayerA
		case pfhB > pfhA:
			return true, WinnerPlayerB
		default:
			return true, WinnerNone
		}
	}

	return false, WinnerNone
}
