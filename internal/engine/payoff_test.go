// internal/engine/payoff_test.go
package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGainsCooperationPair(t *testing.T) {
	// (C, C) with X=Y=100 and c=0.2 grows both sides by 20%.
	g1, g2 := Gains(StrategyCooperation, StrategyCooperation, 100, 100, false, false, 14)
	assert.Equal(t, 120, g1)
	assert.Equal(t, 120, g2)
}

func TestGainsSubmissionPair(t *testing.T) {
	// With a=b=0, mutual submission leaves each side holding its own value.
	g1, g2 := Gains(StrategySubmission, StrategySubmission, 50, 30, false, false, 14)
	assert.Equal(t, 50, g1)
	assert.Equal(t, 30, g2)
}

func TestGainsWarTransfersTowardStronger(t *testing.T) {
	g1, g2 := Gains(StrategyWar, StrategyWar, 60, 40, false, false, 14)
	// (1-0.2)*60 + 0.3*40 = 60 ; (1-0.2)*40 - 0.3*40 = 20
	assert.Equal(t, 60, g1)
	assert.Equal(t, 20, g2)
}

func TestGainsWarEqualValuesOnlyAttrit(t *testing.T) {
	g1, g2 := Gains(StrategyWar, StrategyWar, 50, 50, false, false, 14)
	assert.Equal(t, 40, g1)
	assert.Equal(t, 40, g2)
}

func TestGainsSubmissionVersusWar(t *testing.T) {
	g1, g2 := Gains(StrategySubmission, StrategyWar, 100, 100, false, false, 14)
	// Submitter keeps (1-e)X, the aggressor takes eX on top of Y.
	assert.Equal(t, 70, g1)
	assert.Equal(t, 130, g2)
}

func TestGainsSacrificeCostDeductedBeforeClamp(t *testing.T) {
	// Small values: 0.8*10 = 8, minus the 14 sacrifice cost is negative,
	// so the clamp must floor it at zero.
	g1, _ := Gains(StrategyWar, StrategyWar, 10, 10, true, false, 14)
	assert.Equal(t, 0, g1)
}

func TestGainsNeverNegative(t *testing.T) {
	strategies := []Strategy{StrategySubmission, StrategyCooperation, StrategyWar}
	values := []int{0, 1, 4, 14, 64, 100, 280}
	for _, s1 := range strategies {
		for _, s2 := range strategies {
			for _, x := range values {
				for _, y := range values {
					for _, sac1 := range []bool{false, true} {
						for _, sac2 := range []bool{false, true} {
							g1, g2 := Gains(s1, s2, x, y, sac1, sac2, 14)
							assert.GreaterOrEqual(t, g1, 0, "s1=%s s2=%s x=%d y=%d", s1, s2, x, y)
							assert.GreaterOrEqual(t, g2, 0, "s1=%s s2=%s x=%d y=%d", s1, s2, x, y)
						}
					}
				}
			}
		}
	}
}

func TestGainsAsymmetricPairsMirror(t *testing.T) {
	// (V,C) and (C,V) must be mirror images of each other.
	g1, g2 := Gains(StrategySubmission, StrategyCooperation, 40, 60, false, false, 14)
	h2, h1 := Gains(StrategyCooperation, StrategySubmission, 60, 40, false, false, 14)
	assert.Equal(t, g1, h1)
	assert.Equal(t, g2, h2)
}

func TestStrategyValid(t *testing.T) {
	assert.True(t, StrategyWar.Valid())
	assert.True(t, StrategyCooperation.Valid())
	assert.True(t, StrategySubmission.Valid())
	assert.False(t, Strategy("X").Valid())
	assert.False(t, Strategy("").Valid())
}
