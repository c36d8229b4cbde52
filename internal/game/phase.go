// internal/game/phase.go
package game

// Phase is the step of the current turn. Phases advance strictly in order;
// Results loops back to Draw for the next turn unless the session completes.
type Phase string

const (
	PhaseDraw      Phase = "draw"
	PhaseStrategy  Phase = "strategy"
	PhaseSacrifice Phase = "sacrifice"
	PhaseBattle    Phase = "battle"
	PhaseResults   Phase = "results"
	PhaseCompleted Phase = "completed"
)
