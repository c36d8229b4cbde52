package models

import (
	"github.com/google/uuid"

	"github.com/jeufa/fadu/internal/engine"
)

// TurnSide is one player's half of a completed turn.
type TurnSide struct {
	PlayerID      uuid.UUID       `json:"player_id"`
	Card          engine.Card     `json:"card"`
	SacrificeCard *engine.Card    `json:"sacrifice_card,omitempty"`
	Strategy      engine.Strategy `json:"strategy"`
	Sacrificed    bool            `json:"sacrificed"`
	Gain          int             `json:"gain"`
	ResultingPFH  int             `json:"resulting_pfh"`
}

// TurnRecord is one row of a session's append-only battle history.
type TurnRecord struct {
	SessionID  uuid.UUID `json:"session_id"`
	TurnNumber int       `json:"turn_number"`
	PlayerA    TurnSide  `json:"player_a"`
	PlayerB    TurnSide  `json:"player_b"`
	Timestamp  int64     `json:"timestamp"`
}
