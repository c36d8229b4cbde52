package models

import "github.com/google/uuid"

// Player is the per-session view of one participant. The stable identity
// lives in User; everything else here is scoped to a single session.
type Player struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`

	PFH               int `json:"pfh"`
	ConsecutiveLosses int `json:"consecutive_losses"`
}
