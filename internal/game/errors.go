// internal/game/errors.go
package game

import "errors"

// Sentinel errors for every rejectable client action. Handlers map these to
// wire error codes with Code.
var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrPlayerNotFound      = errors.New("player not found")
	ErrAlreadyQueued       = errors.New("player already in matchmaking queue")
	ErrAlreadyInSession    = errors.New("player already in an active session")
	ErrAlreadyDrawn        = errors.New("card already drawn this turn")
	ErrAlreadyDecided      = errors.New("decision already submitted this turn")
	ErrWrongPhase          = errors.New("action not valid in current phase")
	ErrNotParticipant      = errors.New("player is not part of this session")
	ErrInsufficientPFH     = errors.New("insufficient force points for sacrifice")
	ErrSessionCompleted    = errors.New("session already completed")
	ErrInvalidStrategy     = errors.New("invalid strategy")
	ErrInvalidMessage      = errors.New("invalid message")
	ErrNoPendingInvitation = errors.New("no pending match invitation")
)

// Wire error codes, carried in the "code" field of error events.
const (
	CodeNotFound             = "not_found"
	CodeAlreadyQueued        = "already_queued"
	CodeAlreadyInSession     = "already_in_session"
	CodeAlreadyDrawn         = "already_drawn"
	CodeAlreadyDecided       = "already_decided"
	CodeWrongPhase           = "wrong_phase"
	CodeNotParticipant       = "not_participant"
	CodeInsufficientResource = "insufficient_resource"
	CodeSessionCompleted     = "session_completed"
	CodeInvalidStrategy      = "invalid_strategy"
	CodeInvalidMessage       = "invalid_message"
	CodeNoPendingInvitation  = "no_pending_invitation"
	CodeInternal             = "internal_error"
)

// Code maps a domain error to its wire code. Unrecognized errors collapse to
// internal_error so server details never leak to clients.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrPlayerNotFound):
		return CodeNotFound
	case errors.Is(err, ErrAlreadyQueued):
		return CodeAlreadyQueued
	case errors.Is(err, ErrAlreadyInSession):
		return CodeAlreadyInSession
	case errors.Is(err, ErrAlreadyDrawn):
		return CodeAlreadyDrawn
	case errors.Is(err, ErrAlreadyDecided):
		return CodeAlreadyDecided
	case errors.Is(err, ErrWrongPhase):
		return CodeWrongPhase
	case errors.Is(err, ErrNotParticipant):
		return CodeNotParticipant
	case errors.Is(err, ErrInsufficientPFH):
		return CodeInsufficientResource
	case errors.Is(err, ErrSessionCompleted):
		return CodeSessionCompleted
	case errors.Is(err, ErrInvalidStrategy):
		return CodeInvalidStrategy
	case errors.Is(err, ErrInvalidMessage):
		return CodeInvalidMessage
	case errors.Is(err, ErrNoPendingInvitation):
		return CodeNoPendingInvitation
	default:
		return CodeInternal
	}
}
