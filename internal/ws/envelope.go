// internal/ws/envelope.go
package ws

import (
	"encoding/json"
	"time"
)

// Envelope is the wire frame for every message in either direction:
// a type tag, a type-specific payload, and a server-side RFC 3339 timestamp.
type Envelope struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
}

// Outbound event types.
const (
	EventParticipantConnected    = "participant_connected"
	EventParticipantDisconnected = "participant_disconnected"
	EventMatchPossible           = "match_possible"
	EventMatchConfirmed          = "match_confirmed"
	EventMatchmakingStatus       = "matchmaking_status"
	EventSessionStateUpdate      = "session_state_update"
	EventTurnResult              = "turn_result"
	EventSessionCompleted        = "session_completed"
	EventPong                    = "pong"
	EventError                   = "error"
)

// NewEnvelope stamps an outbound event with the current time.
func NewEnvelope(eventType string, data interface{}) Envelope {
	return Envelope{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// Encode marshals the envelope for the write pump.
func (e Envelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// ErrorPayload is the data body of an "error" event.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// InboundKind enumerates every client message the server understands.
// Anything else decodes to InboundUnknown so the handler can answer with a
// structured error instead of dropping the frame.
type InboundKind int

const (
	InboundUnknown InboundKind = iota
	InboundPing
	InboundJoinQueue
	InboundLeaveQueue
	InboundAcceptMatch
	InboundDeclineMatch
	InboundQueueStatus
	InboundDrawCard
	InboundChooseStrategy
	InboundDecideSacrifice
	InboundNextPhase
)

// DrawCardPayload selects which pool to draw from.
type DrawCardPayload struct {
	Kind string `json:"kind"`
}

// ChooseStrategyPayload carries the player's strategy letter.
type ChooseStrategyPayload struct {
	Strategy string `json:"strategy"`
}

// DecideSacrificePayload carries the player's sacrifice decision.
type DecideSacrificePayload struct {
	Sacrifice bool `json:"sacrifice"`
}

// Inbound is the decoded form of one client frame. Kind dictates which
// payload field is populated; RawType preserves the original tag for
// error reporting on unknown messages.
type Inbound struct {
	Kind    InboundKind
	RawType string

	DrawCard        *DrawCardPayload
	ChooseStrategy  *ChooseStrategyPayload
	DecideSacrifice *DecideSacrificePayload
}

var inboundKinds = map[string]InboundKind{
	"ping":             InboundPing,
	"join_queue":       InboundJoinQueue,
	"leave_queue":      InboundLeaveQueue,
	"accept_match":     InboundAcceptMatch,
	"decline_match":    InboundDeclineMatch,
	"queue_status":     InboundQueueStatus,
	"draw_card":        InboundDrawCard,
	"choose_strategy":  InboundChooseStrategy,
	"decide_sacrifice": InboundDecideSacrifice,
	"next_phase":       InboundNextPhase,
}

// DecodeInbound parses one client frame. A malformed envelope returns an
// error; a well-formed envelope with an unrecognized type returns
// Kind == InboundUnknown and a nil error.
func DecodeInbound(data []byte) (Inbound, error) {
	var frame struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &frame); err != nil {
		return Inbound{}, err
	}

	in := Inbound{Kind: inboundKinds[frame.Type], RawType: frame.Type}

	switch in.Kind {
	case InboundDrawCard:
		var p DrawCardPayload
		if len(frame.Data) > 0 {
			if err := json.Unmarshal(frame.Data, &p); err != nil {
				return Inbound{}, err
			}
		}
		in.DrawCard = &p
	case InboundChooseStrategy:
		var p ChooseStrategyPayload
		if len(frame.Data) > 0 {
			if err := json.Unmarshal(frame.Data, &p); err != nil {
				return Inbound{}, err
			}
		}
		in.ChooseStrategy = &p
	case InboundDecideSacrifice:
		var p DecideSacrificePayload
		if len(frame.Data) > 0 {
			if err := json.Unmarshal(frame.Data, &p); err != nil {
				return Inbound{}, err
			}
		}
		in.DecideSacrifice = &p
	}
	return in, nil
}
