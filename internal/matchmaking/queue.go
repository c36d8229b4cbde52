// internal/matchmaking/queue.go
package matchmaking

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jeufa/fadu/internal/game"
	"github.com/jeufa/fadu/internal/ws"
)

// Entry is one waiting seeker. DisplayName is resolved by the handler at
// connect time so pairing never has to look it up.
type Entry struct {
	PlayerID    uuid.UUID
	DisplayName string
	Conn        *ws.Conn
	JoinedAt    time.Time
}

// Options tune the pairing protocol. With RequireAccept set, pairing first
// sends a match_possible invitation to the earlier-queued player and waits
// for an explicit accept; otherwise sessions are created immediately.
type Options struct {
	RequireAccept bool
	InviteTTL     time.Duration
}

// invite is a reserved pair awaiting the inviter's accept. While it exists
// neither player is eligible for pairing with a third party.
type invite struct {
	inviter Entry
	invitee Entry
	timer   *time.Timer
}

// Queue pairs waiting players strictly first-come first-served. One mutex
// spans join, leave and the pairing attempt so a join that triggers pairing
// can never interleave with a concurrent leave for one of the chosen entries.
type Queue struct {
	logger *logrus.Logger
	opts   Options

	// CreateSession builds a new session for the pair; pairing is
	// all-or-nothing, so on error both entries return to the queue front.
	CreateSession func(a, b Entry) (uuid.UUID, error)
	// InSession rejects joins from players already mid-match. Optional.
	InSession func(playerID uuid.UUID) bool
	// Notify delivers an event to one entry's channel.
	Notify func(e Entry, env ws.Envelope)

	mu      sync.Mutex
	entries []Entry
	inQueue map[uuid.UUID]struct{}
	invites map[uuid.UUID]*invite // keyed by inviter id
}

func NewQueue(opts Options, logger *logrus.Logger) *Queue {
	return &Queue{
		logger:  logger,
		opts:    opts,
		inQueue: make(map[uuid.UUID]struct{}),
		invites: make(map[uuid.UUID]*invite),
	}
}

// StatusPayload is the data body of a matchmaking_status event.
type StatusPayload struct {
	Status   string `json:"status"`
	Position int    `json:"position,omitempty"`
}

// MatchPossiblePayload invites the earlier-queued player to confirm a match.
type MatchPossiblePayload struct {
	OpponentID string `json:"opponent_id"`
	ExpiresIn  int    `json:"expires_in_sec"`
}

// MatchConfirmedPayload announces a created session to both players.
type MatchConfirmedPayload struct {
	SessionID  string `json:"session_id"`
	OpponentID string `json:"opponent_id"`
}

// Join enqueues a player and immediately attempts pairing. A player can hold
// at most one queue entry and must not be in an active session.
func (q *Queue) Join(playerID uuid.UUID, displayName string, conn *ws.Conn) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.inQueue[playerID]; ok {
		return game.ErrAlreadyQueued
	}
	if q.InSession != nil && q.InSession(playerID) {
		return game.ErrAlreadyInSession
	}

	e := Entry{PlayerID: playerID, DisplayName: displayName, Conn: conn, JoinedAt: time.Now().UTC()}
	q.entries = append(q.entries, e)
	q.inQueue[playerID] = struct{}{}
	q.notifyLocked(e, ws.NewEnvelope(ws.EventMatchmakingStatus, StatusPayload{
		Status:   "queued",
		Position: len(q.entries),
	}))

	q.tryPairLocked()
	return nil
}

// Leave removes a player from the queue. Idempotent; it is also the
// disconnect finalizer, so it releases any invitation the player is party to.
func (q *Queue) Leave(playerID uuid.UUID) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.leaveLocked(playerID)
}

func (q *Queue) leaveLocked(playerID uuid.UUID) {
	if _, ok := q.inQueue[playerID]; !ok {
		return
	}

	// A reserved player leaving releases the partner back to the front.
	for inviterID, inv := range q.invites {
		if inv.inviter.PlayerID != playerID && inv.invitee.PlayerID != playerID {
			continue
		}
		inv.timer.Stop()
		delete(q.invites, inviterID)
		delete(q.inQueue, playerID)

		other := inv.invitee
		if playerID == inv.invitee.PlayerID {
			other = inv.inviter
		}
		q.requeueFrontLocked(other)
		q.notifyLocked(other, ws.NewEnvelope(ws.EventMatchmakingStatus, StatusPayload{
			Status:   "requeued",
			Position: 1,
		}))
		// The leaver is gone for good, so the partner may pair with anyone
		// already waiting.
		q.tryPairLocked()
		return
	}

	delete(q.inQueue, playerID)
	for i, e := range q.entries {
		if e.PlayerID == playerID {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			break
		}
	}
}

// Position returns a player's 1-indexed place in line, or 0 if the player is
// not waiting (absent, or reserved in a pending invitation).
func (q *Queue) Position(playerID uuid.UUID) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, e := range q.entries {
		if e.PlayerID == playerID {
			return i + 1
		}
	}
	return 0
}

// Accept confirms a pending invitation held by playerID and creates the
// session.
func (q *Queue) Accept(playerID uuid.UUID) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	inv, ok := q.invites[playerID]
	if !ok {
		return game.ErrNoPendingInvitation
	}
	inv.timer.Stop()
	delete(q.invites, playerID)
	q.createSessionLocked(inv.inviter, inv.invitee)
	return nil
}

// Decline rejects a pending invitation. The decliner leaves the queue; the
// other player returns to the front.
func (q *Queue) Decline(playerID uuid.UUID) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	inv, ok := q.invites[playerID]
	if !ok {
		return game.ErrNoPendingInvitation
	}
	inv.timer.Stop()
	delete(q.invites, playerID)
	delete(q.inQueue, inv.inviter.PlayerID)

	q.requeueFrontLocked(inv.invitee)
	q.notifyLocked(inv.invitee, ws.NewEnvelope(ws.EventMatchmakingStatus, StatusPayload{
		Status:   "requeued",
		Position: 1,
	}))
	q.tryPairLocked()
	return nil
}

// SnapshotIDs returns the waiting players in queue order plus the reserved
// pairs, for the queue introspection endpoint.
func (q *Queue) SnapshotIDs() (waiting []uuid.UUID, reserved [][2]uuid.UUID) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, e := range q.entries {
		waiting = append(waiting, e.PlayerID)
	}
	for _, inv := range q.invites {
		reserved = append(reserved, [2]uuid.UUID{inv.inviter.PlayerID, inv.invitee.PlayerID})
	}
	return waiting, reserved
}

// tryPairLocked matches the two earliest entries while at least two wait.
func (q *Queue) tryPairLocked() {
	for len(q.entries) >= 2 {
		a, b := q.entries[0], q.entries[1]
		q.entries = q.entries[2:]

		if q.opts.RequireAccept {
			q.reserveLocked(a, b)
			return
		}
		if !q.createSessionLocked(a, b) {
			return
		}
	}
}

// reserveLocked parks a pair behind an invitation to the earlier-queued
// player. An unanswered invitation expires after InviteTTL and both players
// return to the queue front.
func (q *Queue) reserveLocked(a, b Entry) {
	inv := &invite{inviter: a, invitee: b}
	inv.timer = time.AfterFunc(q.opts.InviteTTL, func() { q.expireInvite(a.PlayerID) })
	q.invites[a.PlayerID] = inv

	q.notifyLocked(a, ws.NewEnvelope(ws.EventMatchPossible, MatchPossiblePayload{
		OpponentID: b.PlayerID.String(),
		ExpiresIn:  int(q.opts.InviteTTL / time.Second),
	}))
	q.notifyLocked(b, ws.NewEnvelope(ws.EventMatchmakingStatus, StatusPayload{Status: "reserved"}))
}

func (q *Queue) expireInvite(inviterID uuid.UUID) {
	q.mu.Lock()
	defer q.mu.Unlock()

	inv, ok := q.invites[inviterID]
	if !ok {
		return
	}
	delete(q.invites, inviterID)
	q.logger.Infof("matchmaking: invitation from %s expired", inviterID)

	// Front reinsertion preserves the pair's original relative order.
	q.requeueFrontLocked(inv.invitee)
	q.requeueFrontLocked(inv.inviter)
	for _, e := range [2]Entry{inv.inviter, inv.invitee} {
		q.notifyLocked(e, ws.NewEnvelope(ws.EventMatchmakingStatus, StatusPayload{
			Status:   "invitation_expired",
			Position: q.positionLocked(e.PlayerID),
		}))
	}
}

// createSessionLocked is the all-or-nothing pairing step. On failure both
// players return to the queue front in their original order and each channel
// gets an error event; a failed match never silently drops a participant.
func (q *Queue) createSessionLocked(a, b Entry) bool {
	sessionID, err := q.CreateSession(a, b)
	if err != nil {
		q.logger.Errorf("matchmaking: session creation for %s and %s failed: %v", a.PlayerID, b.PlayerID, err)
		q.requeueFrontLocked(b)
		q.requeueFrontLocked(a)
		for _, e := range [2]Entry{a, b} {
			q.notifyLocked(e, ws.NewEnvelope(ws.EventError, ws.ErrorPayload{
				Code:    game.CodeInternal,
				Message: "match could not be created, you keep your place in line",
			}))
		}
		return false
	}

	delete(q.inQueue, a.PlayerID)
	delete(q.inQueue, b.PlayerID)
	q.notifyLocked(a, ws.NewEnvelope(ws.EventMatchConfirmed, MatchConfirmedPayload{
		SessionID:  sessionID.String(),
		OpponentID: b.PlayerID.String(),
	}))
	q.notifyLocked(b, ws.NewEnvelope(ws.EventMatchConfirmed, MatchConfirmedPayload{
		SessionID:  sessionID.String(),
		OpponentID: a.PlayerID.String(),
	}))
	return true
}

// requeueFrontLocked puts an entry back at index 0, keeping the player
// marked as queued.
func (q *Queue) requeueFrontLocked(e Entry) {
	q.entries = append([]Entry{e}, q.entries...)
	q.inQueue[e.PlayerID] = struct{}{}
}

func (q *Queue) positionLocked(playerID uuid.UUID) int {
	for i, e := range q.entries {
		if e.PlayerID == playerID {
			return i + 1
		}
	}
	return 0
}

func (q *Queue) notifyLocked(e Entry, env ws.Envelope) {
	if q.Notify != nil {
		q.Notify(e, env)
	}
}
