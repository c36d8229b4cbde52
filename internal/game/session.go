// internal/game/session.go
package game

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jeufa/fadu/internal/engine"
	"github.com/jeufa/fadu/internal/models"
	"github.com/jeufa/fadu/internal/ws"
)

// Settings are the fixed rule parameters for one session.
type Settings struct {
	InitialPFH    int
	SacrificeCost int
	Rules         engine.VictoryRules
}

// playerState is one side's per-session and per-turn state. Per-turn fields
// are pointers so "not yet submitted" is distinguishable from any real value.
type playerState struct {
	ID          uuid.UUID
	DisplayName string

	PFH               int
	ConsecutiveLosses int

	drawn         *engine.Card
	sacrificeCard *engine.Card
	strategy      *engine.Strategy
	sacrifice     *bool
}

func (p *playerState) resetTurn() {
	p.drawn = nil
	p.sacrificeCard = nil
	p.strategy = nil
	p.sacrifice = nil
}

// effectiveValue is the PFH fed to the payoff matrix this turn.
func (p *playerState) effectiveValue() int {
	if *p.sacrifice && p.sacrificeCard != nil {
		return p.sacrificeCard.PFH
	}
	return p.drawn.PFH
}

// Session drives one match between exactly two players. All mutable state is
// guarded by Mu; the two players' receive loops call into the same session
// concurrently. Broadcast callbacks are channel enqueues and are safe to
// invoke while holding the lock; the turn recorder is not, so battle
// resolution hands the finished record back out for dispatch after unlock.
type Session struct {
	ID       uuid.UUID
	Settings Settings

	Mu      sync.Mutex
	players [2]*playerState
	turn    int
	phase   Phase

	endPending bool
	winner     engine.Winner
	completed  bool
	history    []models.TurnRecord

	deck   *engine.Deck
	logger *logrus.Logger

	// BroadcastFn fans an event out to every channel in the session's game
	// group. BroadcastToPlayerFn delivers private state on the player channel.
	// RecordFn persists a finished turn, best effort.
	BroadcastFn         func(env ws.Envelope)
	BroadcastToPlayerFn func(playerID uuid.UUID, env ws.Envelope)
	RecordFn            func(rec models.TurnRecord)
}

// NewSession starts a match at turn 1 in the Draw phase.
func NewSession(id uuid.UUID, a, b models.Player, deck *engine.Deck, settings Settings, logger *logrus.Logger) *Session {
	return &Session{
		ID:       id,
		Settings: settings,
		players: [2]*playerState{
			{ID: a.ID, DisplayName: a.DisplayName, PFH: settings.InitialPFH},
			{ID: b.ID, DisplayName: b.DisplayName, PFH: settings.InitialPFH},
		},
		turn:   1,
		phase:  PhaseDraw,
		deck:   deck,
		logger: logger,
	}
}

// PlayerIDs returns both participants in seat order.
func (s *Session) PlayerIDs() [2]uuid.UUID {
	return [2]uuid.UUID{s.players[0].ID, s.players[1].ID}
}

// PlayerPublicState is one side of the state visible to both players.
type PlayerPublicState struct {
	PlayerID          string `json:"player_id"`
	DisplayName       string `json:"display_name"`
	PFH               int    `json:"pfh"`
	ConsecutiveLosses int    `json:"consecutive_losses"`
	HasDrawn          bool   `json:"has_drawn"`
	HasStrategy       bool   `json:"has_strategy"`
	HasSacrifice      bool   `json:"has_sacrifice_decision"`
}

// PublicState is the session view broadcast on every accepted transition.
// It never carries a drawn card or a chosen strategy; those are private
// until the turn result.
type PublicState struct {
	SessionID string               `json:"session_id"`
	Turn      int                  `json:"turn"`
	Phase     Phase                `json:"phase"`
	Players   [2]PlayerPublicState `json:"players"`
	Completed bool                 `json:"completed"`
	Winner    *string              `json:"winner,omitempty"`
}

func (s *Session) publicStateLocked() PublicState {
	st := PublicState{
		SessionID: s.ID.String(),
		Turn:      s.turn,
		Phase:     s.phase,
		Completed: s.completed,
	}
	for i, p := range s.players {
		st.Players[i] = PlayerPublicState{
			PlayerID:          p.ID.String(),
			DisplayName:       p.DisplayName,
			PFH:               p.PFH,
			ConsecutiveLosses: p.ConsecutiveLosses,
			HasDrawn:          p.drawn != nil,
			HasStrategy:       p.strategy != nil,
			HasSacrifice:      p.sacrifice != nil,
		}
	}
	if s.completed {
		switch s.winner {
		case engine.WinnerPlayerA:
			w := s.players[0].ID.String()
			st.Winner = &w
		case engine.WinnerPlayerB:
			w := s.players[1].ID.String()
			st.Winner = &w
		}
	}
	return st
}

// PublicState returns the current session view.
func (s *Session) PublicState() PublicState {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.publicStateLocked()
}

// History returns a copy of the completed turn records.
func (s *Session) History() []models.TurnRecord {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	out := make([]models.TurnRecord, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Session) seatLocked(playerID uuid.UUID) (*playerState, error) {
	for _, p := range s.players {
		if p.ID == playerID {
			return p, nil
		}
	}
	return nil, ErrNotParticipant
}

func (s *Session) broadcastStateLocked() {
	if s.BroadcastFn != nil {
		s.BroadcastFn(ws.NewEnvelope(ws.EventSessionStateUpdate, s.publicStateLocked()))
	}
}

func (s *Session) sendToPlayerLocked(playerID uuid.UUID, env ws.Envelope) {
	if s.BroadcastToPlayerFn != nil {
		s.BroadcastToPlayerFn(playerID, env)
	}
}

// SubmitDraw handles a card draw in the Draw phase. A standard draw is
// required from each player; a sacrifice draw is optional and only allowed
// once the standard card is on the table. Each kind can be drawn at most once
// per turn. When both players hold a standard card the phase advances.
func (s *Session) SubmitDraw(playerID uuid.UUID, kind engine.CardKind) (PublicState, error) {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	if s.completed {
		return s.publicStateLocked(), ErrSessionCompleted
	}
	p, err := s.seatLocked(playerID)
	if err != nil {
		return s.publicStateLocked(), err
	}
	if s.phase != PhaseDraw {
		return s.publicStateLocked(), ErrWrongPhase
	}

	switch kind {
	case engine.KindStandard:
		if p.drawn != nil {
			return s.publicStateLocked(), ErrAlreadyDrawn
		}
		card := s.deck.Draw(engine.KindStandard)
		p.drawn = &card
	case engine.KindSacrifice:
		if p.drawn == nil {
			return s.publicStateLocked(), ErrWrongPhase
		}
		if p.sacrificeCard != nil {
			return s.publicStateLocked(), ErrAlreadyDrawn
		}
		card := s.deck.Draw(engine.KindSacrifice)
		p.sacrificeCard = &card
	default:
		return s.publicStateLocked(), ErrInvalidMessage
	}

	s.sendToPlayerLocked(playerID, ws.NewEnvelope(ws.EventSessionStateUpdate, map[string]interface{}{
		"session_id": s.ID.String(),
		"card":       *s.cardJustDrawn(p, kind),
	}))

	if kind == engine.KindStandard && s.bothDrawnLocked() {
		s.phase = PhaseStrategy
	}
	s.broadcastStateLocked()
	return s.publicStateLocked(), nil
}

func (s *Session) cardJustDrawn(p *playerState, kind engine.CardKind) *engine.Card {
	if kind == engine.KindSacrifice {
		return p.sacrificeCard
	}
	return p.drawn
}

func (s *Session) bothDrawnLocked() bool {
	return s.players[0].drawn != nil && s.players[1].drawn != nil
}

// SubmitStrategy records a player's strategy for the turn. Exactly one
// submission is allowed; when both players have chosen, the phase advances.
func (s *Session) SubmitStrategy(playerID uuid.UUID, strategy engine.Strategy) (PublicState, error) {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	if s.completed {
		return s.publicStateLocked(), ErrSessionCompleted
	}
	p, err := s.seatLocked(playerID)
	if err != nil {
		return s.publicStateLocked(), err
	}
	if s.phase != PhaseStrategy {
		return s.publicStateLocked(), ErrWrongPhase
	}
	if !strategy.Valid() {
		return s.publicStateLocked(), ErrInvalidStrategy
	}
	if p.strategy != nil {
		return s.publicStateLocked(), ErrAlreadyDecided
	}
	p.strategy = &strategy

	if s.players[0].strategy != nil && s.players[1].strategy != nil {
		s.phase = PhaseSacrifice
	}
	s.broadcastStateLocked()
	return s.publicStateLocked(), nil
}

// SubmitSacrifice records a player's sacrifice decision. Sacrificing requires
// the player's current PFH to cover the cost; the sacrifice card is drawn on
// acceptance if the player did not pre-draw one. When both players have
// decided, the battle resolves immediately and the phase lands on Results.
func (s *Session) SubmitSacrifice(playerID uuid.UUID, sacrifice bool) (PublicState, error) {
	s.Mu.Lock()
	var rec *models.TurnRecord
	st, err := func() (PublicState, error) {
		defer s.Mu.Unlock()

		if s.completed {
			return s.publicStateLocked(), ErrSessionCompleted
		}
		p, err := s.seatLocked(playerID)
		if err != nil {
			return s.publicStateLocked(), err
		}
		if s.phase != PhaseSacrifice {
			return s.publicStateLocked(), ErrWrongPhase
		}
		if p.sacrifice != nil {
			return s.publicStateLocked(), ErrAlreadyDecided
		}
		if sacrifice && p.PFH < s.Settings.SacrificeCost {
			return s.publicStateLocked(), ErrInsufficientPFH
		}
		p.sacrifice = &sacrifice

		if sacrifice && p.sacrificeCard == nil {
			card := s.deck.Draw(engine.KindSacrifice)
			p.sacrificeCard = &card
			s.sendToPlayerLocked(playerID, ws.NewEnvelope(ws.EventSessionStateUpdate, map[string]interface{}{
				"session_id": s.ID.String(),
				"card":       card,
			}))
		}

		if s.players[0].sacrifice != nil && s.players[1].sacrifice != nil {
			rec = s.resolveBattleLocked()
		}
		s.broadcastStateLocked()
		return s.publicStateLocked(), nil
	}()

	// Persistence is best effort and stays outside the lock; in-memory state
	// is authoritative.
	if rec != nil && s.RecordFn != nil {
		s.RecordFn(*rec)
	}
	return st, err
}

// resolveBattleLocked runs the Battle phase: payoff evaluation, loss-streak
// bookkeeping, turn history, victory check. The session lands on Results with
// any terminal outcome parked until the acknowledgement in Advance.
func (s *Session) resolveBattleLocked() *models.TurnRecord {
	s.phase = PhaseBattle

	a, b := s.players[0], s.players[1]
	x, y := a.effectiveValue(), b.effectiveValue()

	gainA, gainB := engine.Gains(*a.strategy, *b.strategy, x, y, *a.sacrifice, *b.sacrifice, s.Settings.SacrificeCost)
	a.PFH += gainA
	b.PFH += gainB

	if gainA == 0 {
		a.ConsecutiveLosses++
	} else {
		a.ConsecutiveLosses = 0
	}
	if gainB == 0 {
		b.ConsecutiveLosses++
	} else {
		b.ConsecutiveLosses = 0
	}

	ended, winner := engine.CheckVictory(a.PFH, b.PFH, a.ConsecutiveLosses, b.ConsecutiveLosses, s.turn, s.Settings.Rules)
	s.endPending = ended
	s.winner = winner

	rec := models.TurnRecord{
		SessionID:  s.ID,
		TurnNumber: s.turn,
		PlayerA:    s.turnSideLocked(a, gainA),
		PlayerB:    s.turnSideLocked(b, gainB),
		Timestamp:  time.Now().Unix(),
	}
	s.history = append(s.history, rec)

	s.phase = PhaseResults
	if s.BroadcastFn != nil {
		s.BroadcastFn(ws.NewEnvelope(ws.EventTurnResult, rec))
	}
	s.logger.WithFields(logrus.Fields{
		"session": s.ID,
		"turn":    s.turn,
		"pfh_a":   a.PFH,
		"pfh_b":   b.PFH,
	}).Info("battle resolved")
	return &rec
}

func (s *Session) turnSideLocked(p *playerState, gain int) models.TurnSide {
	return models.TurnSide{
		PlayerID:      p.ID,
		Card:          *p.drawn,
		SacrificeCard: p.sacrificeCard,
		Strategy:      *p.strategy,
		Sacrificed:    *p.sacrifice,
		Gain:          gain,
		ResultingPFH:  p.PFH,
	}
}

// Advance acknowledges the Results phase. Either player may call it once per
// turn: if a terminal condition fired at battle time the session completes,
// otherwise per-turn state resets and the next turn opens in Draw.
func (s *Session) Advance(playerID uuid.UUID) (PublicState, error) {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	if s.completed {
		return s.publicStateLocked(), ErrSessionCompleted
	}
	if _, err := s.seatLocked(playerID); err != nil {
		return s.publicStateLocked(), err
	}
	if s.phase != PhaseResults {
		return s.publicStateLocked(), ErrWrongPhase
	}

	if s.endPending {
		s.completed = true
		s.phase = PhaseCompleted
		if s.BroadcastFn != nil {
			s.BroadcastFn(ws.NewEnvelope(ws.EventSessionCompleted, s.publicStateLocked()))
		}
		return s.publicStateLocked(), nil
	}

	s.turn++
	s.phase = PhaseDraw
	s.players[0].resetTurn()
	s.players[1].resetTurn()
	s.broadcastStateLocked()
	return s.publicStateLocked(), nil
}

// Completed reports whether the session reached a terminal state.
func (s *Session) Completed() bool {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.completed
}

// NotifyDisconnect tells the remaining player that their opponent's channel
// dropped. Session state is untouched; the player may reconnect and resume.
func (s *Session) NotifyDisconnect(playerID uuid.UUID) {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	for _, p := range s.players {
		if p.ID != playerID {
			s.sendToPlayerLocked(p.ID, ws.NewEnvelope(ws.EventParticipantDisconnected, map[string]string{
				"session_id": s.ID.String(),
				"player_id":  playerID.String(),
			}))
		}
	}
}
