// internal/game/session_test.go
package game

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeufa/fadu/internal/engine"
	"github.com/jeufa/fadu/internal/models"
	"github.com/jeufa/fadu/internal/ws"
)

func testSettings() Settings {
	return Settings{
		InitialPFH:    100,
		SacrificeCost: 14,
		Rules: engine.VictoryRules{
			WinningPFH:           280,
			MaxTurns:             20,
			MaxConsecutiveLosses: 3,
		},
	}
}

func newTestSession(t *testing.T, settings Settings) (*Session, uuid.UUID, uuid.UUID) {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	a := models.Player{ID: uuid.New(), DisplayName: "alice"}
	b := models.Player{ID: uuid.New(), DisplayName: "bob"}
	deck := engine.NewDeck(rand.New(rand.NewSource(42)))
	s := NewSession(uuid.New(), a, b, deck, settings, logger)
	return s, a.ID, b.ID
}

// playUntilResults drives one full turn with cooperation on both sides and
// no sacrifices.
func playUntilResults(t *testing.T, s *Session, a, b uuid.UUID) {
	t.Helper()
	_, err := s.SubmitDraw(a, engine.KindStandard)
	require.NoError(t, err)
	_, err = s.SubmitDraw(b, engine.KindStandard)
	require.NoError(t, err)
	_, err = s.SubmitStrategy(a, engine.StrategyCooperation)
	require.NoError(t, err)
	_, err = s.SubmitStrategy(b, engine.StrategyCooperation)
	require.NoError(t, err)
	_, err = s.SubmitSacrifice(a, false)
	require.NoError(t, err)
	st, err := s.SubmitSacrifice(b, false)
	require.NoError(t, err)
	require.Equal(t, PhaseResults, st.Phase)
}

func TestSessionPhaseProgression(t *testing.T) {
	s, a, b := newTestSession(t, testSettings())

	st := s.PublicState()
	assert.Equal(t, PhaseDraw, st.Phase)
	assert.Equal(t, 1, st.Turn)

	st, err := s.SubmitDraw(a, engine.KindStandard)
	require.NoError(t, err)
	assert.Equal(t, PhaseDraw, st.Phase)
	assert.True(t, st.Players[0].HasDrawn)
	assert.False(t, st.Players[1].HasDrawn)

	st, err = s.SubmitDraw(b, engine.KindStandard)
	require.NoError(t, err)
	assert.Equal(t, PhaseStrategy, st.Phase)

	_, err = s.SubmitStrategy(a, engine.StrategyWar)
	require.NoError(t, err)
	st, err = s.SubmitStrategy(b, engine.StrategySubmission)
	require.NoError(t, err)
	assert.Equal(t, PhaseSacrifice, st.Phase)

	_, err = s.SubmitSacrifice(a, false)
	require.NoError(t, err)
	st, err = s.SubmitSacrifice(b, false)
	require.NoError(t, err)
	assert.Equal(t, PhaseResults, st.Phase)

	st, err = s.Advance(a)
	require.NoError(t, err)
	assert.Equal(t, PhaseDraw, st.Phase)
	assert.Equal(t, 2, st.Turn)
	assert.False(t, st.Players[0].HasDrawn)
	assert.False(t, st.Players[0].HasStrategy)
	assert.False(t, st.Players[0].HasSacrifice)

	require.Len(t, s.History(), 1)
	assert.Equal(t, 1, s.History()[0].TurnNumber)
}

func TestSessionRejectsWrongPhase(t *testing.T) {
	s, a, b := newTestSession(t, testSettings())

	_, err := s.SubmitStrategy(a, engine.StrategyWar)
	assert.ErrorIs(t, err, ErrWrongPhase)
	_, err = s.SubmitSacrifice(a, false)
	assert.ErrorIs(t, err, ErrWrongPhase)
	_, err = s.Advance(a)
	assert.ErrorIs(t, err, ErrWrongPhase)

	// A sacrifice pre-draw needs the standard card first.
	_, err = s.SubmitDraw(a, engine.KindSacrifice)
	assert.ErrorIs(t, err, ErrWrongPhase)

	_, err = s.SubmitDraw(b, engine.KindStandard)
	require.NoError(t, err)
	_, err = s.SubmitDraw(b, engine.KindStandard)
	assert.ErrorIs(t, err, ErrAlreadyDrawn)
}

func TestSessionRejectsNonParticipant(t *testing.T) {
	s, _, _ := newTestSession(t, testSettings())
	_, err := s.SubmitDraw(uuid.New(), engine.KindStandard)
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestSessionSecondStrategyRejectedFirstKept(t *testing.T) {
	s, a, b := newTestSession(t, testSettings())
	_, err := s.SubmitDraw(a, engine.KindStandard)
	require.NoError(t, err)
	_, err = s.SubmitDraw(b, engine.KindStandard)
	require.NoError(t, err)

	_, err = s.SubmitStrategy(a, engine.StrategyCooperation)
	require.NoError(t, err)
	_, err = s.SubmitStrategy(a, engine.StrategyWar)
	assert.ErrorIs(t, err, ErrAlreadyDecided)

	// The first submission stands.
	s.Mu.Lock()
	assert.Equal(t, engine.StrategyCooperation, *s.players[0].strategy)
	s.Mu.Unlock()
}

func TestSessionSacrificeRequiresPFH(t *testing.T) {
	settings := testSettings()
	settings.InitialPFH = 10
	s, a, b := newTestSession(t, settings)

	_, err := s.SubmitDraw(a, engine.KindStandard)
	require.NoError(t, err)
	_, err = s.SubmitDraw(b, engine.KindStandard)
	require.NoError(t, err)
	_, err = s.SubmitStrategy(a, engine.StrategyCooperation)
	require.NoError(t, err)
	_, err = s.SubmitStrategy(b, engine.StrategyCooperation)
	require.NoError(t, err)

	st, err := s.SubmitSacrifice(a, true)
	assert.ErrorIs(t, err, ErrInsufficientPFH)
	assert.Equal(t, 10, st.Players[0].PFH)
	assert.False(t, st.Players[0].HasSacrifice)

	// Declining is always allowed.
	_, err = s.SubmitSacrifice(a, false)
	assert.NoError(t, err)
}

func TestSessionInvalidStrategyRejected(t *testing.T) {
	s, a, b := newTestSession(t, testSettings())
	_, err := s.SubmitDraw(a, engine.KindStandard)
	require.NoError(t, err)
	_, err = s.SubmitDraw(b, engine.KindStandard)
	require.NoError(t, err)

	_, err = s.SubmitStrategy(a, engine.Strategy("Z"))
	assert.ErrorIs(t, err, ErrInvalidStrategy)
}

func TestSessionCompletesOnVictory(t *testing.T) {
	settings := testSettings()
	settings.Rules.WinningPFH = 1
	s, a, b := newTestSession(t, settings)

	var events []string
	s.BroadcastFn = func(env ws.Envelope) { events = append(events, env.Type) }

	playUntilResults(t, s, a, b)

	st, err := s.Advance(b)
	require.NoError(t, err)
	assert.Equal(t, PhaseCompleted, st.Phase)
	assert.True(t, st.Completed)
	require.NotNil(t, st.Winner)
	assert.Equal(t, a.String(), *st.Winner)

	assert.Contains(t, events, ws.EventTurnResult)
	assert.Contains(t, events, ws.EventSessionCompleted)

	// All actions are rejected once terminal.
	_, err = s.SubmitDraw(a, engine.KindStandard)
	assert.ErrorIs(t, err, ErrSessionCompleted)
	_, err = s.Advance(a)
	assert.ErrorIs(t, err, ErrSessionCompleted)
}

func TestSessionRecordFnReceivesTurn(t *testing.T) {
	s, a, b := newTestSession(t, testSettings())

	var recorded []models.TurnRecord
	s.RecordFn = func(rec models.TurnRecord) { recorded = append(recorded, rec) }

	playUntilResults(t, s, a, b)

	require.Len(t, recorded, 1)
	rec := recorded[0]
	assert.Equal(t, s.ID, rec.SessionID)
	assert.Equal(t, 1, rec.TurnNumber)
	assert.Equal(t, a, rec.PlayerA.PlayerID)
	assert.Equal(t, b, rec.PlayerB.PlayerID)
	assert.Equal(t, rec.PlayerA.ResultingPFH, 100+rec.PlayerA.Gain)
}

func TestSessionStoreOneActiveSessionPerPlayer(t *testing.T) {
	store := NewSessionStore()
	s, a, _ := newTestSession(t, testSettings())
	store.Add(s)

	got, ok := store.GetByPlayer(a)
	require.True(t, ok)
	assert.Same(t, s, got)

	store.Delete(s.ID)
	_, ok = store.GetByPlayer(a)
	assert.False(t, ok)
	store.Delete(s.ID)
	assert.Equal(t, 0, store.Count())
}
