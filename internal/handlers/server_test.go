// internal/handlers/server_test.go
package handlers

import (
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeufa/fadu/internal/config"
	"github.com/jeufa/fadu/internal/matchmaking"
	"github.com/jeufa/fadu/internal/ws"
)

func newTestServer() *GameServer {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	cfg := config.Config{
		InitialPFH:           100,
		SacrificeCost:        14,
		WinningPFH:           280,
		MaxTurns:             20,
		MaxConsecutiveLosses: 3,
	}
	return NewGameServer(cfg, logger)
}

func TestPresenceDisconnectKeepsQueueEntry(t *testing.T) {
	s := newTestServer()
	pid := uuid.New()

	mmConn := ws.NewConn(nil, nil)
	require.NoError(t, s.Queue.Join(pid, "alice", mmConn))
	require.Equal(t, 1, s.Queue.Position(pid))

	// Dropping the presence channel must not touch the queue entry; that
	// belongs to the still-live matchmaking channel.
	presence := ws.NewConn(nil, nil)
	s.Registry.RegisterPlayer(pid, "alice", presence)
	s.finalizePlayerDisconnect(pid, presence)

	assert.Equal(t, 1, s.Queue.Position(pid))
	assert.False(t, s.Registry.PlayerConnected(pid))
}

func TestCreateSessionUsesEntryDisplayNames(t *testing.T) {
	s := newTestServer()
	a := matchmaking.Entry{PlayerID: uuid.New(), DisplayName: "alice"}
	b := matchmaking.Entry{PlayerID: uuid.New(), DisplayName: "bob"}

	id, err := s.createSession(a, b)
	require.NoError(t, err)

	sess, ok := s.Sessions.Get(id)
	require.True(t, ok)
	st := sess.PublicState()
	assert.Equal(t, "alice", st.Players[0].DisplayName)
	assert.Equal(t, "bob", st.Players[1].DisplayName)
}

func TestCreateSessionFallsBackToGuestName(t *testing.T) {
	s := newTestServer()
	a := matchmaking.Entry{PlayerID: uuid.New()}
	b := matchmaking.Entry{PlayerID: uuid.New(), DisplayName: "bob"}

	id, err := s.createSession(a, b)
	require.NoError(t, err)

	sess, ok := s.Sessions.Get(id)
	require.True(t, ok)
	assert.Equal(t, "Guest", sess.PublicState().Players[0].DisplayName)
}
