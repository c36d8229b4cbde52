// internal/matchmaking/queue_test.go
package matchmaking

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeufa/fadu/internal/game"
	"github.com/jeufa/fadu/internal/ws"
)

type pairing struct {
	a, b uuid.UUID
}

type queueHarness struct {
	q        *Queue
	pairings []pairing
	events   map[uuid.UUID][]string
	failNext bool
}

func newQueueHarness(opts Options) *queueHarness {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	h := &queueHarness{events: make(map[uuid.UUID][]string)}
	h.q = NewQueue(opts, logger)
	h.q.CreateSession = func(a, b Entry) (uuid.UUID, error) {
		if h.failNext {
			h.failNext = false
			return uuid.Nil, errors.New("boom")
		}
		h.pairings = append(h.pairings, pairing{a: a.PlayerID, b: b.PlayerID})
		return uuid.New(), nil
	}
	h.q.Notify = func(e Entry, env ws.Envelope) {
		h.events[e.PlayerID] = append(h.events[e.PlayerID], env.Type)
	}
	return h
}

func TestQueueFIFOFairness(t *testing.T) {
	h := newQueueHarness(Options{})
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	require.NoError(t, h.q.Join(a, "", nil))
	assert.Equal(t, 1, h.q.Position(a))
	require.NoError(t, h.q.Join(b, "", nil))
	require.NoError(t, h.q.Join(c, "", nil))

	require.Len(t, h.pairings, 1)
	assert.Equal(t, pairing{a: a, b: b}, h.pairings[0])
	assert.Equal(t, 1, h.q.Position(c))
	assert.Contains(t, h.events[a], ws.EventMatchConfirmed)
	assert.Contains(t, h.events[b], ws.EventMatchConfirmed)
}

func TestQueueSingleEntryNoMatch(t *testing.T) {
	h := newQueueHarness(Options{})
	a := uuid.New()
	require.NoError(t, h.q.Join(a, "", nil))

	assert.Empty(t, h.pairings)
	assert.Equal(t, 1, h.q.Position(a))
}

func TestQueueRejectsDoubleJoin(t *testing.T) {
	h := newQueueHarness(Options{})
	a := uuid.New()
	require.NoError(t, h.q.Join(a, "", nil))
	assert.ErrorIs(t, h.q.Join(a, "", nil), game.ErrAlreadyQueued)
}

func TestQueueRejectsJoinWhileInSession(t *testing.T) {
	h := newQueueHarness(Options{})
	busy := uuid.New()
	h.q.InSession = func(id uuid.UUID) bool { return id == busy }
	assert.ErrorIs(t, h.q.Join(busy, "", nil), game.ErrAlreadyInSession)
	assert.NoError(t, h.q.Join(uuid.New(), "", nil))
}

func TestQueueLeaveIdempotent(t *testing.T) {
	h := newQueueHarness(Options{})
	a, b := uuid.New(), uuid.New()
	require.NoError(t, h.q.Join(a, "", nil))
	h.q.Leave(a)
	h.q.Leave(a)

	// a is gone, so b and a third player form the first pair.
	require.NoError(t, h.q.Join(b, "", nil))
	c := uuid.New()
	require.NoError(t, h.q.Join(c, "", nil))
	require.Len(t, h.pairings, 1)
	assert.Equal(t, pairing{a: b, b: c}, h.pairings[0])
}

func TestQueueFailedPairingRequeuesAtFront(t *testing.T) {
	h := newQueueHarness(Options{})
	a, b := uuid.New(), uuid.New()

	require.NoError(t, h.q.Join(a, "", nil))
	h.failNext = true
	require.NoError(t, h.q.Join(b, "", nil))

	// No session, both kept their place in original order and were told.
	assert.Empty(t, h.pairings)
	assert.Equal(t, 1, h.q.Position(a))
	assert.Equal(t, 2, h.q.Position(b))
	assert.Contains(t, h.events[a], ws.EventError)
	assert.Contains(t, h.events[b], ws.EventError)

	// The next join pairs the original pair first.
	require.NoError(t, h.q.Join(uuid.New(), "", nil))
	require.Len(t, h.pairings, 1)
	assert.Equal(t, pairing{a: a, b: b}, h.pairings[0])
}

func TestQueueNoDoublePairing(t *testing.T) {
	h := newQueueHarness(Options{})
	ids := make([]uuid.UUID, 6)
	for i := range ids {
		ids[i] = uuid.New()
		require.NoError(t, h.q.Join(ids[i], "", nil))
	}

	require.Len(t, h.pairings, 3)
	seen := make(map[uuid.UUID]bool)
	for _, p := range h.pairings {
		assert.NotEqual(t, p.a, p.b)
		assert.False(t, seen[p.a])
		assert.False(t, seen[p.b])
		seen[p.a] = true
		seen[p.b] = true
	}
}

func TestQueueInvitationAccept(t *testing.T) {
	h := newQueueHarness(Options{RequireAccept: true, InviteTTL: time.Minute})
	a, b := uuid.New(), uuid.New()

	require.NoError(t, h.q.Join(a, "", nil))
	require.NoError(t, h.q.Join(b, "", nil))

	// Reserved, not yet paired; neither is eligible for a third party.
	assert.Empty(t, h.pairings)
	assert.Contains(t, h.events[a], ws.EventMatchPossible)
	assert.ErrorIs(t, h.q.Join(a, "", nil), game.ErrAlreadyQueued)
	assert.ErrorIs(t, h.q.Join(b, "", nil), game.ErrAlreadyQueued)

	require.NoError(t, h.q.Accept(a))
	require.Len(t, h.pairings, 1)
	assert.Equal(t, pairing{a: a, b: b}, h.pairings[0])

	assert.ErrorIs(t, h.q.Accept(a), game.ErrNoPendingInvitation)
}

func TestQueueInvitationDecline(t *testing.T) {
	h := newQueueHarness(Options{RequireAccept: true, InviteTTL: time.Minute})
	a, b := uuid.New(), uuid.New()
	require.NoError(t, h.q.Join(a, "", nil))
	require.NoError(t, h.q.Join(b, "", nil))

	require.NoError(t, h.q.Decline(a))
	assert.Empty(t, h.pairings)
	assert.Equal(t, 0, h.q.Position(a))
	assert.Equal(t, 1, h.q.Position(b))

	// The decliner is fully out and may rejoin.
	assert.NoError(t, h.q.Join(a, "", nil))
}

func TestQueueInvitationExpiry(t *testing.T) {
	h := newQueueHarness(Options{RequireAccept: true, InviteTTL: 10 * time.Millisecond})
	a, b := uuid.New(), uuid.New()
	require.NoError(t, h.q.Join(a, "", nil))
	require.NoError(t, h.q.Join(b, "", nil))

	assert.Eventually(t, func() bool {
		return h.q.Position(a) == 1 && h.q.Position(b) == 2
	}, time.Second, 5*time.Millisecond)
	assert.Empty(t, h.pairings)
}

func TestQueueLeaveDuringReservationPairsWithWaiting(t *testing.T) {
	h := newQueueHarness(Options{RequireAccept: true, InviteTTL: time.Minute})
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	require.NoError(t, h.q.Join(a, "", nil))
	require.NoError(t, h.q.Join(b, "", nil))
	require.NoError(t, h.q.Join(c, "", nil))

	// a and b are reserved, c waits. b leaving must immediately pair the
	// released a with c instead of leaving both idle.
	h.q.Leave(b)

	waiting, reserved := h.q.SnapshotIDs()
	assert.Empty(t, waiting)
	require.Len(t, reserved, 1)
	assert.Equal(t, [2]uuid.UUID{a, c}, reserved[0])
}

func TestQueueDeclinePairsRemainingWithWaiting(t *testing.T) {
	h := newQueueHarness(Options{RequireAccept: true, InviteTTL: time.Minute})
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	require.NoError(t, h.q.Join(a, "", nil))
	require.NoError(t, h.q.Join(b, "", nil))
	require.NoError(t, h.q.Join(c, "", nil))

	require.NoError(t, h.q.Decline(a))

	// The declined invitee goes back to the front and pairs with the
	// waiting third seeker right away.
	waiting, reserved := h.q.SnapshotIDs()
	assert.Empty(t, waiting)
	require.Len(t, reserved, 1)
	assert.Equal(t, [2]uuid.UUID{b, c}, reserved[0])
}

func TestQueueLeaveReleasesReservation(t *testing.T) {
	h := newQueueHarness(Options{RequireAccept: true, InviteTTL: time.Minute})
	a, b := uuid.New(), uuid.New()
	require.NoError(t, h.q.Join(a, "", nil))
	require.NoError(t, h.q.Join(b, "", nil))

	h.q.Leave(a)
	assert.Equal(t, 1, h.q.Position(b))
	assert.ErrorIs(t, h.q.Accept(a), game.ErrNoPendingInvitation)
}
