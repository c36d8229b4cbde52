// internal/ws/registry_test.go
package ws

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry() *Registry {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewRegistry(logger)
}

func TestRegisterPlayerSupersedes(t *testing.T) {
	r := testRegistry()
	pid := uuid.New()

	first := NewConn(nil, nil)
	second := NewConn(nil, nil)

	old := r.RegisterPlayer(pid, "alice", first)
	assert.Nil(t, old)

	old = r.RegisterPlayer(pid, "alice", second)
	assert.Same(t, first, old)

	// The superseded connection is closed and no longer reachable.
	assert.Error(t, first.Write([]byte("x")))
	assert.True(t, r.SendToPlayer(pid, NewEnvelope(EventPong, nil)))
	assert.Len(t, r.Snapshot(), 1)
}

func TestUnregisterIdempotent(t *testing.T) {
	r := testRegistry()
	pid := uuid.New()
	conn := NewConn(nil, nil)
	r.RegisterPlayer(pid, "bob", conn)

	r.Unregister(conn)
	r.Unregister(conn)

	assert.False(t, r.PlayerConnected(pid))
	assert.Empty(t, r.Snapshot())
}

func TestUnregisterStaleConnLeavesSuccessor(t *testing.T) {
	r := testRegistry()
	pid := uuid.New()

	first := NewConn(nil, nil)
	second := NewConn(nil, nil)
	r.RegisterPlayer(pid, "carol", first)
	r.RegisterPlayer(pid, "carol", second)

	// The old conn's read loop unwinds after the supersede; its unregister
	// must not evict the new registration.
	r.Unregister(first)
	assert.True(t, r.PlayerConnected(pid))
}

func TestSendToPlayerMissing(t *testing.T) {
	r := testRegistry()
	assert.False(t, r.SendToPlayer(uuid.New(), NewEnvelope(EventPong, nil)))
}

func TestSendFailureEvicts(t *testing.T) {
	r := testRegistry()
	pid := uuid.New()
	conn := NewConn(nil, nil)
	r.RegisterPlayer(pid, "dave", conn)
	conn.Close()

	assert.False(t, r.SendToPlayer(pid, NewEnvelope(EventPong, nil)))
	assert.False(t, r.PlayerConnected(pid))
}

func TestBroadcastToGameCountsDeliveries(t *testing.T) {
	r := testRegistry()
	sid := uuid.New()
	p1, p2 := uuid.New(), uuid.New()

	c1 := NewConn(nil, nil)
	c2 := NewConn(nil, nil)
	r.RegisterGame(sid, p1, c1)
	r.RegisterGame(sid, p2, c2)
	c2.Close()

	n := r.BroadcastToGame(sid, NewEnvelope(EventSessionStateUpdate, map[string]int{"turn": 1}))
	assert.Equal(t, 1, n)

	// The dead connection was evicted during the broadcast.
	n = r.BroadcastToGame(sid, NewEnvelope(EventSessionStateUpdate, nil))
	assert.Equal(t, 1, n)

	select {
	case data := <-c1.Drain():
		var env Envelope
		require.NoError(t, json.Unmarshal(data, &env))
		assert.Equal(t, EventSessionStateUpdate, env.Type)
		assert.NotEmpty(t, env.Timestamp)
	default:
		t.Fatal("expected a frame on the live connection")
	}
}

func TestDecodeInboundKnownAndUnknown(t *testing.T) {
	in, err := DecodeInbound([]byte(`{"type":"choose_strategy","data":{"strategy":"G"}}`))
	require.NoError(t, err)
	assert.Equal(t, InboundChooseStrategy, in.Kind)
	require.NotNil(t, in.ChooseStrategy)
	assert.Equal(t, "G", in.ChooseStrategy.Strategy)

	in, err = DecodeInbound([]byte(`{"type":"warp_drive","data":{}}`))
	require.NoError(t, err)
	assert.Equal(t, InboundUnknown, in.Kind)
	assert.Equal(t, "warp_drive", in.RawType)

	_, err = DecodeInbound([]byte(`not json`))
	assert.Error(t, err)
}
