// internal/handlers/matchmaking_ws.go
package handlers

import (
	"context"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/jeufa/fadu/internal/matchmaking"
	"github.com/jeufa/fadu/internal/middleware"
	"github.com/jeufa/fadu/internal/ws"
)

// MatchmakingWSHandler serves the seeker channel at /matchmaking/ws. The
// channel is ephemeral: it exists pre-pairing and its disconnect removes the
// seeker from the queue.
func MatchmakingWSHandler(s *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID, err := EnsureEphemeralUser(w, r)
		if err != nil {
			s.Logger.Warnf("matchmaking ws auth failed: %v", err)
			http.Error(w, "authentication failed", http.StatusForbidden)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{Subprotocol},
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			s.Logger.Warnf("matchmaking ws accept error: %v", err)
			return
		}
		if c.Subprotocol() != Subprotocol {
			c.Close(BadSubprotocolError, "client must speak the 'fadu' subprotocol")
			return
		}
		middleware.LogWebSocketConnect(s.Logger, r.RemoteAddr, r.URL.Path)

		ctx, cancel := context.WithCancel(r.Context())
		conn := ws.NewConn(c, cancel)
		go conn.RunWritePump(ctx, s.Logger)
		s.Registry.RegisterMatchmaking(playerID, conn)

		// Resolved here, once, so a pairing attempt under the queue lock
		// never touches the database.
		player := s.resolvePlayer(playerID)

		err = s.readLoop(ctx, c, conn, func(in ws.Inbound) {
			s.handleMatchmakingMessage(playerID, player.DisplayName, conn, in)
		})
		middleware.LogWebSocketDisconnect(s.Logger, r.RemoteAddr, r.URL.Path, err)

		s.Registry.Unregister(conn)
		conn.Close()
		s.Queue.Leave(playerID)
	}
}

func (s *GameServer) handleMatchmakingMessage(playerID uuid.UUID, displayName string, conn *ws.Conn, in ws.Inbound) {
	switch in.Kind {
	case ws.InboundJoinQueue:
		if err := s.Queue.Join(playerID, displayName, conn); err != nil {
			s.sendWsError(conn, err)
		}
	case ws.InboundLeaveQueue:
		s.Queue.Leave(playerID)
		s.Registry.SendTo(conn, ws.NewEnvelope(ws.EventMatchmakingStatus, matchmaking.StatusPayload{
			Status: "left",
		}))
	case ws.InboundAcceptMatch:
		if err := s.Queue.Accept(playerID); err != nil {
			s.sendWsError(conn, err)
		}
	case ws.InboundDeclineMatch:
		if err := s.Queue.Decline(playerID); err != nil {
			s.sendWsError(conn, err)
		}
	case ws.InboundQueueStatus:
		pos := s.Queue.Position(playerID)
		status := "queued"
		if pos == 0 {
			status = "not_queued"
		}
		s.Registry.SendTo(conn, ws.NewEnvelope(ws.EventMatchmakingStatus, matchmaking.StatusPayload{
			Status:   status,
			Position: pos,
		}))
	case ws.InboundPing:
		s.Registry.SendTo(conn, ws.NewEnvelope(ws.EventPong, nil))
	default:
		s.sendWsErrorCode(conn, "unknown_type", "unrecognized message type: "+in.RawType)
	}
}
