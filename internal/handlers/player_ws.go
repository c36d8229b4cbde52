// internal/handlers/player_ws.go
package handlers

import (
	"context"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/jeufa/fadu/internal/middleware"
	"github.com/jeufa/fadu/internal/ws"
)

// PlayerWSHandler serves the per-player presence channel at /player/ws.
// One channel per player id; a reconnect supersedes and closes the old one.
func PlayerWSHandler(s *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID, err := EnsureEphemeralUser(w, r)
		if err != nil {
			s.Logger.Warnf("player ws auth failed: %v", err)
			http.Error(w, "authentication failed", http.StatusForbidden)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{Subprotocol},
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			s.Logger.Warnf("player ws accept error: %v", err)
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

		player := s.resolvePlayer(playerID)
		s.Registry.RegisterPlayer(playerID, player.DisplayName, conn)
		s.Registry.SendTo(conn, ws.NewEnvelope(ws.EventParticipantConnected, map[string]string{
			"player_id":    playerID.String(),
			"display_name": player.DisplayName,
		}))

		err = s.readLoop(ctx, c, conn, func(in ws.Inbound) {
			switch in.Kind {
			case ws.InboundPing:
				s.Registry.SendTo(conn, ws.NewEnvelope(ws.EventPong, nil))
			default:
				s.sendWsErrorCode(conn, "unknown_type", "unrecognized message type: "+in.RawType)
			}
		})
		middleware.LogWebSocketDisconnect(s.Logger, r.RemoteAddr, r.URL.Path, err)
		s.finalizePlayerDisconnect(playerID, conn)
	}
}

// finalizePlayerDisconnect releases the presence channel's own state and
// tells the opponent if a match is in progress. The matchmaking queue entry
// belongs to the matchmaking channel and survives a presence drop.
func (s *GameServer) finalizePlayerDisconnect(playerID uuid.UUID, conn *ws.Conn) {
	s.Registry.Unregister(conn)
	conn.Close()
	if sess, ok := s.Sessions.GetByPlayer(playerID); ok {
		sess.NotifyDisconnect(playerID)
	}
}
