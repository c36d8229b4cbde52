// internal/handlers/game_ws.go
package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/jeufa/fadu/internal/engine"
	"github.com/jeufa/fadu/internal/game"
	"github.com/jeufa/fadu/internal/middleware"
	"github.com/jeufa/fadu/internal/ws"
)

// GameWSHandler serves the in-session channel at /session/ws/{session_id}.
// It authenticates the player, verifies session membership, joins the
// session's broadcast group and dispatches phase actions.
func GameWSHandler(s *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idStr := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/session/ws/"), "/")
		sessionID, err := uuid.Parse(idStr)
		if err != nil {
			http.Error(w, "invalid session_id format", http.StatusBadRequest)
			return
		}
		sess, ok := s.Sessions.Get(sessionID)
		if !ok {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}

		playerID, err := EnsureEphemeralUser(w, r)
		if err != nil {
			s.Logger.Warnf("game ws auth failed for session %s: %v", sessionID, err)
			http.Error(w, "authentication failed", http.StatusForbidden)
			return
		}

		isParticipant := false
		for _, pid := range sess.PlayerIDs() {
			if pid == playerID {
				isParticipant = true
			}
		}
		if !isParticipant {
			http.Error(w, "you are not a player in this session", http.StatusForbidden)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{Subprotocol},
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			s.Logger.Warnf("game ws accept error for session %s: %v", sessionID, err)
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
		s.Registry.RegisterGame(sessionID, playerID, conn)

		// Joining mid-session is allowed; the current view brings the client
		// up to date.
		s.Registry.SendTo(conn, ws.NewEnvelope(ws.EventSessionStateUpdate, sess.PublicState()))

		err = s.readLoop(ctx, c, conn, func(in ws.Inbound) {
			s.handleGameMessage(sess, playerID, conn, in)
		})
		middleware.LogWebSocketDisconnect(s.Logger, r.RemoteAddr, r.URL.Path, err)

		s.Registry.Unregister(conn)
		conn.Close()
		sess.NotifyDisconnect(playerID)
	}
}

func (s *GameServer) handleGameMessage(sess *game.Session, playerID uuid.UUID, conn *ws.Conn, in ws.Inbound) {
	var err error
	switch in.Kind {
	case ws.InboundDrawCard:
		kind := engine.KindStandard
		if in.DrawCard.Kind != "" {
			kind = engine.CardKind(in.DrawCard.Kind)
		}
		_, err = sess.SubmitDraw(playerID, kind)
	case ws.InboundChooseStrategy:
		_, err = sess.SubmitStrategy(playerID, engine.Strategy(in.ChooseStrategy.Strategy))
	case ws.InboundDecideSacrifice:
		_, err = sess.SubmitSacrifice(playerID, in.DecideSacrifice.Sacrifice)
	case ws.InboundNextPhase:
		var st game.PublicState
		st, err = sess.Advance(playerID)
		if err == nil && st.Completed {
			s.FinalizeSession(sess)
		}
	case ws.InboundPing:
		s.Registry.SendTo(conn, ws.NewEnvelope(ws.EventPong, nil))
		return
	default:
		s.sendWsErrorCode(conn, "unknown_type", "unrecognized message type: "+in.RawType)
		return
	}
	if err != nil {
		s.sendWsError(conn, err)
	}
}
