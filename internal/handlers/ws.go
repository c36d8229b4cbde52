// internal/handlers/ws.go
package handlers

import (
	"context"

	"github.com/coder/websocket"

	"github.com/jeufa/fadu/internal/game"
	"github.com/jeufa/fadu/internal/ws"
)

// Subprotocol is the single WebSocket subprotocol the server speaks.
const Subprotocol = "fadu"

// sendWsError reports a recoverable failure as an error event on the
// originating channel. The channel stays open.
func (s *GameServer) sendWsError(conn *ws.Conn, err error) {
	s.Registry.SendTo(conn, ws.NewEnvelope(ws.EventError, ws.ErrorPayload{
		Code:    game.Code(err),
		Message: err.Error(),
	}))
}

func (s *GameServer) sendWsErrorCode(conn *ws.Conn, code, message string) {
	s.Registry.SendTo(conn, ws.NewEnvelope(ws.EventError, ws.ErrorPayload{
		Code:    code,
		Message: message,
	}))
}

// readLoop pulls frames off the socket until the peer goes away, decoding
// each into a typed inbound message. A malformed envelope yields an
// invalid_message error event; it never tears the channel down.
func (s *GameServer) readLoop(ctx context.Context, c *websocket.Conn, conn *ws.Conn, handle func(in ws.Inbound)) error {
	for {
		_, data, err := c.Read(ctx)
		if err != nil {
			return err
		}
		in, err := ws.DecodeInbound(data)
		if err != nil {
			s.sendWsErrorCode(conn, game.CodeInvalidMessage, "malformed message envelope")
			continue
		}
		handle(in)
	}
}
