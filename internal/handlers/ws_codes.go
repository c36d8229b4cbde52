// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used by the channel handlers. These give
// clients more specific close reasons than the standard range.
const (
	BadSubprotocolError   = 3000 // client connected with an unsupported subprotocol
	InvalidAuthTokenError = 3001 // auth token was invalid or expired
	InvalidUserIDError    = 3002 // player id derived from the token was malformed
	InvalidSessionIDError = 3003 // session id in the WS URL does not exist or is invalid
)
