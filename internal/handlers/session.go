// internal/handlers/session.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// CreateSessionHandler starts a session directly for two named players,
// bypassing the matchmaking queue. Intended for rematches and testing.
func CreateSessionHandler(s *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			PlayerA string `json:"player_a"`
			PlayerB string `json:"player_b"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
		a, errA := uuid.Parse(req.PlayerA)
		b, errB := uuid.Parse(req.PlayerB)
		if errA != nil || errB != nil || a == b {
			http.Error(w, "two distinct player ids required", http.StatusBadRequest)
			return
		}
		for _, pid := range []uuid.UUID{a, b} {
			if sess, ok := s.Sessions.GetByPlayer(pid); ok && !sess.Completed() {
				http.Error(w, "player already in an active session", http.StatusConflict)
				return
			}
		}

		id, err := s.startSession(s.resolvePlayer(a), s.resolvePlayer(b))
		if err != nil {
			http.Error(w, "failed to create session", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"session_id": id.String()})
	}
}

// SessionStatusHandler returns the public view of a session at
// /session/status/{session_id}.
func SessionStatusHandler(s *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idStr := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/session/status/"), "/")
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

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(sess.PublicState())
	}
}
