// internal/handlers/debug.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/jeufa/fadu/internal/engine"
)

// ConnectionsHandler lists every live registered channel. Introspection
// endpoint for operators chasing ghost connections.
func ConnectionsHandler(s *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot := s.Registry.Snapshot()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"count":       len(snapshot),
			"connections": snapshot,
		})
	}
}

// CardProbabilitiesHandler reports each card's draw probability per pool.
func CardProbabilitiesHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(engine.Probabilities())
}

// QueueInfoHandler reports who is waiting in the matchmaking queue and which
// pairs are reserved behind a pending invitation.
func QueueInfoHandler(s *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		waiting, reserved := s.Queue.SnapshotIDs()

		waitingIDs := make([]string, 0, len(waiting))
		for _, id := range waiting {
			waitingIDs = append(waitingIDs, id.String())
		}
		reservedPairs := make([][2]string, 0, len(reserved))
		for _, pair := range reserved {
			reservedPairs = append(reservedPairs, [2]string{pair[0].String(), pair[1].String()})
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"waiting":  waitingIDs,
			"reserved": reservedPairs,
			"sessions": s.Sessions.Count(),
		})
	}
}
