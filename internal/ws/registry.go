// internal/ws/registry.go
package ws

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Category names the channel a connection was registered under.
type Category string

const (
	CategoryPlayer      Category = "player"
	CategoryGame        Category = "game"
	CategoryMatchmaking Category = "matchmaking"
)

// ConnInfo is the public description of one live connection, served by the
// debug endpoint and returned from Snapshot.
type ConnInfo struct {
	Category    Category  `json:"category"`
	Identifier  string    `json:"identifier,omitempty"`
	DisplayName string    `json:"display_name,omitempty"`
	ConnectedAt time.Time `json:"connected_at"`
}

// Registry tracks every live WebSocket under a single lock. Player
// connections are keyed by player ID with supersede-on-duplicate semantics;
// game connections are grouped per session; matchmaking connections form a
// flat set.
type Registry struct {
	logger *logrus.Logger

	mu          sync.Mutex
	players     map[uuid.UUID]*Conn
	games       map[uuid.UUID]map[*Conn]struct{}
	matchmaking map[*Conn]struct{}
	meta        map[*Conn]ConnInfo
}

func NewRegistry(logger *logrus.Logger) *Registry {
	return &Registry{
		logger:      logger,
		players:     make(map[uuid.UUID]*Conn),
		games:       make(map[uuid.UUID]map[*Conn]struct{}),
		matchmaking: make(map[*Conn]struct{}),
		meta:        make(map[*Conn]ConnInfo),
	}
}

// RegisterPlayer binds conn to playerID on the player channel. A previous
// connection for the same player is superseded: removed from the registry and
// closed. Returns the superseded connection, if any.
func (r *Registry) RegisterPlayer(playerID uuid.UUID, displayName string, conn *Conn) *Conn {
	r.mu.Lock()
	old := r.players[playerID]
	if old != nil {
		delete(r.meta, old)
	}
	r.players[playerID] = conn
	r.meta[conn] = ConnInfo{
		Category:    CategoryPlayer,
		Identifier:  playerID.String(),
		DisplayName: displayName,
		ConnectedAt: time.Now().UTC(),
	}
	r.mu.Unlock()

	if old != nil {
		r.logger.Infof("registry: superseding player connection for %s", playerID)
		old.Close()
	}
	return old
}

// RegisterGame adds conn to sessionID's connection set.
func (r *Registry) RegisterGame(sessionID, playerID uuid.UUID, conn *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.games[sessionID]
	if !ok {
		set = make(map[*Conn]struct{})
		r.games[sessionID] = set
	}
	set[conn] = struct{}{}
	r.meta[conn] = ConnInfo{
		Category:    CategoryGame,
		Identifier:  sessionID.String(),
		DisplayName: playerID.String(),
		ConnectedAt: time.Now().UTC(),
	}
}

// RegisterMatchmaking adds conn to the matchmaking set.
func (r *Registry) RegisterMatchmaking(playerID uuid.UUID, conn *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matchmaking[conn] = struct{}{}
	r.meta[conn] = ConnInfo{
		Category:    CategoryMatchmaking,
		Identifier:  playerID.String(),
		ConnectedAt: time.Now().UTC(),
	}
}

// Unregister removes conn from whatever category it is in. Idempotent:
// unknown connections are a no-op, so disconnect paths and supersede paths
// can race without harm.
func (r *Registry) Unregister(conn *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unregisterLocked(conn)
}

func (r *Registry) unregisterLocked(conn *Conn) {
	info, ok := r.meta[conn]
	if !ok {
		return
	}
	delete(r.meta, conn)

	switch info.Category {
	case CategoryPlayer:
		id, err := uuid.Parse(info.Identifier)
		// Only remove the map entry if it still points at this conn; a
		// superseding registration may already own the slot.
		if err == nil && r.players[id] == conn {
			delete(r.players, id)
		}
	case CategoryGame:
		id, err := uuid.Parse(info.Identifier)
		if err == nil {
			if set, ok := r.games[id]; ok {
				delete(set, conn)
				if len(set) == 0 {
					delete(r.games, id)
				}
			}
		}
	case CategoryMatchmaking:
		delete(r.matchmaking, conn)
	}
}

// SendToPlayer delivers env to the player's live connection. Returns false
// if the player has no connection or the enqueue fails; a failed connection
// is unregistered and closed before returning.
func (r *Registry) SendToPlayer(playerID uuid.UUID, env Envelope) bool {
	r.mu.Lock()
	conn, ok := r.players[playerID]
	r.mu.Unlock()
	if !ok {
		return false
	}
	return r.send(conn, env)
}

// send marshals env and enqueues it, evicting the connection on failure.
func (r *Registry) send(conn *Conn, env Envelope) bool {
	data, err := env.Encode()
	if err != nil {
		r.logger.Errorf("registry: encode %s event: %v", env.Type, err)
		return false
	}
	if err := conn.Write(data); err != nil {
		r.mu.Lock()
		r.unregisterLocked(conn)
		r.mu.Unlock()
		conn.Close()
		return false
	}
	return true
}

// SendTo delivers env on a specific connection, evicting it on failure.
func (r *Registry) SendTo(conn *Conn, env Envelope) bool {
	return r.send(conn, env)
}

// BroadcastToGame fans env out to every connection registered under
// sessionID and reports how many deliveries succeeded.
func (r *Registry) BroadcastToGame(sessionID uuid.UUID, env Envelope) int {
	r.mu.Lock()
	conns := make([]*Conn, 0, len(r.games[sessionID]))
	for c := range r.games[sessionID] {
		conns = append(conns, c)
	}
	r.mu.Unlock()

	delivered := 0
	for _, c := range conns {
		if r.send(c, env) {
			delivered++
		}
	}
	return delivered
}

// BroadcastToMatchmaking fans env out to the matchmaking set.
func (r *Registry) BroadcastToMatchmaking(env Envelope) int {
	r.mu.Lock()
	conns := make([]*Conn, 0, len(r.matchmaking))
	for c := range r.matchmaking {
		conns = append(conns, c)
	}
	r.mu.Unlock()

	delivered := 0
	for _, c := range conns {
		if r.send(c, env) {
			delivered++
		}
	}
	return delivered
}

// PlayerConnected reports whether playerID has a live player-channel
// connection.
func (r *Registry) PlayerConnected(playerID uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.players[playerID]
	return ok
}

// Snapshot returns a point-in-time description of every live connection.
func (r *Registry) Snapshot() []ConnInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ConnInfo, 0, len(r.meta))
	for _, info := range r.meta {
		out = append(out, info)
	}
	return out
}
