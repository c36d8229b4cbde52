// internal/game/store.go
package game

import (
	"sync"

	"github.com/google/uuid"
)

// SessionStore owns every live session in the process. It also tracks which
// player is in which active session so matchmaking can refuse a join from a
// player who is already mid-match.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	byPlayer map[uuid.UUID]uuid.UUID
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[uuid.UUID]*Session),
		byPlayer: make(map[uuid.UUID]uuid.UUID),
	}
}

// Add registers a new session and claims both participants.
func (st *SessionStore) Add(s *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[s.ID] = s
	for _, pid := range s.PlayerIDs() {
		st.byPlayer[pid] = s.ID
	}
}

// Get returns the session by id.
func (st *SessionStore) Get(id uuid.UUID) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	return s, ok
}

// GetByPlayer returns the active session a player belongs to, if any.
func (st *SessionStore) GetByPlayer(playerID uuid.UUID) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	sid, ok := st.byPlayer[playerID]
	if !ok {
		return nil, false
	}
	s, ok := st.sessions[sid]
	return s, ok
}

// Delete removes a session and releases its participants. No-op for an
// unknown id.
func (st *SessionStore) Delete(id uuid.UUID) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if !ok {
		return
	}
	delete(st.sessions, id)
	for _, pid := range s.PlayerIDs() {
		if st.byPlayer[pid] == id {
			delete(st.byPlayer, pid)
		}
	}
}

// Count returns the number of live sessions.
func (st *SessionStore) Count() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
