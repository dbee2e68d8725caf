package session

import (
	"sync"

	"chat-relay/internal/model/chat"
)

// DefaultLimit caps the number of turns retained per session.
const DefaultLimit = 20

// Store holds per-session conversation history in memory. State lives for the
// process lifetime only; sessions are never expired, so the session count can
// grow without bound under the current deployment model.
type Store struct {
	mu       sync.RWMutex
	limit    int
	sessions map[string][]chat.Turn
}

// NewStore bootstraps an empty store. A non-positive limit falls back to
// DefaultLimit.
func NewStore(limit int) *Store {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Store{
		limit:    limit,
		sessions: make(map[string][]chat.Turn),
	}
}

// Append records a turn for the session, creating the session on first use.
// Once the history exceeds the limit the oldest turn is evicted so the most
// recent context is what reaches the model.
func (s *Store) Append(sessionID, role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := append(s.sessions[sessionID], chat.Turn{Role: role, Content: content})
	if len(turns) > s.limit {
		turns = turns[len(turns)-s.limit:]
	}
	s.sessions[sessionID] = turns
}

// History returns a copy of the session's turns, nil if the session is unknown.
func (s *Store) History(sessionID string) []chat.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}

	copied := make([]chat.Turn, len(turns))
	copy(copied, turns)
	return copied
}

// Clear removes the session entirely. Clearing an unknown session is a no-op.
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// Len reports how many sessions currently hold history.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
