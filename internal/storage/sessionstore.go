package storage

import (
	"sync"

	"github.com/kbdesk/kbdesk/pkg/models"
)

// ClarificationSession holds the numbered options offered to one user
// while a clarification reply is pending. At most one per user.
type ClarificationSession struct {
	Query   string
	Options map[int]models.KnowledgeEntry
}

// SessionStore keeps per-user clarification state between turns.
// Implementations must be safe for concurrent use.
type SessionStore interface {
	Get(userID string) (*ClarificationSession, bool)
	Set(userID string, session *ClarificationSession)
	Clear(userID string)
}

type memorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]*ClarificationSession
}

// NewSessionStore creates an in-memory session store. Sessions are lost
// on restart.
func NewSessionStore() SessionStore {
	return &memorySessionStore{sessions: make(map[string]*ClarificationSession)}
}

func (s *memorySessionStore) Get(userID string) (*ClarificationSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[userID]
	return session, ok
}

func (s *memorySessionStore) Set(userID string, session *ClarificationSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = session
}

func (s *memorySessionStore) Clear(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}
