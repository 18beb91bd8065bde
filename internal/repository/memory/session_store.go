package memory

import (
	"sync"
	"time"

	"eventhub/internal/domain"
)

// SessionStore is an in-memory domain.SessionStore. Conversation transcripts
// live only as long as their session, so there is no database behind this; a
// background sweep drops sessions idle past their time-to-live in case the
// orchestrator never touches them again.
type SessionStore struct {
	mu       sync.RWMutex
	byID     map[string]*domain.ConversationSession
	byActor  map[string]string // actor id -> active session id
	ttl      time.Duration
	stopOnce sync.Once
	stop     chan struct{}
}

// NewSessionStore creates a store whose janitor discards sessions idle for
// longer than ttl. Close stops the janitor.
func NewSessionStore(ttl time.Duration) *SessionStore {
	s := &SessionStore{
		byID:    make(map[string]*domain.ConversationSession),
		byActor: make(map[string]string),
		ttl:     ttl,
		stop:    make(chan struct{}),
	}
	go s.janitor()
	return s
}

func (s *SessionStore) Put(session *domain.ConversationSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[session.ID] = session
	if !session.State.Terminal() {
		s.byActor[session.ActorID] = session.ID
	}
}

func (s *SessionStore) Get(id string) (*domain.ConversationSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.byID[id]
	return session, ok
}

func (s *SessionStore) FindActive(actorID string) (*domain.ConversationSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byActor[actorID]
	if !ok {
		return nil, false
	}
	session, ok := s.byID[id]
	if !ok || session.State.Terminal() {
		return nil, false
	}
	return session, true
}

func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.byID[id]; ok {
		if s.byActor[session.ActorID] == id {
			delete(s.byActor, session.ActorID)
		}
		delete(s.byID, id)
	}
}

// Len reports the number of stored sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// Close stops the background sweep.
func (s *SessionStore) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *SessionStore) janitor() {
	interval := s.ttl / 2
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			s.sweep(now)
		}
	}
}

func (s *SessionStore) sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, session := range s.byID {
		if now.Sub(session.LastActivityAt) > s.ttl {
			if s.byActor[session.ActorID] == id {
				delete(s.byActor, session.ActorID)
			}
			delete(s.byID, id)
		}
	}
}
