package sessionstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/nutrition-advisor/internal/domain/session"
)

// MemoryStore keeps sessions in process memory only; nothing survives a restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*session.Session
	now      func() time.Time
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[uuid.UUID]*session.Session),
		now:      time.Now,
	}
}

// Put implements session.Store and evicts expired sessions.
func (s *MemoryStore) Put(_ context.Context, sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleanupLocked(s.now())
	s.sessions[sess.ID] = sess
	return nil
}

// Get implements session.Store.
func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (*session.Session, bool, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if sess.Expired(s.now()) {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return nil, false, nil
	}
	return sess, true, nil
}

// Delete implements session.Store.
func (s *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Len reports the number of live sessions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *MemoryStore) cleanupLocked(now time.Time) {
	for id, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, id)
		}
	}
}

var _ session.Store = (*MemoryStore)(nil)
