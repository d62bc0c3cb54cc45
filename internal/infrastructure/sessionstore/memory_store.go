package sessionstore

import (
	"context"
	"sync"

	"github.com/riskibarqy/competition-manager/internal/domain/user"
)

// MemoryStore keeps the session for the lifetime of the process only.
type MemoryStore struct {
	mu      sync.RWMutex
	session *user.Session
}

var _ user.SessionStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(context.Context) (user.Session, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return user.Session{}, false, nil
	}
	return *s.session, true, nil
}

func (s *MemoryStore) Save(_ context.Context, session user.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = &session
	return nil
}

func (s *MemoryStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	return nil
}
