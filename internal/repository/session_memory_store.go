package repository

import (
	"context"
	"sync"

	"microlearn/internal/domain"
)

type memoryEntry struct {
	mu      sync.Mutex
	session *domain.Session
}

// MemorySessionStore keeps sessions in process memory. Writers of one session
// serialize on that session's mutex only.
type MemorySessionStore struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{entries: make(map[string]*memoryEntry)}
}

func (s *MemorySessionStore) Create(ctx context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" {
		return domain.NewValidationError("session id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[session.ID]; exists {
		return domain.NewInternalError("session already exists", nil).WithContext("session_id", session.ID)
	}
	s.entries[session.ID] = &memoryEntry{session: session.Clone()}
	return nil
}

func (s *MemorySessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	e := s.entry(id)
	if e == nil {
		return nil, domain.NewSessionNotFoundError(id)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Clone(), nil
}

// Update applies fn to a copy of the session and stores it only when fn succeeds.
func (s *MemorySessionStore) Update(ctx context.Context, id string, fn func(*domain.Session) error) (*domain.Session, error) {
	e := s.entry(id)
	if e == nil {
		return nil, domain.NewSessionNotFoundError(id)
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	working := e.session.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	e.session = working
	return working.Clone(), nil
}

// Len returns the number of stored sessions.
func (s *MemorySessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *MemorySessionStore) entry(id string) *memoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[id]
}

var _ domain.SessionStore = (*MemorySessionStore)(nil)
