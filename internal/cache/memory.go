package cache

import (
	"context"
	"sync"
	"time"

	"github.com/GTDGit/gtd_catalog/internal/utils"
)

type memoryEntry struct {
	data      Session
	expiresAt time.Time
}

// MemoryStore keeps sessions in process. It is used when Redis is not
// configured; sessions do not survive a restart.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

// Save stores a copy of s.
func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	s.UpdatedAt = now
	cp := *s
	cp.Criteria = s.Criteria.Clone()
	m.entries[s.ID] = memoryEntry{data: cp, expiresAt: now.Add(m.ttl)}
	return nil
}

// Load returns a copy of the session or utils.ErrSessionNotFound and
// resets its expiry.
func (m *MemoryStore) Load(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok {
		return nil, utils.ErrSessionNotFound
	}
	now := m.now()
	if m.ttl > 0 && !now.Before(e.expiresAt) {
		delete(m.entries, id)
		return nil, utils.ErrSessionNotFound
	}
	e.expiresAt = now.Add(m.ttl)
	m.entries[id] = e
	cp := e.data
	cp.Criteria = e.data.Criteria.Clone()
	return &cp, nil
}

// Delete removes the session.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.entries, id)
	m.mu.Unlock()
	return nil
}

// Sweep drops expired sessions and returns how many were removed.
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ttl <= 0 {
		return 0
	}
	now := m.now()
	n := 0
	for id, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, id)
			n++
		}
	}
	return n
}

// Len reports the number of stored sessions, expired or not.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
