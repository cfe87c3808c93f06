package account

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-memory account store used for development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]*Account
	byEmail map[string]string
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]*Account),
		byEmail: make(map[string]string),
	}
}

// Put inserts or replaces an account.
func (s *MemoryStore) Put(a *Account) error {
	if a == nil || strings.TrimSpace(a.ID) == "" {
		return ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *a
	s.byID[c.ID] = &c
	if email := normalizeEmail(c.Email); email != "" {
		s.byEmail[email] = c.ID
	}
	return nil
}

func (s *MemoryStore) Find(ctx context.Context, id string) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *a
	return &c, nil
}

func (s *MemoryStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, ErrNotFound
	}
	a, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *a
	return &c, nil
}

func (s *MemoryStore) UpdatePassword(ctx context.Context, id, passwordHash string, changedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	a.PasswordHash = passwordHash
	at := changedAt.UTC()
	a.PasswordChangedAt = &at
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
