// Package revocation tracks tokens that were invalidated before their
// natural expiry, typically on logout. The registry is consulted on every
// authenticated request, so membership tests must stay cheap under
// concurrent load.
package revocation

import "sync"

// DefaultCeiling is the registry size past which a sweep clears everything.
const DefaultCeiling = 10000

// Store is the revocation registry abstraction. Single-instance deployments
// use the in-memory implementation below; a multi-instance deployment can
// substitute an externally backed store with per-entry expiry behind the
// same interface.
type Store interface {
	// Add records a token as revoked. Adding the same token again is a no-op.
	Add(token string)
	// IsRevoked reports whether the token was previously revoked.
	IsRevoked(token string) bool
	// Sweep clears the registry entirely once it exceeds its ceiling and
	// returns the number of entries dropped. A zero return means the
	// ceiling was not reached and nothing changed.
	Sweep() int
	// Len returns the current number of revoked entries.
	Len() int
}

// Memory is a process-lifetime, mutex-guarded revocation set. Entries do not
// survive a restart. Eviction is deliberately coarse: once the ceiling is
// exceeded the whole set is dropped, relying on tokens expiring naturally
// faster than the ceiling fills up.
type Memory struct {
	mu      sync.RWMutex
	ceiling int
	tokens  map[string]struct{}
}

// NewMemory returns an empty registry. A ceiling of zero or less falls back
// to DefaultCeiling.
func NewMemory(ceiling int) *Memory {
	if ceiling <= 0 {
		ceiling = DefaultCeiling
	}
	return &Memory{
		ceiling: ceiling,
		tokens:  make(map[string]struct{}),
	}
}

func (m *Memory) Add(token string) {
	if token == "" {
		return
	}
	m.mu.Lock()
	m.tokens[token] = struct{}{}
	m.mu.Unlock()
}

func (m *Memory) IsRevoked(token string) bool {
	m.mu.RLock()
	_, ok := m.tokens[token]
	m.mu.RUnlock()
	return ok
}

func (m *Memory) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.tokens) <= m.ceiling {
		return 0
	}
	cleared := len(m.tokens)
	m.tokens = make(map[string]struct{})
	return cleared
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tokens)
}
