// Package directory provides the in-memory UserDirectory used by tests and
// by dev mode, where no PostgreSQL is available.
package directory

import (
	"context"
	"sync"

	"github.com/questline/questline/core"
	"github.com/questline/questline/ports"
)

// Memory is an in-memory UserDirectory.
type Memory struct {
	mu    sync.RWMutex
	users map[string]core.UserCredential
}

// NewMemory creates an empty in-memory directory.
func NewMemory() *Memory {
	return &Memory{users: make(map[string]core.UserCredential)}
}

// Add stores or replaces a credential record. The directory port itself
// stays read-only; Add exists for seeding tests and dev mode.
func (m *Memory) Add(cred core.UserCredential) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[cred.Username] = cred
}

// Lookup returns the credential record for username, or core.ErrNoUser.
func (m *Memory) Lookup(ctx context.Context, username string) (*core.UserCredential, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cred, ok := m.users[username]
	if !ok {
		return nil, core.ErrNoUser
	}
	return &cred, nil
}

var _ ports.UserDirectory = (*Memory)(nil)
