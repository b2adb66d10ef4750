package store

import (
	"context"
	"sync"

	"steamvault/internal/guard/entity"
	"steamvault/internal/pkg/clock"
	"steamvault/internal/pkg/goerror"
)

// Memory is an in-process SessionStore for single-node deployments and tests.
type Memory struct {
	mu       sync.RWMutex
	sessions map[string]entity.Session
	clock    clock.Clocker
}

// NewMemory builds an empty in-memory store.
func NewMemory(clk clock.Clocker) *Memory {
	return &Memory{
		sessions: make(map[string]entity.Session),
		clock:    clk,
	}
}

// Get implements the SessionStore interface.
func (m *Memory) Get(_ context.Context, accountID string) (*entity.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, ok := m.sessions[accountID]
	if !ok {
		return nil, goerror.ErrNotFound
	}

	return &sess, nil
}

// Set implements the SessionStore interface.
func (m *Memory) Set(_ context.Context, accountID string, sess entity.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	if prev, ok := m.sessions[accountID]; ok && !prev.CreatedAt.IsZero() {
		sess.CreatedAt = prev.CreatedAt
	} else {
		sess.CreatedAt = now
	}
	sess.LastUsed = now

	m.sessions[accountID] = sess
	return nil
}

// Touch implements the SessionStore interface.
func (m *Memory) Touch(_ context.Context, accountID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[accountID]
	if !ok {
		return nil
	}

	sess.LastUsed = m.clock.Now()
	m.sessions[accountID] = sess
	return nil
}

// Clear implements the SessionStore interface.
func (m *Memory) Clear(_ context.Context, accountID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, accountID)
	return nil
}
