// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"context"
	"sync"

	"github.com/pdiddy/flomo2obsidian/pkg/types"
)

// Manager tracks open sessions by ID. It is safe for concurrent use.
type Manager struct {
	cfg  types.Config
	opts []Option

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager returns a Manager that begins sessions with cfg and opts.
func NewManager(cfg types.Config, opts ...Option) *Manager {
	return &Manager{
		cfg:      cfg,
		opts:     opts,
		sessions: make(map[string]*Session),
	}
}

// Begin starts a session for the archive at inputPath and registers it.
func (m *Manager) Begin(ctx context.Context, inputPath string) (*Session, error) {
	s, err := Begin(ctx, inputPath, m.cfg, m.opts...)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()
	return s, nil
}

// Get returns the open session with the given ID.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, types.NewStageError(types.ErrUnknownSession, id, nil)
	}
	return s, nil
}

// End ends the session with the given ID and forgets it.
func (m *Manager) End(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return types.NewStageError(types.ErrUnknownSession, id, nil)
	}
	s.End()
	return nil
}

// EndAll ends every open session.
func (m *Manager) EndAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.End()
	}
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
