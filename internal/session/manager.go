package session

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/drelsherif/shaky/internal/config"
)

// Manager hands out one Controller per session ID. Sessions live in memory
// only and are pruned after a period of inactivity.
type Manager struct {
	mu       sync.Mutex
	log      *zap.Logger
	sessions map[string]*Controller
}

// NewManager creates an empty session manager.
func NewManager(log *zap.Logger) *Manager {
	return &Manager{
		log:      log,
		sessions: make(map[string]*Controller),
	}
}

// Get returns the controller for a session ID, creating it on first use
// with the current assessment configuration.
func (m *Manager) Get(id string) *Controller {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.sessions[id]; ok {
		return c
	}
	c := NewController(m.log.With(zap.String("session", id)), config.Conf.Assessment)
	m.sessions[id] = c
	m.log.Info("Session created", zap.String("session", id))
	return c
}

// Reset replaces the session's controller, clearing all recorded results.
func (m *Manager) Reset(id string) *Controller {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.sessions[id]; ok {
		c.Reset()
		return c
	}
	c := NewController(m.log.With(zap.String("session", id)), config.Conf.Assessment)
	m.sessions[id] = c
	return c
}

// PruneIdle drops sessions with no activity for at least maxIdle and
// returns how many were removed.
func (m *Manager) PruneIdle(maxIdle time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	pruned := 0
	for id, c := range m.sessions {
		if time.Since(c.LastActivity()) >= maxIdle {
			c.Reset()
			delete(m.sessions, id)
			pruned++
		}
	}
	return pruned
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
