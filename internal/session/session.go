package session

import (
	"sync"

	"librarybot/internal/models"
)

// Session holds the authenticated identity for one chat. It is created on a
// successful login and destroyed on logout; nothing about it survives either
// transition.
type Session struct {
	Member models.Member
}

// Manager tracks the active session per chat. The zero value is not usable;
// call NewManager.
type Manager struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

// NewManager creates an empty session manager
func NewManager() *Manager {
	return &Manager{sessions: make(map[int64]*Session)}
}

// Login records a fresh session for chatID, replacing any previous one
func (m *Manager) Login(chatID int64, member models.Member) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := &Session{Member: member}
	m.sessions[chatID] = s
	return s
}

// Get returns the session for chatID, or nil when the chat is not logged in
func (m *Manager) Get(chatID int64) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.sessions[chatID]
}

// Logout drops the session for chatID. It reports whether a session existed.
func (m *Manager) Logout(chatID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.sessions[chatID]
	delete(m.sessions, chatID)
	return ok
}
