package session

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonafarm/market/logx"
)

// Roles a session can carry
const (
	RoleFarmer      = "farmer"
	RoleAdmin       = "admin"
	RoleDistributor = "distributor"
	RoleUser        = "user"
)

type ID string

// Session is one logged-in client.
type Session struct {
	ID        ID        `json:"-"`
	Role      string    `json:"role"`
	Name      string    `json:"name"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Manager keeps sessions in memory and binds them to a cookie.
type Manager struct {
	sessions   map[ID]*Session
	mu         sync.RWMutex
	cookieName string
	ttl        time.Duration
	now        func() time.Time
}

func NewManager(cookieName string, ttl time.Duration) *Manager {
	return &Manager{
		sessions:   make(map[ID]*Session),
		cookieName: cookieName,
		ttl:        ttl,
		now:        time.Now,
	}
}

func (m *Manager) generateID() ID {
	return ID(uuid.Must(uuid.NewV7()).String())
}

// Create starts a session for name with role and sets the cookie on w.
func (m *Manager) Create(w http.ResponseWriter, role, name string) Session {
	m.mu.Lock()
	s := &Session{
		ID:        m.generateID(),
		Role:      role,
		Name:      name,
		ExpiresAt: m.now().Add(m.ttl),
	}
	m.sessions[s.ID] = s
	total := len(m.sessions)
	m.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    string(s.ID),
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	logx.Info("SESSION", fmt.Sprintf("Session created | role=%s | name=%s | active=%d", role, name, total))
	return *s
}

// Get returns the live session referenced by the request cookie.
func (m *Manager) Get(r *http.Request) (Session, bool) {
	c, err := r.Cookie(m.cookieName)
	if err != nil || c.Value == "" {
		return Session{}, false
	}

	m.mu.RLock()
	s, ok := m.sessions[ID(c.Value)]
	m.mu.RUnlock()
	if !ok {
		return Session{}, false
	}
	if !m.now().Before(s.ExpiresAt) {
		m.mu.Lock()
		delete(m.sessions, s.ID)
		m.mu.Unlock()
		return Session{}, false
	}
	return *s, true
}

// Destroy ends the request's session, if any, and clears the cookie.
func (m *Manager) Destroy(w http.ResponseWriter, r *http.Request) bool {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	c, err := r.Cookie(m.cookieName)
	if err != nil {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[ID(c.Value)]; !ok {
		return false
	}
	delete(m.sessions, ID(c.Value))
	return true
}

// Sweep drops expired sessions and returns how many were removed.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for id, s := range m.sessions {
		if !now.Before(s.ExpiresAt) {
			delete(m.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		logx.Debug("SESSION", fmt.Sprintf("Swept expired sessions | removed=%d | active=%d", removed, len(m.sessions)))
	}
	return removed
}

// Count returns the number of stored sessions, expired ones included.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
