package session

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wricardo/snekoban/game/engine"
	"github.com/wricardo/snekoban/game/service"
)

var (
	ErrSessionNotFound      = service.ErrSessionNotFound
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

// maxSessionIDLength bounds caller-chosen ids
const maxSessionIDLength = 64

// Manager keeps the live sessions, keyed by lowercased id. Timestamps on a
// session are only written while mu is held for writing, and persistence
// reads them with mu held.
type Manager struct {
	mu          sync.RWMutex
	sessions    map[string]*service.Session
	persistence SessionPersistence
}

// NewManager creates an in-memory session manager
func NewManager() *Manager {
	return NewManagerWithPersistence(nil)
}

// NewManagerWithPersistence creates a session manager backed by persistence.
// A nil persistence keeps sessions in memory only.
func NewManagerWithPersistence(persistence SessionPersistence) *Manager {
	return &Manager{
		sessions:    make(map[string]*service.Session),
		persistence: persistence,
	}
}

func key(id string) string {
	return strings.ToLower(id)
}

// validSessionID accepts ids that are safe to use as file names
func validSessionID(id string) bool {
	if id == "" || len(id) > maxSessionIDLength {
		return false
	}
	return strings.IndexFunc(id, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_')
	}) < 0
}

// newSessionID returns eight hex characters of a random UUID
func newSessionID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// persistLocked saves sess if persistence is configured; m.mu must be held
func (m *Manager) persistLocked(sess *service.Session, when string) {
	if m.persistence == nil {
		return
	}
	if err := m.persistence.Save(sess); err != nil {
		log.Printf("Warning: Failed to persist session %s %s: %v", sess.ID, when, err)
	}
}

// Create starts a session on level. An empty id is replaced by a generated one.
func (m *Manager) Create(id string, level *engine.LevelConfig) (*service.Session, error) {
	if id != "" && !validSessionID(id) {
		return nil, ErrInvalidSessionID
	}

	eng, err := engine.NewEngine(level)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id = newSessionID()
		for m.sessions[key(id)] != nil {
			id = newSessionID()
		}
	} else if m.sessions[key(id)] != nil {
		return nil, ErrSessionAlreadyExists
	}

	now := time.Now()
	sess := &service.Session{
		ID:             id,
		Engine:         eng,
		Config:         level,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	m.sessions[key(id)] = sess
	m.persistLocked(sess, "on creation")

	return sess, nil
}

// Get returns a live session, falling back to persistence for unknown ids
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	sess := m.sessions[key(id)]
	m.mu.RUnlock()
	if sess != nil {
		return sess, nil
	}

	if m.persistence == nil || !validSessionID(id) || !m.persistence.Exists(id) {
		return nil, ErrSessionNotFound
	}

	loaded, err := m.persistence.Load(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load persisted session: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another caller may have loaded it meanwhile
	if existing := m.sessions[key(id)]; existing != nil {
		return existing, nil
	}
	m.sessions[key(id)] = loaded
	return loaded, nil
}

// GetOrCreate returns the session for id, creating it on level when missing
func (m *Manager) GetOrCreate(id string, level *engine.LevelConfig) (*service.Session, error) {
	sess, err := m.Get(id)
	if !errors.Is(err, ErrSessionNotFound) {
		return sess, err
	}

	sess, err = m.Create(id, level)
	if errors.Is(err, ErrSessionAlreadyExists) {
		return m.Get(id)
	}
	return sess, err
}

// List returns the live sessions in no particular order
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		result = append(result, sess)
	}
	return result
}

// Delete removes a session from memory and from persistence
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, inMemory := m.sessions[key(id)]
	delete(m.sessions, key(id))

	if m.persistence != nil && validSessionID(id) && m.persistence.Exists(id) {
		if err := m.persistence.Delete(id); err != nil {
			return fmt.Errorf("failed to delete persisted session: %w", err)
		}
		return nil
	}

	if !inMemory {
		return ErrSessionNotFound
	}
	return nil
}

// DeleteFromMemory drops a live session and leaves its stored copy alone
func (m *Manager) DeleteFromMemory(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[key(id)]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, key(id))
	return nil
}

// UpdateLastAccessed marks a session as used now and persists it
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess := m.sessions[key(id)]
	if sess == nil {
		return ErrSessionNotFound
	}
	sess.LastAccessedAt = time.Now()
	m.persistLocked(sess, "after access update")
	return nil
}

// Save writes one live session to persistence; without persistence it is a no-op
func (m *Manager) Save(id string) error {
	if m.persistence == nil {
		return nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	sess := m.sessions[key(id)]
	if sess == nil {
		return ErrSessionNotFound
	}
	return m.persistence.Save(sess)
}

// CleanupExpiredSessions drops sessions idle for longer than maxAge and
// returns how many were dropped. Stored copies are kept.
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for k, sess := range m.sessions {
		if sess.LastAccessedAt.Before(cutoff) {
			delete(m.sessions, k)
			removed++
		}
	}
	return removed
}

// Count returns the number of live sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// LoadPersistedSessions brings every stored session into memory. Files that
// fail to load are logged and skipped.
func (m *Manager) LoadPersistedSessions() error {
	if m.persistence == nil {
		return nil
	}

	ids, err := m.persistence.ListAll()
	if err != nil {
		return fmt.Errorf("failed to list persisted sessions: %w", err)
	}

	loaded := make(map[string]*service.Session, len(ids))
	for _, id := range ids {
		sess, err := m.persistence.Load(id)
		if err != nil {
			log.Printf("Warning: Failed to load persisted session %s: %v", id, err)
			continue
		}
		loaded[key(id)] = sess
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	added := 0
	for k, sess := range loaded {
		if m.sessions[k] != nil {
			continue
		}
		m.sessions[k] = sess
		added++
	}
	if added > 0 {
		log.Printf("Loaded %d persisted sessions from storage", added)
	}
	return nil
}

// SaveAllSessions writes every live session to persistence
func (m *Manager) SaveAllSessions() error {
	if m.persistence == nil {
		return nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var errs []error
	for _, sess := range m.sessions {
		if err := m.persistence.Save(sess); err != nil {
			errs = append(errs, fmt.Errorf("session %s: %w", sess.ID, err))
		}
	}
	return errors.Join(errs...)
}
