package storage

import (
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/shecare-health/shecare-backend/internal/models"
)

// MemoryStore holds all data in memory. Used by tests and by local runs with
// USE_MEMORY_STORE=true; not for production.
type MemoryStore struct {
	mu sync.RWMutex

	users         map[string]*models.User // keyed by phone
	sessions      []*models.ChatSession
	messages      []*models.UserMessage
	responses     []*models.ResponseMessage
	memories      []*models.ChatMemory
	prescriptions []*models.Prescription
	tips          []*models.HealthTip

	nextID uint
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]*models.User),
	}
}

func (m *MemoryStore) id() uint {
	m.nextID++
	return m.nextID
}

func (m *MemoryStore) GetOrCreateUser(phone string) (*models.User, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if user, ok := m.users[phone]; ok {
		return user, false, nil
	}

	user := &models.User{Phone: phone, Role: "participant"}
	user.ID = m.id()
	user.CreatedAt = time.Now()
	m.users[phone] = user
	return user, true, nil
}

func (m *MemoryStore) GetUserByPhone(phone string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[phone]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (m *MemoryStore) AllUsers() ([]*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]*models.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u)
	}
	return users, nil
}

func (m *MemoryStore) GetOrCreateSession(userID uint) (*models.ChatSession, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.sessions {
		if s.UserID == userID && s.IsActive {
			return s, false, nil
		}
	}

	session := &models.ChatSession{
		UserID:       userID,
		State:        models.StateMainMenu,
		LastActivity: time.Now(),
		IsActive:     true,
	}
	session.ID = m.id()
	session.CreatedAt = time.Now()
	m.sessions = append(m.sessions, session)
	return session, true, nil
}

func (m *MemoryStore) SetSessionState(sessionID uint, state string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.sessions {
		if s.ID == sessionID {
			s.State = state
			s.LastActivity = time.Now()
			return nil
		}
	}
	return fmt.Errorf("session %d not found", sessionID)
}

func (m *MemoryStore) DeactivateSessions(userID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.sessions {
		if s.UserID == userID {
			s.IsActive = false
		}
	}
	return nil
}

func (m *MemoryStore) SaveTurn(userID uint, inbound, outbound string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	msg := &models.UserMessage{UserID: userID, Body: inbound}
	msg.ID = m.id()
	msg.CreatedAt = time.Now()
	m.messages = append(m.messages, msg)

	if outbound == "" {
		return nil
	}

	resp := &models.ResponseMessage{Body: outbound}
	resp.ID = m.id()
	resp.CreatedAt = time.Now()
	m.responses = append(m.responses, resp)

	respID := resp.ID
	msg.ResponseID = &respID
	return nil
}

func (m *MemoryStore) AppendChatMemory(userID uint, sender, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry := &models.ChatMemory{UserID: userID, Sender: sender, Body: body}
	entry.ID = m.id()
	entry.CreatedAt = time.Now()
	m.memories = append(m.memories, entry)

	// Same retention cap as the database store: drop the user's oldest rows
	// beyond the limit.
	count := 0
	for _, e := range m.memories {
		if e.UserID == userID {
			count++
		}
	}
	if excess := count - chatMemoryRetention; excess > 0 {
		kept := m.memories[:0]
		for _, e := range m.memories {
			if e.UserID == userID && excess > 0 {
				excess--
				continue
			}
			kept = append(kept, e)
		}
		m.memories = kept
	}
	return nil
}

func (m *MemoryStore) RecentChatMemory(userID uint, limit int) ([]*models.ChatMemory, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("chat memory limit must be positive, got %d", limit)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var rows []*models.ChatMemory
	for _, e := range m.memories {
		if e.UserID == userID {
			rows = append(rows, e)
		}
	}
	if len(rows) > limit {
		rows = rows[len(rows)-limit:]
	}
	return rows, nil
}

func (m *MemoryStore) SavePrescription(p *models.Prescription) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p.ID = m.id()
	p.CreatedAt = time.Now()
	m.prescriptions = append(m.prescriptions, p)
	return nil
}

func (m *MemoryStore) SaveHealthTip(t *models.HealthTip) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t.ID = m.id()
	t.CreatedAt = time.Now()
	m.tips = append(m.tips, t)
	return nil
}

// Test helpers. These read internal state that production code never needs.

func (m *MemoryStore) ActiveSessionCount(userID uint) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, s := range m.sessions {
		if s.UserID == userID && s.IsActive {
			n++
		}
	}
	return n
}

func (m *MemoryStore) Prescriptions() []*models.Prescription {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*models.Prescription(nil), m.prescriptions...)
}

func (m *MemoryStore) HealthTips() []*models.HealthTip {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*models.HealthTip(nil), m.tips...)
}

func (m *MemoryStore) Messages() []*models.UserMessage {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*models.UserMessage(nil), m.messages...)
}
