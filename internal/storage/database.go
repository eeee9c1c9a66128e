package storage

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/shecare-health/shecare-backend/internal/models"
)

// chatMemoryRetention caps how many chat-memory rows are kept per user.
// Rows beyond the cap are pruned on append, oldest first.
const chatMemoryRetention = 200

// DatabaseStore is the PostgreSQL-backed store.
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a database-backed storage
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// GetOrCreateUser finds the user by phone or creates one with the default
// participant role.
func (s *DatabaseStore) GetOrCreateUser(phone string) (*models.User, bool, error) {
	var user models.User
	err := s.db.Where("phone = ?", phone).First(&user).Error
	if err == nil {
		return &user, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	user = models.User{Phone: phone, Role: "participant"}
	if err := s.db.Create(&user).Error; err != nil {
		// A concurrent first message may have won the insert.
		var existing models.User
		if lookupErr := s.db.Where("phone = ?", phone).First(&existing).Error; lookupErr == nil {
			return &existing, false, nil
		}
		return nil, false, err
	}
	return &user, true, nil
}

func (s *DatabaseStore) GetUserByPhone(phone string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("phone = ?", phone).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *DatabaseStore) AllUsers() ([]*models.User, error) {
	var users []*models.User
	if err := s.db.Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// GetOrCreateSession returns the user's active session, creating one in the
// main_menu state when none exists. The partial unique index on
// (user_id) WHERE is_active makes a concurrent duplicate creation fail; the
// loser re-reads the winning row.
func (s *DatabaseStore) GetOrCreateSession(userID uint) (*models.ChatSession, bool, error) {
	var session models.ChatSession
	err := s.db.Where("user_id = ? AND is_active = ?", userID, true).First(&session).Error
	if err == nil {
		return &session, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	session = models.ChatSession{
		UserID:       userID,
		State:        models.StateMainMenu,
		LastActivity: time.Now(),
		IsActive:     true,
	}
	if err := s.db.Create(&session).Error; err != nil {
		var existing models.ChatSession
		if lookupErr := s.db.Where("user_id = ? AND is_active = ?", userID, true).First(&existing).Error; lookupErr == nil {
			return &existing, false, nil
		}
		return nil, false, err
	}
	return &session, true, nil
}

func (s *DatabaseStore) SetSessionState(sessionID uint, state string) error {
	return s.db.Model(&models.ChatSession{}).
		Where("id = ?", sessionID).
		Updates(map[string]any{
			"state":         state,
			"last_activity": time.Now(),
		}).Error
}

// DeactivateSessions flips every active session for the user to inactive.
// Sessions are never hard-deleted.
func (s *DatabaseStore) DeactivateSessions(userID uint) error {
	return s.db.Model(&models.ChatSession{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Update("is_active", false).Error
}

// SaveTurn writes the inbound message, the response and the link between
// them in one transaction so a failure rolls all three back together.
func (s *DatabaseStore) SaveTurn(userID uint, inbound, outbound string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		msg := models.UserMessage{UserID: userID, Body: inbound}
		if err := tx.Create(&msg).Error; err != nil {
			return err
		}

		if outbound == "" {
			return nil
		}

		resp := models.ResponseMessage{Body: outbound}
		if err := tx.Create(&resp).Error; err != nil {
			return err
		}
		return tx.Model(&msg).Update("response_id", resp.ID).Error
	})
}

// AppendChatMemory records one turn and prunes the user's memory beyond the
// retention cap.
func (s *DatabaseStore) AppendChatMemory(userID uint, sender, body string) error {
	entry := models.ChatMemory{UserID: userID, Sender: sender, Body: body}
	if err := s.db.Create(&entry).Error; err != nil {
		return err
	}

	return s.db.Exec(
		`DELETE FROM chat_memories
		 WHERE user_id = ? AND id NOT IN (
			SELECT id FROM chat_memories WHERE user_id = ? ORDER BY id DESC LIMIT ?
		 )`,
		userID, userID, chatMemoryRetention,
	).Error
}

// RecentChatMemory returns up to limit entries in chronological order
// (fetched most-recent-first, then reversed).
func (s *DatabaseStore) RecentChatMemory(userID uint, limit int) ([]*models.ChatMemory, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("chat memory limit must be positive, got %d", limit)
	}

	var rows []*models.ChatMemory
	err := s.db.Where("user_id = ?", userID).
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows, nil
}

func (s *DatabaseStore) SavePrescription(p *models.Prescription) error {
	return s.db.Create(p).Error
}

func (s *DatabaseStore) SaveHealthTip(t *models.HealthTip) error {
	return s.db.Create(t).Error
}
