package models

import (
	"time"

	"gorm.io/gorm"
)

// Session states. The state only decides which capability the next free-text
// message is routed to; it never blocks a turn.
const (
	StateMainMenu     = "main_menu"
	StateSymptomInput = "symptom_input"
	StateClinicFinder = "clinic_finder"
)

// ChatSession tracks the conversation mode for one user. At most one active
// session per user, enforced by a partial unique index. Sessions are
// deactivated rather than deleted.
type ChatSession struct {
	gorm.Model

	UserID       uint      `json:"user_id" gorm:"index;uniqueIndex:ux_chat_sessions_active_user,where:is_active"`
	State        string    `json:"state" gorm:"default:main_menu"`
	LastActivity time.Time `json:"last_activity"`
	IsActive     bool      `json:"is_active" gorm:"default:true"`
}

// BeforeCreate sets defaults for sessions created without explicit state.
func (s *ChatSession) BeforeCreate(tx *gorm.DB) error {
	if s.State == "" {
		s.State = StateMainMenu
	}
	if s.LastActivity.IsZero() {
		s.LastActivity = time.Now()
	}
	s.IsActive = true
	return nil
}
