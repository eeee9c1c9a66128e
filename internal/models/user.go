package models

import (
	"strings"

	"gorm.io/gorm"
)

// User is anyone who has ever messaged the bot. Created automatically on
// first contact, keyed by WhatsApp phone number.
type User struct {
	gorm.Model

	Phone string `json:"phone" gorm:"uniqueIndex"` // E.164-ish, no whatsapp: prefix
	Role  string `json:"role" gorm:"default:participant"`
	Name  string `json:"name"` // optional display name, used for personalized greetings
}

// BeforeCreate normalizes the phone number so lookups by phone are stable.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	u.Phone = strings.TrimSpace(strings.TrimPrefix(u.Phone, "whatsapp:"))

	if u.Role == "" {
		u.Role = "participant"
	}

	return nil
}
