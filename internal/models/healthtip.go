package models

import (
	"time"

	"gorm.io/gorm"
)

// HealthTip records one generated tip and whether it was delivered, both for
// the inline menu option and the daily broadcast.
type HealthTip struct {
	gorm.Model

	UserID uint       `json:"user_id" gorm:"index"`
	Tip    string     `json:"tip" gorm:"type:text"`
	Sent   bool       `json:"sent" gorm:"default:false"`
	SentAt *time.Time `json:"sent_at"`
}
