package models

import (
	"gorm.io/gorm"
)

// UserMessage is one inbound message. Append-only audit log; optionally
// linked 1:1 to the ResponseMessage produced for it.
type UserMessage struct {
	gorm.Model

	UserID     uint   `json:"user_id" gorm:"index"`
	Body       string `json:"body" gorm:"type:text"`
	ResponseID *uint  `json:"response_id"`
}

// ResponseMessage is one outbound reply. Immutable once linked.
type ResponseMessage struct {
	gorm.Model

	Body string `json:"body" gorm:"type:text"`
}

// Chat memory senders.
const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// ChatMemory is a lightweight turn log used purely as a sliding context
// window for AI prompts. Reads cap at a small limit; retention is a capped
// per-user row count pruned on append.
type ChatMemory struct {
	gorm.Model

	UserID uint   `json:"user_id" gorm:"index"`
	Sender string `json:"sender"` // "user" or "bot"
	Body   string `json:"body" gorm:"type:text"`
}
