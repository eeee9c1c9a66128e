package storage

import (
	"github.com/shecare-health/shecare-backend/internal/models"
)

// Store defines the interface for conversation persistence. One logical turn
// (a webhook request or a background job) makes its calls and returns; each
// mutating call commits atomically, so a failure mid-turn never leaves a
// half-linked message/response pair behind.
type Store interface {
	// User operations
	GetOrCreateUser(phone string) (user *models.User, created bool, err error)
	GetUserByPhone(phone string) (*models.User, error)
	AllUsers() ([]*models.User, error)

	// Session operations. At most one active session per user.
	GetOrCreateSession(userID uint) (session *models.ChatSession, created bool, err error)
	SetSessionState(sessionID uint, state string) error
	DeactivateSessions(userID uint) error

	// Turn log. SaveTurn writes the inbound message, the outbound response
	// and the link between them in one transaction. outbound may be empty
	// when the reply goes out later via the outbound channel.
	SaveTurn(userID uint, inbound, outbound string) error

	// Chat memory (sliding prompt context)
	AppendChatMemory(userID uint, sender, body string) error
	RecentChatMemory(userID uint, limit int) ([]*models.ChatMemory, error)

	// Capability results
	SavePrescription(p *models.Prescription) error
	SaveHealthTip(t *models.HealthTip) error
}
