package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/shecare-health/shecare-backend/internal/ai"
	"github.com/shecare-health/shecare-backend/internal/models"
	"github.com/shecare-health/shecare-backend/internal/storage"
)

const (
	freeChatSystemPrompt = "You are a careful, friendly health-support assistant. " +
		"You provide general information, encourage professional consultation, " +
		"and avoid overconfident medical claims."

	freeChatFallback = "I can help — could you clarify your question a bit? " +
		"You can keep typing, or reply 0 to see the menu."

	// How many recent turns feed the prompt as context.
	freeChatContextLimit = 10
)

// FreeChatAgent answers free-form questions from the main menu, feeding the
// recent chat memory back into the prompt so follow-ups make sense.
type FreeChatAgent struct {
	ai    *ai.Failover
	store storage.Store
}

func NewFreeChatAgent(failover *ai.Failover, store storage.Store) *FreeChatAgent {
	return &FreeChatAgent{ai: failover, store: store}
}

// Respond answers the user's message in the context of their recent turns.
func (a *FreeChatAgent) Respond(ctx context.Context, user *models.User, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "I didn’t catch that — could you retype your question?", nil
	}

	recent := a.recentContext(user.ID)

	nameHint := ""
	if user.Name != "" {
		nameHint = fmt.Sprintf("The user's name is %s.", user.Name)
	}
	if recent == "" {
		recent = "(no prior context available)"
	}

	prompt := fmt.Sprintf(`You are SheCare’s WhatsApp assistant for women’s health support.

%s

Conversation so far (most recent):
%s

The user just asked:
%q

Respond helpfully and briefly.

Rules:
- If the user is asking a follow-up about symptoms, provide general guidance and possible explanations, but do NOT diagnose.
- If they ask which clinic you recommend, explain a simple decision framework (distance, reviews, services, hours, cost, emergency capability) and suggest the best choice ONLY if the clinic list in context includes clear differentiators; otherwise ask 1-2 clarifying questions.
- If they ask about prescriptions/medicines, give general information and safety reminders, and encourage confirmation with a pharmacist/clinician.
- If they ask about subscriptions/dashboard/account, explain clearly in plain language, based on what appears in context; if missing, say what info you need.
- If the user says thanks or reacts, respond warmly and offer the next step.
- Keep it WhatsApp-friendly (short paragraphs, minimal bullets).
- End with a single line that invites continuing the chat OR returning to the menu:
  "You can keep typing to continue, or reply 0 to see the menu."`,
		nameHint, recent, message)

	reply, err := a.ai.Complete(ctx, freeChatSystemPrompt, prompt)
	if err != nil {
		if errors.Is(err, ai.ErrExhausted) {
			return freeChatFallback, nil
		}
		return "", err
	}
	if reply == "" {
		return freeChatFallback, nil
	}
	return reply, nil
}

func (a *FreeChatAgent) recentContext(userID uint) string {
	rows, err := a.store.RecentChatMemory(userID, freeChatContextLimit)
	if err != nil {
		log.Printf("⚠️  Failed to load chat memory for user %d: %v", userID, err)
		return ""
	}

	var lines []string
	for _, row := range rows {
		body := strings.TrimSpace(row.Body)
		if body == "" {
			continue
		}
		role := "Bot"
		if row.Sender == models.SenderUser {
			role = "User"
		}
		lines = append(lines, role+": "+body)
	}
	return strings.Join(lines, "\n")
}
