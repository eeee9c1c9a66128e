package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shecare-health/shecare-backend/internal/ai"
)

const symptomSystemPrompt = "You are a helpful health assistant."

const symptomFallback = "⚠️ I had trouble checking that symptom. Please try again later."

// SymptomAdvisor turns a symptom description into friendly, non-diagnostic
// guidance.
type SymptomAdvisor struct {
	ai *ai.Failover
}

func NewSymptomAdvisor(failover *ai.Failover) *SymptomAdvisor {
	return &SymptomAdvisor{ai: failover}
}

// Check answers a symptom description. Quota failures fall over to the
// secondary backend inside the Failover; an exhausted fallback or an empty
// answer yields the static fallback text, and any other error propagates to
// the caller's boundary.
func (a *SymptomAdvisor) Check(ctx context.Context, symptom string) (string, error) {
	prompt := fmt.Sprintf(
		"You are SheCare, an AI health assistant that helps users understand symptoms in a helpful, "+
			"non-diagnostic way. A user reports: %q.\n"+
			"Provide a friendly, informative explanation and possible next steps "+
			"(e.g., rest, hydration, see a doctor, etc.).",
		symptom,
	)

	reply, err := a.ai.Complete(ctx, symptomSystemPrompt, prompt)
	if err != nil {
		if errors.Is(err, ai.ErrExhausted) {
			return symptomFallback, nil
		}
		return "", err
	}
	if reply == "" {
		return symptomFallback, nil
	}
	return reply, nil
}

// Greet produces the personalized AI welcome for a brand-new user, with a
// static welcome when the backends are unavailable.
func (a *SymptomAdvisor) Greet(ctx context.Context) string {
	reply, err := a.ai.Complete(ctx, symptomSystemPrompt,
		"Greet the user warmly and introduce SheCare, a WhatsApp companion for women's health support. Two sentences at most.")
	if err != nil || reply == "" {
		return "Hello! I'm SheCare, your private companion for women's health support — right here on WhatsApp."
	}
	return reply
}
