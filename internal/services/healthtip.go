package services

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/shecare-health/shecare-backend/internal/ai"
	"github.com/shecare-health/shecare-backend/internal/models"
	"github.com/shecare-health/shecare-backend/internal/storage"
)

const tipSystemPrompt = "You are a caring digital health assistant providing practical advice."

var tipCategories = []string{
	"nutrition",
	"mental health",
	"exercise",
	"hygiene",
	"reproductive health",
	"hydration",
	"sleep habits",
	"disease prevention",
}

// Static tips used when both completion backends are unavailable.
var fallbackTips = []string{
	"Stay hydrated, rest well, and take care of your body every day!",
	"Eat balanced meals and include fruits and vegetables.",
	"Get at least 7 hours of sleep daily to boost immunity.",
	"Take short walks and stretch to reduce stress.",
	"Stay positive — your mental health matters too!",
}

// TipGenerator produces one short daily health tip. It never fails: any
// backend trouble lands on a canned tip, because a tip is never worth an
// error message.
type TipGenerator struct {
	ai    *ai.Failover
	store storage.Store
}

func NewTipGenerator(failover *ai.Failover, store storage.Store) *TipGenerator {
	return &TipGenerator{ai: failover, store: store}
}

// GenerateText produces the tip text without persisting anything. Callers
// that deliver the tip themselves record it afterwards via Record.
func (g *TipGenerator) GenerateText(ctx context.Context) string {
	category := tipCategories[rand.Intn(len(tipCategories))]

	prompt := fmt.Sprintf(
		"Write one short, friendly daily health tip about %s, "+
			"suitable for a general audience in Kenya. Keep it under 50 words. "+
			"Return only the tip text (no title, no bullets).",
		category,
	)

	tip, err := g.ai.Complete(ctx, tipSystemPrompt, prompt)
	if err != nil || tip == "" {
		if err != nil {
			log.Printf("❌ Health tip generation failed (%s): %v", category, err)
		}
		return fallbackTips[rand.Intn(len(fallbackTips))]
	}

	log.Printf("💡 Generated health tip (%s): %s", category, tip)
	return tip
}

// Generate creates a tip for the user and records it unsent; the inline menu
// path uses this since delivery rides on the webhook reply itself.
func (g *TipGenerator) Generate(ctx context.Context, userID uint) string {
	tip := g.GenerateText(ctx)
	g.Record(userID, tip, false)
	return tip
}

// Record persists one tip, optionally marked as already delivered.
func (g *TipGenerator) Record(userID uint, tip string, sent bool) {
	record := &models.HealthTip{UserID: userID, Tip: tip, Sent: sent}
	if sent {
		now := time.Now()
		record.SentAt = &now
	}
	if err := g.store.SaveHealthTip(record); err != nil {
		log.Printf("❌ Failed to save health tip for user %d: %v", userID, err)
	}
}
