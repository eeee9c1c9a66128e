package services

import (
	"context"
	"log"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/shecare-health/shecare-backend/internal/storage"
)

// broadcastConcurrency bounds how many tip sends run at once during a
// broadcast, so a large user base does not stampede the providers.
const broadcastConcurrency = 4

// TipBroadcaster fans the daily health tip out to every known user. It is
// driven both by the scheduled job and by the cron-protected endpoint.
type TipBroadcaster struct {
	store  storage.Store
	tips   *TipGenerator
	sender MessageSender
}

func NewTipBroadcaster(store storage.Store, tips *TipGenerator, sender MessageSender) *TipBroadcaster {
	return &TipBroadcaster{store: store, tips: tips, sender: sender}
}

// BroadcastDailyTips generates and sends one tip per user, recording each
// send. Individual failures are logged and skipped; the broadcast itself
// only fails when the user list cannot be loaded.
func (t *TipBroadcaster) BroadcastDailyTips(ctx context.Context) (int, error) {
	log.Println("💌 Sending daily health tips...")

	users, err := t.store.AllUsers()
	if err != nil {
		return 0, err
	}
	if len(users) == 0 {
		log.Println("⚠️  No users found for tip broadcast")
		return 0, nil
	}

	var sent atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(broadcastConcurrency)

	for _, user := range users {
		user := user
		g.Go(func() error {
			tip := t.tips.GenerateText(ctx)
			if err := t.sender.SendWhatsAppMessage(user.Phone, "🌿 *Daily Health Tip*\n"+tip); err != nil {
				log.Printf("⚠️  Failed to send tip to %s: %v", user.Phone, err)
				return nil
			}
			t.tips.Record(user.ID, tip, true)
			sent.Add(1)
			return nil
		})
	}

	_ = g.Wait()
	log.Printf("🎯 Daily tips sent to %d/%d users", sent.Load(), len(users))
	return int(sent.Load()), nil
}
