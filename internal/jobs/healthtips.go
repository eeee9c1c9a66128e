package jobs

import (
	"context"
	"log"
	"time"

	"github.com/shecare-health/shecare-backend/internal/services"
)

// HealthTipJob runs the daily health-tip broadcast on a fixed interval. The
// cron endpoint can also trigger the same broadcast on demand.
type HealthTipJob struct {
	broadcaster *services.TipBroadcaster
	interval    time.Duration
	stop        chan struct{}
	isRunning   bool
}

// NewHealthTipJob creates the scheduled broadcast job.
func NewHealthTipJob(broadcaster *services.TipBroadcaster) *HealthTipJob {
	return &HealthTipJob{
		broadcaster: broadcaster,
		interval:    24 * time.Hour,
		stop:        make(chan struct{}),
	}
}

// Start begins the scheduled broadcast loop.
func (j *HealthTipJob) Start() {
	if j.isRunning {
		log.Println("Health tip job already running")
		return
	}
	j.isRunning = true

	go j.loop()
	log.Println("🕒 Daily health tip scheduler started")
}

// Stop halts the scheduled loop. A broadcast already in flight finishes.
func (j *HealthTipJob) Stop() {
	if !j.isRunning {
		return
	}
	j.isRunning = false
	close(j.stop)
	log.Println("Stopping daily health tip scheduler...")
}

func (j *HealthTipJob) loop() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := j.broadcaster.BroadcastDailyTips(context.Background()); err != nil {
				log.Printf("❌ Scheduled tip broadcast failed: %v", err)
			}
		case <-j.stop:
			return
		}
	}
}
