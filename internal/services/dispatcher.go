package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// apologyMessage is the one reply a failed background job produces.
const apologyMessage = "⚠️ Sorry, I had trouble processing that. Please try again, or reply 0 to see the menu."

// Job is one slow capability invocation handed off by the state machine.
// Run executes with a durable background context, never the webhook's
// request context, and returns the final user-facing text.
type Job struct {
	Kind  string // "symptom", "clinic", "prescription", "free_chat"
	Phone string
	Run   func(ctx context.Context) (string, error)
}

// Dispatcher executes jobs on background goroutines, bounded by a weighted
// semaphore so a burst of webhooks cannot fan out without limit. Results go
// back to the user through the outbound channel as new, independent
// messages; a job failure yields exactly one apology, never a retry.
type Dispatcher struct {
	sender     MessageSender
	sem        *semaphore.Weighted
	wg         sync.WaitGroup
	jobTimeout time.Duration
}

// NewDispatcher builds a dispatcher allowing up to maxConcurrent in-flight
// jobs.
func NewDispatcher(sender MessageSender, maxConcurrent int64) *Dispatcher {
	if maxConcurrent <= 0 {
		maxConcurrent = 16
	}
	return &Dispatcher{
		sender:     sender,
		sem:        semaphore.NewWeighted(maxConcurrent),
		jobTimeout: 2 * time.Minute,
	}
}

// Dispatch admits the job and returns immediately. A false return means the
// pool is saturated and nothing was scheduled; the caller replies inline
// instead.
func (d *Dispatcher) Dispatch(job Job) bool {
	if !d.sem.TryAcquire(1) {
		log.Printf("⚠️  Dispatcher at capacity, rejecting %s job for %s", job.Kind, job.Phone)
		return false
	}

	jobID := uuid.NewString()
	d.wg.Add(1)

	go func() {
		defer d.wg.Done()
		defer d.sem.Release(1)

		ctx, cancel := context.WithTimeout(context.Background(), d.jobTimeout)
		defer cancel()

		d.run(ctx, jobID, job)
	}()

	log.Printf("🚚 Dispatched %s job %s for %s", job.Kind, jobID, job.Phone)
	return true
}

func (d *Dispatcher) run(ctx context.Context, jobID string, job Job) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ %s job %s panicked: %v", job.Kind, jobID, r)
			d.deliver(job.Phone, apologyMessage)
		}
	}()

	text, err := job.Run(ctx)
	if err != nil {
		log.Printf("❌ %s job %s failed: %v", job.Kind, jobID, err)
		text = apologyMessage
	}

	d.deliver(job.Phone, text)
}

// deliver pushes the result out of band. A delivery failure is logged and
// dropped: there is no channel back to the user at this point.
func (d *Dispatcher) deliver(phone, text string) {
	if err := d.sender.SendWhatsAppMessage(phone, text); err != nil {
		log.Printf("❌ Failed to deliver background result to %s: %v", phone, err)
	}
}

// Wait blocks until every dispatched job has finished. Used on shutdown and
// by tests that need to observe async results.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
