package services

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/shecare-health/shecare-backend/internal/ai"
	"github.com/shecare-health/shecare-backend/internal/places"
)

// stubBackend is a scripted CompletionBackend.
type stubBackend struct {
	name  string
	reply string
	err   error
	calls atomic.Int32
}

func (b *stubBackend) Complete(ctx context.Context, system, prompt string) (string, error) {
	b.calls.Add(1)
	if b.err != nil {
		return "", b.err
	}
	return b.reply, nil
}

func (b *stubBackend) Name() string { return b.name }

func workingFailover(reply string) *ai.Failover {
	return ai.NewFailover(&stubBackend{name: "stub", reply: reply}, nil)
}

func failingFailover(err error) *ai.Failover {
	return ai.NewFailover(&stubBackend{name: "stub", err: err}, nil)
}

type sentMessage struct {
	To   string
	Body string
}

// recordingSender captures outbound messages for assertions. Safe for use
// from dispatcher goroutines.
type recordingSender struct {
	mu   sync.Mutex
	err  error
	sent []sentMessage
}

func (s *recordingSender) SendWhatsAppMessage(to string, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sentMessage{To: to, Body: message})
	return nil
}

func (s *recordingSender) messages() []sentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sentMessage(nil), s.sent...)
}

// stubMedia serves a fixed payload for any media URL.
type stubMedia struct {
	payload []byte
	err     error
}

func (m *stubMedia) DownloadMedia(ctx context.Context, mediaURL string) ([]byte, error) {
	return m.payload, m.err
}

// stubVision returns a fixed extraction result.
type stubVision struct {
	text  string
	err   error
	calls atomic.Int32
}

func (v *stubVision) ExtractText(ctx context.Context, image []byte, contentType string) (string, error) {
	v.calls.Add(1)
	return v.text, v.err
}

// stubPlaces is a scripted clinic search backend.
type stubPlaces struct {
	result *places.Result
	err    error
	calls  atomic.Int32
}

func (p *stubPlaces) FindClinics(ctx context.Context, location string, radiusMeters int) (*places.Result, error) {
	p.calls.Add(1)
	return p.result, p.err
}
