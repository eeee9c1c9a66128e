package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// MessageSender delivers one outbound WhatsApp message outside the webhook
// request/response cycle. Implementations log transport failures and return
// the error; background jobs treat a failed send as terminal (no retry, no
// crash).
type MessageSender interface {
	SendWhatsAppMessage(to string, message string) error
}

// MediaFetcher downloads an inbound media attachment. Twilio media URLs
// require basic auth with the account credentials.
type MediaFetcher interface {
	DownloadMedia(ctx context.Context, mediaURL string) ([]byte, error)
}

// TwilioService is the outbound channel: REST sends for async follow-ups, as
// opposed to the inline TwiML reply the webhook handler returns.
type TwilioService struct {
	client     *twilio.RestClient
	from       string // Format: "whatsapp:+14155238886"
	accountSid string
	authToken  string
	httpClient *http.Client
}

// NewTwilioService creates a new Twilio service instance
func NewTwilioService() (*TwilioService, error) {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")
	from := os.Getenv("TWILIO_WHATSAPP_FROM")

	if accountSid == "" || authToken == "" || from == "" {
		return nil, fmt.Errorf("missing Twilio credentials in environment variables")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSid,
		Password: authToken,
	})

	return &TwilioService{
		client:     client,
		from:       from,
		accountSid: accountSid,
		authToken:  authToken,
		httpClient: &http.Client{Timeout: 25 * time.Second},
	}, nil
}

// SendWhatsAppMessage sends a WhatsApp message via Twilio
func (t *TwilioService) SendWhatsAppMessage(to string, message string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(t.from)
	params.SetTo(fmt.Sprintf("whatsapp:%s", to))
	params.SetBody(message)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		log.Printf("❌ Failed to send WhatsApp message: %v", err)
		return err
	}

	log.Printf("✅ WhatsApp message sent! SID: %s", *resp.Sid)
	return nil
}

// DownloadMedia fetches an attachment from the Twilio media URL using the
// account credentials.
func (t *TwilioService) DownloadMedia(ctx context.Context, mediaURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build media request failed: %w", err)
	}
	req.SetBasicAuth(t.accountSid, t.authToken)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("media download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("media download status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// NoopSender stands in when Twilio credentials are absent, so local runs
// still work end to end with the outbound text going to the log.
type NoopSender struct{}

func (NoopSender) SendWhatsAppMessage(to string, message string) error {
	log.Printf("📤 Outbound to %s (not sent - Twilio not configured): %s", to, message)
	return nil
}

func (NoopSender) DownloadMedia(ctx context.Context, mediaURL string) ([]byte, error) {
	return nil, fmt.Errorf("twilio not configured; cannot download media")
}
