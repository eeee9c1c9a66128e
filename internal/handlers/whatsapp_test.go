package handlers

import (
	"context"
	"io"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shecare-health/shecare-backend/internal/ai"
	"github.com/shecare-health/shecare-backend/internal/places"
	"github.com/shecare-health/shecare-backend/internal/services"
	"github.com/shecare-health/shecare-backend/internal/storage"
)

type cannedBackend struct{ reply string }

func (b cannedBackend) Complete(ctx context.Context, system, prompt string) (string, error) {
	return b.reply, nil
}

func (b cannedBackend) Name() string { return "canned" }

type cannedVision struct{}

func (cannedVision) ExtractText(ctx context.Context, image []byte, contentType string) (string, error) {
	return "", nil
}

type cannedPlaces struct{}

func (cannedPlaces) FindClinics(ctx context.Context, location string, radiusMeters int) (*places.Result, error) {
	return &places.Result{}, nil
}

func newWebhookApp(t *testing.T) *fiber.App {
	t.Helper()

	store := storage.NewMemoryStore()
	failover := ai.NewFailover(cannedBackend{reply: "Hello from SheCare."}, nil)
	sender := services.NoopSender{}

	bot := services.NewBot(
		store,
		services.NewDispatcher(sender, 4),
		services.NewSymptomAdvisor(failover),
		services.NewClinicLocator(nil, cannedPlaces{}),
		services.NewPrescriptionReader(cannedVision{}, failover, sender, store),
		services.NewTipGenerator(failover, store),
		services.NewFreeChatAgent(failover, store),
		"https://app.shecare.example/user-dashboard",
	)

	app := fiber.New()
	app.Post("/webhook/whatsapp", NewWhatsAppHandler(bot).HandleWebhook)
	return app
}

func postForm(t *testing.T, app *fiber.App, form url.Values) (int, string, string) {
	t.Helper()

	req := httptest.NewRequest("POST", "/webhook/whatsapp", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, resp.Header.Get("Content-Type"), string(body)
}

func TestWebhookRepliesWithTwiML(t *testing.T) {
	app := newWebhookApp(t)

	status, contentType, body := postForm(t, app, url.Values{
		"MessageSid": {"SM123"},
		"From":       {"whatsapp:+254700000001"},
		"To":         {"whatsapp:+14155238886"},
		"Body":       {"hi"},
		"NumMedia":   {"0"},
	})

	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, contentType, "application/xml")
	assert.Contains(t, body, "<Response>")
	assert.Contains(t, body, "<Message>")
	assert.Contains(t, body, "Hello from SheCare.")
}

func TestWebhookEmptyFromGetsEmptyAck(t *testing.T) {
	app := newWebhookApp(t)

	status, contentType, body := postForm(t, app, url.Values{
		"MessageSid": {"SM456"},
		"Body":       {"status callback"},
	})

	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, contentType, "application/xml")
	assert.Contains(t, body, "<Response")
	assert.NotContains(t, body, "<Message>")
}

func TestWebhookStripsWhatsAppPrefix(t *testing.T) {
	app := newWebhookApp(t)

	status, _, _ := postForm(t, app, url.Values{
		"From": {"whatsapp:+254700000002"},
		"Body": {"hello"},
	})
	require.Equal(t, fiber.StatusOK, status)

	// Same sender without the prefix maps to the same user: the second turn
	// is a returning-user greeting that carries the menu.
	status, _, body := postForm(t, app, url.Values{
		"From": {"+254700000002"},
		"Body": {"hello"},
	})
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, "Hey there,")
}
