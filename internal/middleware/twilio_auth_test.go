package middleware

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signatureFor(authToken, requestURL string, form url.Values) string {
	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	data := requestURL
	for _, k := range keys {
		data += k + form.Get(k)
	}

	h := hmac.New(sha1.New, []byte(authToken))
	h.Write([]byte(data))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

func newGuardedApp() *fiber.App {
	app := fiber.New()
	app.Post("/webhook/whatsapp", ValidateTwilioSignature(), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func postSigned(t *testing.T, app *fiber.App, form url.Values, signature string) int {
	t.Helper()

	req := httptest.NewRequest("POST", "http://example.com/webhook/whatsapp", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if signature != "" {
		req.Header.Set("X-Twilio-Signature", signature)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	return resp.StatusCode
}

func TestValidateTwilioSignatureAccepts(t *testing.T) {
	t.Setenv("TWILIO_AUTH_TOKEN", "token123")
	app := newGuardedApp()

	form := url.Values{
		"From": {"whatsapp:+254700000001"},
		"Body": {"hi"},
	}
	sig := signatureFor("token123", "http://example.com/webhook/whatsapp", form)

	assert.Equal(t, fiber.StatusOK, postSigned(t, app, form, sig))
}

func TestValidateTwilioSignatureRejectsMissing(t *testing.T) {
	t.Setenv("TWILIO_AUTH_TOKEN", "token123")
	app := newGuardedApp()

	status := postSigned(t, app, url.Values{"Body": {"hi"}}, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestValidateTwilioSignatureRejectsTampered(t *testing.T) {
	t.Setenv("TWILIO_AUTH_TOKEN", "token123")
	app := newGuardedApp()

	form := url.Values{
		"From": {"whatsapp:+254700000001"},
		"Body": {"hi"},
	}
	sig := signatureFor("token123", "http://example.com/webhook/whatsapp", form)

	// Same signature over a changed body must fail.
	form.Set("Body", "transfer all funds")
	assert.Equal(t, fiber.StatusUnauthorized, postSigned(t, app, form, sig))
}

func TestValidateTwilioSignatureMissingToken(t *testing.T) {
	t.Setenv("TWILIO_AUTH_TOKEN", "")
	app := newGuardedApp()

	status := postSigned(t, app, url.Values{"Body": {"hi"}}, "some-signature")
	assert.Equal(t, fiber.StatusInternalServerError, status)
}
