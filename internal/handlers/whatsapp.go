package handlers

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/twilio/twilio-go/twiml"

	"github.com/shecare-health/shecare-backend/internal/services"
)

// TwilioWebhookPayload represents an incoming WhatsApp message from Twilio
type TwilioWebhookPayload struct {
	MessageSid        string `form:"MessageSid"`
	AccountSid        string `form:"AccountSid"`
	From              string `form:"From"` // WhatsApp number (whatsapp:+254700000001)
	To                string `form:"To"`   // Your Twilio number
	Body              string `form:"Body"` // Message text
	NumMedia          int    `form:"NumMedia"`
	MediaUrl0         string `form:"MediaUrl0"`
	MediaContentType0 string `form:"MediaContentType0"`
}

// WhatsAppHandler handles WhatsApp webhook requests
type WhatsAppHandler struct {
	bot *services.Bot
}

// NewWhatsAppHandler creates a new WhatsApp handler
func NewWhatsAppHandler(bot *services.Bot) *WhatsAppHandler {
	return &WhatsAppHandler{bot: bot}
}

// HandleWebhook processes one incoming WhatsApp message and answers with a
// TwiML document carrying the inline reply. Slow work has already been
// handed to the dispatcher by the time this returns; its results arrive via
// the outbound channel as separate messages.
func (h *WhatsAppHandler) HandleWebhook(c *fiber.Ctx) error {
	var payload TwilioWebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		log.Printf("Error parsing webhook: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid webhook payload",
		})
	}

	// Fiber's parsed form values alias the reusable request buffer; clone
	// anything that outlives this handler (store keys, dispatcher work).
	from := strings.Clone(strings.TrimSpace(strings.TrimPrefix(payload.From, "whatsapp:")))
	if from == "" {
		// Status callbacks and other non-message events get an empty TwiML ack.
		return sendTwiML(c, "")
	}

	log.Printf("📱 WhatsApp message from %s: %s", from, payload.Body)

	msg := services.Inbound{
		From: from,
		Body: strings.Clone(strings.TrimSpace(payload.Body)),
	}
	if payload.NumMedia > 0 {
		msg.MediaURL = strings.Clone(payload.MediaUrl0)
		msg.MediaType = strings.Clone(payload.MediaContentType0)
	}

	reply := h.bot.Handle(c.UserContext(), msg)
	return sendTwiML(c, reply)
}

// sendTwiML writes the provider reply markup: zero or one message, XML, 200.
func sendTwiML(c *fiber.Ctx, reply string) error {
	var verbs []twiml.Element
	if reply != "" {
		verbs = append(verbs, &twiml.MessagingMessage{Body: reply})
	}

	doc, err := twiml.Messages(verbs)
	if err != nil {
		log.Printf("❌ Failed to build TwiML response: %v", err)
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	c.Set(fiber.HeaderContentType, "application/xml")
	return c.SendString(doc)
}
