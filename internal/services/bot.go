package services

import (
	"context"
	"fmt"
	"log"

	"github.com/shecare-health/shecare-backend/internal/chat"
	"github.com/shecare-health/shecare-backend/internal/models"
	"github.com/shecare-health/shecare-backend/internal/storage"
)

const (
	menuBlock = "1️⃣ Check your symptoms\n" +
		"2️⃣ Find nearby clinics\n" +
		"3️⃣ Upload prescription\n" +
		"4️⃣ Get daily health tips\n" +
		"5️⃣ Account / Dashboard\n" +
		"0️⃣ Help / Menu"

	menuFooter = "Reply with a number anytime:\n" +
		"1️⃣ Symptoms  2️⃣ Clinics  3️⃣ Prescription  4️⃣ Tips  5️⃣ Dashboard\n" +
		"0️⃣ Help / Menu"

	helpMessage = "Here’s how you can use SheCare:\n" +
		"1️⃣ Check symptoms\n" +
		"2️⃣ Find clinics\n" +
		"3️⃣ Upload prescription\n" +
		"4️⃣ Daily tips\n" +
		"5️⃣ Account / Dashboard\n" +
		"0️⃣ Help / Menu"

	checkingAck     = "✅ Got it — I’m checking that now. I’ll reply shortly."
	clinicAck       = "✅ Got it — I’m finding clinics near you. I’ll reply shortly."
	prescriptionAck = "✅ Got it. I’m reading your prescription now — I’ll reply shortly."
	backToMenu      = "🔙 Back to menu — reply with a number."
	busyReply       = "⏳ I’m handling a lot of requests right now — please try again in a moment."
	didNotGetThat   = "⚠️ Sorry, I didn’t get that. Please try again."
	genericApology  = "⚠️ Sorry, something went wrong. Please try again."
)

// Inbound is one parsed webhook message with the transport prefix already
// stripped from the sender.
type Inbound struct {
	From      string
	Body      string
	MediaURL  string
	MediaType string
}

// Bot is the session state machine. Given (user, current state, inbound
// message) it advances the state and either answers inline or hands the slow
// capability call to the dispatcher, which delivers the result out of band.
type Bot struct {
	store         storage.Store
	dispatcher    *Dispatcher
	symptoms      *SymptomAdvisor
	clinics       *ClinicLocator
	prescriptions *PrescriptionReader
	tips          *TipGenerator
	freeChat      *FreeChatAgent
	dashboardURL  string
}

// NewBot wires the state machine to its collaborators.
func NewBot(
	store storage.Store,
	dispatcher *Dispatcher,
	symptoms *SymptomAdvisor,
	clinics *ClinicLocator,
	prescriptions *PrescriptionReader,
	tips *TipGenerator,
	freeChat *FreeChatAgent,
	dashboardURL string,
) *Bot {
	return &Bot{
		store:         store,
		dispatcher:    dispatcher,
		symptoms:      symptoms,
		clinics:       clinics,
		prescriptions: prescriptions,
		tips:          tips,
		freeChat:      freeChat,
		dashboardURL:  dashboardURL,
	}
}

// Handle processes one inbound message and returns the inline reply for the
// webhook response body. It never returns an empty reply: every provider
// error is converted to an apology at this boundary so the user always hears
// back.
func (b *Bot) Handle(ctx context.Context, msg Inbound) string {
	reply, err := b.handle(ctx, msg)
	if err != nil {
		log.Printf("❌ Error processing message from %s: %v", msg.From, err)
		return genericApology
	}
	return reply
}

func (b *Bot) handle(ctx context.Context, msg Inbound) (string, error) {
	normalized := chat.Normalize(msg.Body)

	user, isNew, err := b.store.GetOrCreateUser(msg.From)
	if err != nil {
		return "", fmt.Errorf("get or create user: %w", err)
	}
	if isNew {
		log.Printf("👤 New user created: %s", msg.From)
	}

	session, created, err := b.store.GetOrCreateSession(user.ID)
	if err != nil {
		return "", fmt.Errorf("get or create session: %w", err)
	}
	if created {
		log.Printf("💬 New chat session started for %s", msg.From)
	}

	// New users get the welcome and menu regardless of what they sent.
	if isNew {
		greeting := b.symptoms.Greet(ctx)
		reply := greeting + "\n\n" +
			"I can help you with:\n" + menuBlock + "\n\n" +
			"👉 Reply with a number to continue."
		b.finishTurn(user.ID, msg.Body, reply)
		return reply, nil
	}

	// Media wins over text in any state: an attached image is always treated
	// as a prescription upload.
	if msg.MediaURL != "" {
		return b.dispatchPrescription(user, msg), nil
	}

	b.logChat(user.ID, models.SenderUser, msg.Body)

	switch session.State {
	case models.StateSymptomInput:
		return b.handleSymptomInput(user, session, msg, normalized)
	case models.StateClinicFinder:
		return b.handleClinicFinder(user, session, msg, normalized)
	default:
		return b.handleMainMenu(ctx, user, session, msg, normalized)
	}
}

func (b *Bot) handleMainMenu(ctx context.Context, user *models.User, session *models.ChatSession, msg Inbound, normalized string) (string, error) {
	var reply string

	switch chat.Classify(msg.Body) {
	case chat.IntentGreeting:
		name := user.Name
		if name == "" {
			name = "there"
		}
		reply = fmt.Sprintf("Hey %s,\n\n", name) +
			"Welcome to SheCare — your safe space for women’s health support.\n\n" +
			"Whether you’re feeling unwell, need to find a nearby clinic, want to upload a prescription, " +
			"or just want a little health inspiration — I’ve got you.\n" +
			"Here’s how you can begin:\n\n" + menuBlock + "\n\n" +
			"Reply with the number of what you’d like to do!"

	case chat.IntentSymptoms:
		if err := b.store.SetSessionState(session.ID, models.StateSymptomInput); err != nil {
			return "", fmt.Errorf("advance to symptom input: %w", err)
		}
		reply = "🩺 Please describe your symptom (e.g., 'I have a headache and fever')."

	case chat.IntentClinics:
		if err := b.store.SetSessionState(session.ID, models.StateClinicFinder); err != nil {
			return "", fmt.Errorf("advance to clinic finder: %w", err)
		}
		reply = "📍 Please share your location or town name to find clinics near you."

	case chat.IntentPrescription:
		reply = "📸 Please upload a clear photo of your prescription."

	case chat.IntentTips:
		reply = "💡 Tip: " + b.tips.Generate(ctx, user.ID)

	case chat.IntentDashboard:
		reply = "🔐 To manage your account details (name, email, phone, password), open your dashboard here:\n\n" +
			b.dashboardURL + "\n\n" +
			"If you want to come back here afterwards, just say *Hi*."

	case chat.IntentHelp:
		reply = helpMessage

	default:
		// Free text from the menu goes to the chat agent asynchronously.
		return b.dispatchFreeChat(user, msg), nil
	}

	if reply == "" {
		reply = didNotGetThat
	}
	b.finishTurn(user.ID, msg.Body, reply)
	return reply, nil
}

func (b *Bot) handleSymptomInput(user *models.User, session *models.ChatSession, msg Inbound, normalized string) (string, error) {
	if chat.IsBack(normalized) {
		if err := b.store.SetSessionState(session.ID, models.StateMainMenu); err != nil {
			return "", fmt.Errorf("return to main menu: %w", err)
		}
		b.finishTurn(user.ID, msg.Body, backToMenu)
		return backToMenu, nil
	}

	// Optimistic transition: the state returns to the menu as soon as the
	// job is dispatched, not when it completes.
	if err := b.store.SetSessionState(session.ID, models.StateMainMenu); err != nil {
		return "", fmt.Errorf("return to main menu: %w", err)
	}

	symptom := chat.Normalize(msg.Body)
	accepted := b.dispatcher.Dispatch(Job{
		Kind:  "symptom",
		Phone: user.Phone,
		Run: func(ctx context.Context) (string, error) {
			reply, err := b.symptoms.Check(ctx, symptom)
			if err != nil {
				return "", err
			}
			reply = reply + "\n\n" + menuFooter
			b.logChat(user.ID, models.SenderBot, reply)
			return reply, nil
		},
	})
	if !accepted {
		b.finishTurn(user.ID, msg.Body, busyReply)
		return busyReply, nil
	}

	b.finishTurn(user.ID, msg.Body, checkingAck)
	return checkingAck, nil
}

func (b *Bot) handleClinicFinder(user *models.User, session *models.ChatSession, msg Inbound, normalized string) (string, error) {
	if chat.IsBack(normalized) {
		if err := b.store.SetSessionState(session.ID, models.StateMainMenu); err != nil {
			return "", fmt.Errorf("return to main menu: %w", err)
		}
		b.finishTurn(user.ID, msg.Body, backToMenu)
		return backToMenu, nil
	}

	if err := b.store.SetSessionState(session.ID, models.StateMainMenu); err != nil {
		return "", fmt.Errorf("return to main menu: %w", err)
	}

	location := msg.Body
	accepted := b.dispatcher.Dispatch(Job{
		Kind:  "clinic",
		Phone: user.Phone,
		Run: func(ctx context.Context) (string, error) {
			reply := b.clinics.Find(ctx, location) +
				"\n\nYou can ask a follow-up (e.g., “Which do you recommend?”), or reply with a number:\n" +
				"1️⃣ Symptoms  2️⃣ Clinics  3️⃣ Prescription  4️⃣ Tips  5️⃣ Dashboard\n" +
				"0️⃣ Help / Menu"
			b.logChat(user.ID, models.SenderBot, reply)
			return reply, nil
		},
	})
	if !accepted {
		b.finishTurn(user.ID, msg.Body, busyReply)
		return busyReply, nil
	}

	b.finishTurn(user.ID, msg.Body, clinicAck)
	return clinicAck, nil
}

func (b *Bot) dispatchPrescription(user *models.User, msg Inbound) string {
	log.Printf("📸 Prescription upload detected from %s (type %s)", user.Phone, msg.MediaType)

	mediaURL, mediaType := msg.MediaURL, msg.MediaType
	accepted := b.dispatcher.Dispatch(Job{
		Kind:  "prescription",
		Phone: user.Phone,
		Run: func(ctx context.Context) (string, error) {
			reply, err := b.prescriptions.Read(ctx, user.ID, mediaURL, mediaType)
			if err != nil {
				return "", err
			}
			b.logChat(user.ID, models.SenderBot, reply)
			return reply, nil
		},
	})
	if !accepted {
		b.finishTurn(user.ID, "[media upload]", busyReply)
		return busyReply
	}

	b.finishTurn(user.ID, "[media upload]", prescriptionAck)
	return prescriptionAck
}

func (b *Bot) dispatchFreeChat(user *models.User, msg Inbound) string {
	body := msg.Body
	accepted := b.dispatcher.Dispatch(Job{
		Kind:  "free_chat",
		Phone: user.Phone,
		Run: func(ctx context.Context) (string, error) {
			reply, err := b.freeChat.Respond(ctx, user, body)
			if err != nil {
				return "", err
			}
			reply = reply + "\n\n" + menuFooter
			b.logChat(user.ID, models.SenderBot, reply)
			return reply, nil
		},
	})
	if !accepted {
		b.finishTurn(user.ID, msg.Body, busyReply)
		return busyReply
	}

	b.finishTurn(user.ID, msg.Body, checkingAck)
	return checkingAck
}

// finishTurn persists the linked message/response pair and mirrors the reply
// into chat memory. Persistence failures are logged, never surfaced — the
// user keeps their reply either way.
func (b *Bot) finishTurn(userID uint, inbound, reply string) {
	if err := b.store.SaveTurn(userID, chat.Normalize(inbound), reply); err != nil {
		log.Printf("❌ Failed to save turn for user %d: %v", userID, err)
	}
	b.logChat(userID, models.SenderBot, reply)
}

func (b *Bot) logChat(userID uint, sender, body string) {
	if err := b.store.AppendChatMemory(userID, sender, body); err != nil {
		log.Printf("⚠️  log chat failed for user %d: %v", userID, err)
	}
}
