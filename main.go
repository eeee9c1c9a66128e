package main

import (
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/shecare-health/shecare-backend/database"
	"github.com/shecare-health/shecare-backend/internal/ai"
	"github.com/shecare-health/shecare-backend/internal/handlers"
	"github.com/shecare-health/shecare-backend/internal/jobs"
	"github.com/shecare-health/shecare-backend/internal/models"
	"github.com/shecare-health/shecare-backend/internal/places"
	"github.com/shecare-health/shecare-backend/internal/routes"
	"github.com/shecare-health/shecare-backend/internal/services"
	"github.com/shecare-health/shecare-backend/internal/storage"
)

func main() {
	// Load .env file for local development
	if os.Getenv("INSTANCE_CONNECTION_NAME") == "" {
		err := godotenv.Load(".env")
		if err != nil {
			err = godotenv.Load("environments/.env.development")
			if err != nil {
				log.Println("⚠️  No .env file found - checking environment variables")
			}
		}
	}

	// Initialize storage
	var store storage.Store

	if os.Getenv("USE_MEMORY_STORE") == "true" {
		log.Println("⚠️  Using in-memory storage (not for production!)")
		store = storage.NewMemoryStore()
	} else {
		log.Println("📦 Connecting to PostgreSQL database...")
		database.Connect()

		log.Println("🔄 Running database migrations...")
		err := database.DB.AutoMigrate(
			&models.User{},
			&models.ChatSession{},
			&models.UserMessage{},
			&models.ResponseMessage{},
			&models.ChatMemory{},
			&models.Prescription{},
			&models.HealthTip{},
		)
		if err != nil {
			log.Fatal("Failed to migrate database:", err)
		}
		log.Println("✅ Database migrations completed!")

		store = storage.NewDatabaseStore(database.DB)
		log.Println("✅ Using PostgreSQL database storage")
	}

	// Outbound channel. Without Twilio credentials the bot still runs, with
	// async results going to the log instead of the wire.
	var sender services.MessageSender
	var media services.MediaFetcher

	twilioService, err := services.NewTwilioService()
	if err != nil {
		log.Printf("⚠️  Twilio service not initialized: %v - WhatsApp sends will be logged only", err)
		sender = services.NoopSender{}
		media = services.NoopSender{}
	} else {
		log.Println("✅ Twilio service initialized")
		sender = twilioService
		media = twilioService
	}

	// AI backends: OpenAI primary, Gemini secondary on quota errors.
	failover := ai.NewFailover(ai.NewOpenAIBackend(), ai.NewGeminiBackend())
	vision := ai.NewOpenAIVision()

	// Capability providers
	symptoms := services.NewSymptomAdvisor(failover)
	var clinicPrimary places.Backend
	if google := places.NewGoogleBackend(); google.Configured() {
		clinicPrimary = google
	} else {
		log.Println("⚠️  GOOGLE_MAPS_API_KEY not set - clinic search will use OpenStreetMap only")
	}
	clinics := services.NewClinicLocator(clinicPrimary, places.NewOSMBackend())
	prescriptions := services.NewPrescriptionReader(vision, failover, media, store)
	tips := services.NewTipGenerator(failover, store)
	freeChat := services.NewFreeChatAgent(failover, store)

	dispatcher := services.NewDispatcher(sender, 16)
	bot := services.NewBot(store, dispatcher, symptoms, clinics, prescriptions, tips, freeChat, dashboardURL())

	broadcaster := services.NewTipBroadcaster(store, tips, sender)
	tipJob := jobs.NewHealthTipJob(broadcaster)
	tipJob.Start()

	log.Println("✅ All services initialized and scheduled jobs started")

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: "SheCare Backend v1.0.0",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	routes.SetupRoutes(app, handlers.NewWhatsAppHandler(bot), handlers.NewTasksHandler(broadcaster))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("\n🛑 Gracefully shutting down...")
		log.Println("⏹️  Stopping scheduled jobs...")
		tipJob.Stop()
		log.Println("⏹️  Draining background jobs...")
		dispatcher.Wait()
		log.Println("⏹️  Shutting down server...")
		_ = app.Shutdown()
	}()

	log.Println("========================================")
	log.Printf("🚀 SheCare Backend starting on port %s", port)
	log.Printf("📊 Storage: %s", storageType())
	log.Printf("📱 WhatsApp: %s", whatsAppStatus(twilioService))
	log.Println("========================================")

	log.Fatal(app.Listen(":" + port))
}

// dashboardURL resolves the dashboard link surfaced in the menu "5" reply.
func dashboardURL() string {
	if url := os.Getenv("FRONTEND_DASHBOARD_URL"); url != "" {
		return url
	}
	base := os.Getenv("FRONTEND_BASE_URL")
	if base == "" {
		base = "http://localhost:5173"
	}
	return strings.TrimRight(base, "/") + "/user-dashboard"
}

func storageType() string {
	if os.Getenv("USE_MEMORY_STORE") == "true" {
		return "In-Memory (Testing)"
	}
	return "PostgreSQL Database"
}

func whatsAppStatus(t *services.TwilioService) string {
	if t == nil {
		return "Not configured"
	}
	return "Configured"
}
