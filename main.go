package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"warlords/internal/events"
	"warlords/internal/handlers"
	"warlords/internal/middleware"
	"warlords/internal/models"
	"warlords/internal/password"
	"warlords/internal/repositories"
	"warlords/internal/services"
	"warlords/internal/session"

	"github.com/spf13/viper"
	amqp "github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func main() {
	// --- Configuration ---
	// Set up Viper to read configuration from environment variables
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("SESSION_SECRET", "dev-only-session-secret")
	viper.SetDefault("DB_DRIVER", "sqlite")
	viper.SetDefault("DATABASE_URL", "warlords.db")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.SetDefault("SEED_DEMO_DATA", true)
	viper.AutomaticEnv() // Load environment variables

	appPort := viper.GetString("APP_PORT")
	production := viper.GetString("APP_ENV") == "production"

	// --- Initialize Database (GORM) ---
	db, err := openDatabase(viper.GetString("DB_DRIVER"), viper.GetString("DATABASE_URL"))
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Character{}); err != nil {
		log.Fatalf("Failed to auto-migrate database: %v", err)
	}

	// --- Initialize RabbitMQ Client (optional) ---
	// Account events are best effort; the portal runs fine without a broker.
	var eventsClient *events.Client
	if url := viper.GetString("RABBITMQ_URL"); url != "" {
		eventsClient, err = events.NewClient(events.Config{URL: url})
		if err != nil {
			log.Printf("Warning: account events disabled: %v", err)
			eventsClient = nil
		} else {
			defer eventsClient.Close()
			// In development the portal tails its own audit queue so events
			// show up in the server log without a broker UI.
			if !production {
				if err := eventsClient.Consume(func(msg amqp.Delivery) error {
					log.Printf("Account event: %s", msg.Body)
					return nil
				}); err != nil {
					log.Printf("Warning: account event consumer not started: %v", err)
				}
			}
		}
	}

	// --- Initialize Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	charRepo := repositories.NewGORMCharacterRepository(db)

	if viper.GetBool("SEED_DEMO_DATA") && !production {
		seedDemoData(userRepo, charRepo)
	}

	// --- Initialize Session Codec and Services ---
	codec := session.NewCodec(viper.GetString("SESSION_SECRET"), production)
	authService := services.NewAuthService(userRepo, codec, eventsClient)
	accountService := services.NewAccountService(userRepo, charRepo, eventsClient)

	// --- Initialize Handlers ---
	authHandler := handlers.NewAuthHandler(authService, codec)
	accountHandler := handlers.NewAccountHandler(accountService)
	pageHandler := handlers.NewPageHandler(authService)

	// --- Initialize Fiber App ---
	app := fiber.New()

	// --- Middleware ---
	app.Use(logger.New())            // Request logger
	app.Use(middleware.RouteGuard()) // Cookie-presence page guard

	// --- API Routes ---
	apiV1 := app.Group("/api/v1")

	// Authentication routes (public)
	authHandler.RegisterRoutes(apiV1)

	// Account routes (require a valid session)
	protectedRoutes := apiV1.Group("", middleware.SessionRequired(authService))
	accountHandler.RegisterRoutes(protectedRoutes)

	// --- Page Routes ---
	pageHandler.RegisterRoutes(app)

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", appPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}

// openDatabase opens the configured GORM backend. SQLite is the default for
// development; Postgres backs real deployments.
func openDatabase(driver, dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{TranslateError: true}
	switch driver {
	case "postgres":
		return gorm.Open(postgres.Open(dsn), cfg)
	default:
		return gorm.Open(sqlite.Open(dsn), cfg)
	}
}

// seedDemoData populates the store with the demo accounts and characters
// used in development. Existing rows are left alone.
func seedDemoData(userRepo repositories.UserRepository, charRepo repositories.CharacterRepository) {
	type seedUser struct {
		id, email, username, password string
	}
	seedUsers := []seedUser{
		{"usr_1", "admin@test.com", "admin", "admin123"},
		{"usr_2", "player@test.com", "player", "player123"},
		{"usr_3", "demo@test.com", "demo", "demo1234"},
	}

	for _, su := range seedUsers {
		if _, err := userRepo.GetByEmail(su.email); err == nil {
			continue // already seeded
		}
		digest, err := password.Hash(su.password, password.SecondaryCost)
		if err != nil {
			log.Printf("Error hashing seed password for %s: %v", su.username, err)
			continue
		}
		user := &models.User{ID: su.id, Email: su.email, Username: su.username, Password: digest}
		if err := userRepo.Create(user); err != nil {
			log.Printf("Error seeding user %s: %v", su.username, err)
		} else {
			log.Printf("Seeded user: %s (%s)", su.username, su.email)
		}
	}

	seedCharacters := []models.Character{
		{ID: "chr_1", UserID: "usr_1", Name: "ShadowBlade", Faction: models.FactionTangClan, Level: 85, JPoint: 12500, Gold: 340000},
		{ID: "chr_2", UserID: "usr_1", Name: "IronMonk", Faction: models.FactionShaolin, Level: 72, JPoint: 8200, Gold: 180000},
		{ID: "chr_3", UserID: "usr_2", Name: "WindWalker", Faction: models.FactionWudang, Level: 60, JPoint: 4500, Gold: 95000},
	}

	for i := range seedCharacters {
		if _, err := charRepo.GetByID(seedCharacters[i].ID); err == nil {
			continue // already seeded
		}
		if err := charRepo.Create(&seedCharacters[i]); err != nil {
			log.Printf("Error seeding character %s: %v", seedCharacters[i].Name, err)
		} else {
			log.Printf("Seeded character: %s (%s)", seedCharacters[i].Name, seedCharacters[i].Faction)
		}
	}
}
