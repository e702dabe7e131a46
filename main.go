package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"prospects/internal/geocoding"
	"prospects/internal/handlers"
	"prospects/internal/middleware"
	"prospects/internal/models"
	"prospects/internal/repositories"
	"prospects/internal/services"
	"prospects/pkg/rabbitmq"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("%v", err)
	}
}

// run returns instead of exiting so deferred cleanup always happens.
func run() error {
	cfg, err := loadConfig(viper.New())
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// --- Events (optional) ---
	var publisher services.EventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			return fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		defer mqClient.Close()
		publisher = mqClient

		if err := mqClient.Consume(rabbitmq.LogEvent); err != nil {
			log.Printf("Failed to start RabbitMQ consumer: %v", err)
		}
	} else {
		log.Println("RABBITMQ_URL is not set. Domain events are disabled.")
	}

	app, err := newApp(cfg, publisher)
	if err != nil {
		return fmt.Errorf("failed to create app: %w", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	log.Printf("Starting server on port %s", cfg.AppPort)
	return serve(app, cfg.AppPort, quit)
}

// serve listens on addr until quit fires or the listener fails.
func serve(app *fiber.App, addr string, quit <-chan os.Signal) error {
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- app.Listen(addr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-quit:
	}

	log.Println("Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	<-serverErr
	log.Println("Server gracefully stopped")
	return nil
}

// newApp builds every dependency once and wires the HTTP routes.
func newApp(cfg Config, publisher services.EventPublisher) (*fiber.App, error) {
	userRepo, prospectRepo, err := openRepositories(cfg)
	if err != nil {
		return nil, err
	}

	hasher, err := services.NewPasswordHasher(cfg.PasswordAlgorithm)
	if err != nil {
		return nil, err
	}
	issuer, err := newIssuer(cfg)
	if err != nil {
		return nil, err
	}
	geocoder := geocoding.NewClient(geocoding.Config{
		BaseURL: cfg.GeocodingBaseURL,
		APIKey:  cfg.GeocodingAPIKey,
		Timeout: cfg.GeocodingTimeout,
	})

	// --- Services ---
	authService := services.NewAuthService(userRepo, hasher, issuer, publisher)
	prospectService := services.NewProspectService(prospectRepo, userRepo, publisher)
	geocodeService := services.NewGeocodeService(geocoder)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	prospectHandler := handlers.NewProspectHandler(prospectService)
	geocodeHandler := handlers.NewGeocodeHandler(geocodeService)

	app := fiber.New(fiber.Config{
		ErrorHandler: handleFiberError,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.CORSOrigins}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
			"events": publisher != nil,
		})
	})

	requireAuth := middleware.AuthRequired(issuer)
	limit := middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerWindow: cfg.RateLimitPerMinute,
		Window:            time.Minute,
	})

	authHandler.RegisterRoutes(app, requireAuth, limit)
	prospectHandler.RegisterRoutes(app, requireAuth)
	geocodeHandler.RegisterRoutes(app)

	return app, nil
}

// handleFiberError renders routing errors and recovered panics in the same
// shape as workflow errors.
func handleFiberError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	kind := services.KindUnknown
	message := "An unexpected error occurred"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
		if code == fiber.StatusNotFound {
			kind = services.KindNotFound
		}
	} else {
		log.Printf("%s %s failed: %v", c.Method(), c.Path(), err)
	}

	return c.Status(code).JSON(handlers.ErrorResponse{
		Code:    code,
		Kind:    kind,
		Message: message,
	})
}

func newIssuer(cfg Config) (*services.JWTIssuer, error) {
	opts := services.IssuerOptions{
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      cfg.TokenTTL,
	}
	if cfg.JWTSigningKeyFile != "" {
		pemBytes, err := os.ReadFile(cfg.JWTSigningKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read signing key: %w", err)
		}
		return services.NewRSAIssuer(pemBytes, opts)
	}
	return services.NewHMACIssuer(cfg.JWTSecret, opts)
}

func openRepositories(cfg Config) (repositories.UserRepository, repositories.ProspectRepository, error) {
	if cfg.DatabaseDriver == "memory" {
		users := repositories.NewMemoryUserRepository()
		return users, repositories.NewMemoryProspectRepository(users), nil
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return nil, nil, err
	}
	return repositories.NewGORMUserRepository(db), repositories.NewGORMProspectRepository(db), nil
}

func openDatabase(cfg Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DatabaseDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DatabaseDSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DatabaseDSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(log.New(os.Stdout, "\r\n", log.LstdFlags), gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Profile{}, &models.UsernameReservation{}, &models.Prospect{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return db, nil
}
