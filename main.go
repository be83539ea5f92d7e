// Package main provides the main entry point for the Ame no Uzume content generation service
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amirphl/Ame-no-Uzume/app/handlers"
	"github.com/amirphl/Ame-no-Uzume/app/middleware"
	"github.com/amirphl/Ame-no-Uzume/app/router"
	"github.com/amirphl/Ame-no-Uzume/app/scheduler"
	"github.com/amirphl/Ame-no-Uzume/app/services"
	businessflow "github.com/amirphl/Ame-no-Uzume/business_flow"
	"github.com/amirphl/Ame-no-Uzume/config"
	"github.com/amirphl/Ame-no-Uzume/repository"
	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Application represents the main application structure
type Application struct {
	router    *router.FiberRouter
	config    *config.ProductionConfig
	server    *fiber.App
	stopFuncs []func()
}

func main() {
	log.Println("Starting Ame no Uzume application...")

	// Load production configuration
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	closeLogs := setupLogging(cfg.Logging)
	defer closeLogs()

	// Initialize application
	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Setup routes
	app.router.SetupRoutes()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server starting on %s", address)

		if err := app.server.Listen(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Println("Shutting down gracefully...")

	// Stop background workers
	for _, fn := range app.stopFuncs {
		fn()
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// setupLogging points the standard logger at stdout, a rotating file,
// or both, and returns a function that flushes the file writer.
func setupLogging(cfg config.LoggingConfig) func() {
	if cfg.Output == "stdout" || cfg.FilePath == "" {
		return func() {}
	}

	fileWriter := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}

	switch cfg.Output {
	case "file":
		log.SetOutput(fileWriter)
	default:
		log.SetOutput(io.MultiWriter(os.Stdout, fileWriter))
	}

	return func() {
		if err := fileWriter.Close(); err != nil {
			log.Printf("Error closing log file: %v", err)
		}
	}
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB for connection pooling configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pooling
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test the connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// initializeGenerationCache builds either a Redis-backed or an in-memory
// generation cache depending on the configured provider.
func initializeGenerationCache(cfg config.CacheConfig) (services.GenerationCache, error) {
	if cfg.Provider != "redis" {
		log.Println("Using in-memory generation cache")
		return services.NewMemoryGenerationCache(cfg.SweepInterval, nil), nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	// Override DB if provided in config
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established to %s (db=%d)", cfg.RedisURL, cfg.RedisDB)
	return services.NewRedisGenerationCache(rc, cfg.RedisPrefix), nil
}

// initializeGenerators registers one text generation client per backend
// that has an API key configured.
func initializeGenerators(cfg config.AIBackendsConfig) (*services.GeneratorRegistry, error) {
	var backends []services.TextGenerator

	if cfg.OpenAI.APIKey != "" {
		backends = append(backends, services.NewOpenAIClient(cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.Timeout))
		log.Printf("Registered OpenAI backend (model=%s)", cfg.OpenAI.Model)
	}
	if cfg.Anthropic.APIKey != "" {
		backends = append(backends, services.NewAnthropicClient(cfg.Anthropic.BaseURL, cfg.Anthropic.APIKey, cfg.Anthropic.Model, cfg.Anthropic.Timeout))
		log.Printf("Registered Anthropic backend (model=%s)", cfg.Anthropic.Model)
	}

	if len(backends) == 0 {
		return nil, fmt.Errorf("no generation backend configured")
	}

	return services.NewGeneratorRegistry(backends...), nil
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	var stopFuncs []func()

	// Initialize database
	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	generationCache, err := initializeGenerationCache(cfg.Cache)
	if err != nil {
		return nil, err
	}
	stopFuncs = append(stopFuncs, func() {
		if err := generationCache.Close(); err != nil {
			log.Printf("Error closing generation cache: %v", err)
		}
	})

	// Initialize repositories
	artistRepo := repository.NewArtistRepository(db)
	sessionRepo := repository.NewArtistSessionRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	personaRepo := repository.NewPersonaRepository(db)
	responseRepo := repository.NewQuestionnaireResponseRepository(db)
	uploadRepo := repository.NewUploadedFileRepository(db)
	templateRepo := repository.NewContentTemplateRepository(db)
	contentRepo := repository.NewGeneratedContentRepository(db)

	// Initialize token service
	tokenService, err := services.NewTokenService(
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.UseRSAKeys,
		cfg.JWT.PrivateKey,
		cfg.JWT.PublicKey,
		cfg.JWT.SecretKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	log.Printf("Token service initialized with issuer: %s, audience: %s", cfg.JWT.Issuer, cfg.JWT.Audience)

	// Initialize generation services
	generators, err := initializeGenerators(cfg.AIBackends)
	if err != nil {
		return nil, err
	}
	backendLimiter := services.NewSlidingWindowLimiter(cfg.AIBackends.RateLimitWindow, cfg.AIBackends.RateLimitQuota, nil, nil)
	fileParser := services.NewQuestionnaireFileParser()

	// Initialize flows
	signupFlow := businessflow.NewSignupFlow(
		artistRepo,
		sessionRepo,
		auditRepo,
		tokenService,
		db,
	)

	loginFlow := businessflow.NewLoginFlow(
		artistRepo,
		sessionRepo,
		auditRepo,
		tokenService,
		db,
	)

	profileFlow := businessflow.NewProfileFlow(artistRepo, auditRepo)

	personaFlow := businessflow.NewPersonaFlow(
		personaRepo,
		responseRepo,
		artistRepo,
		auditRepo,
		db,
	)

	uploadFlow := businessflow.NewUploadFlow(
		fileParser,
		personaFlow,
		uploadRepo,
		auditRepo,
		cfg.Upload.MaxSizeBytes,
	)

	templateFlow := businessflow.NewTemplateFlow(
		templateRepo,
		personaRepo,
		auditRepo,
	)

	generationFlow := businessflow.NewGenerationFlow(
		personaRepo,
		templateRepo,
		contentRepo,
		auditRepo,
		generators,
		generationCache,
		backendLimiter,
	)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(signupFlow, loginFlow)
	profileHandler := handlers.NewProfileHandler(profileFlow)
	personaHandler := handlers.NewPersonaHandler(personaFlow)
	uploadHandler := handlers.NewUploadHandler(uploadFlow)
	templateHandler := handlers.NewTemplateHandler(templateFlow)
	generationHandler := handlers.NewGenerationHandler(generationFlow)

	// Initialize auth middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	// Initialize router
	appRouter := router.NewFiberRouter(
		authMiddleware,
		authHandler,
		profileHandler,
		personaHandler,
		uploadHandler,
		templateHandler,
		generationHandler,
		cfg.Security.AllowedOrigins,
	)

	// Start the session and audit log maintenance loop
	sched := scheduler.NewMaintenanceScheduler(sessionRepo, auditRepo, log.Default(), cfg.Maintenance.Interval, cfg.Maintenance.AuditRetention)
	stopScheduler := sched.Start(context.Background())
	stopFuncs = append(stopFuncs, stopScheduler)

	// Create application struct from FiberRouter
	fiberRouter := appRouter.(*router.FiberRouter)
	application := &Application{
		router:    fiberRouter,
		config:    cfg,
		server:    fiberRouter.GetApp(),
		stopFuncs: stopFuncs,
	}

	return application, nil
}
