package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	_ "github.com/securelearn/backend/docs"
	"github.com/securelearn/backend/internal/auth"
	"github.com/securelearn/backend/internal/config"
	"github.com/securelearn/backend/internal/handlers"
	"github.com/securelearn/backend/internal/logger"
	"github.com/securelearn/backend/internal/middlewares"
	"github.com/securelearn/backend/internal/repositories"
	"github.com/securelearn/backend/internal/services"
	"github.com/securelearn/backend/internal/storage"
)

// @title SecureLearn Learning API
// @version 1.0
// @description API for security-awareness courses, lessons, quizzes and AI-assisted content creation

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting SecureLearn Learning Service")

	// Connect to database
	db, err := connectDB(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := runMigrations(db); err != nil {
		logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize token validation
	tokenValidator := auth.NewTokenValidator(cfg.JWT.Secret)
	authMiddleware := auth.Middleware(tokenValidator)

	// Initialize repositories
	categoryRepo := repositories.NewCategoryRepository(db)
	courseRepo := repositories.NewCourseRepository(db)
	lessonRepo := repositories.NewLessonRepository(db)
	stepRepo := repositories.NewStepRepository(db)
	enrollmentRepo := repositories.NewEnrollmentRepository(db)
	quizRepo := repositories.NewQuizRepository(db)
	resultRepo := repositories.NewResultRepository(db)
	progressRepo := repositories.NewStepProgressRepository(db)

	// Initialize outbound clients and storage
	generationClient := services.NewGenerationClient(cfg.AI)
	extractorClient := services.NewExtractorClient(cfg.Extractor)
	uploadStorage := storage.NewLocalStorage(cfg.Uploads.BasePath)

	// Initialize services
	catalogService := services.NewCatalogService(categoryRepo, courseRepo, enrollmentRepo, logger.Logger)
	contentService := services.NewContentService(lessonRepo, stepRepo, courseRepo, enrollmentRepo, logger.Logger)
	quizService := services.NewQuizService(quizRepo, lessonRepo, courseRepo, enrollmentRepo, resultRepo, logger.Logger)
	scoringService := services.NewScoringService(quizRepo, resultRepo, logger.Logger)
	progressService := services.NewProgressService(progressRepo, stepRepo, lessonRepo, courseRepo, enrollmentRepo, quizRepo, resultRepo, logger.Logger)
	ingestionService := services.NewIngestionService(lessonRepo, stepRepo, courseRepo, quizRepo, generationClient, extractorClient, uploadStorage, cfg.Extractor.MinTextLength, logger.Logger)

	// Initialize handlers
	categoryHandler := handlers.NewCategoryHandler(catalogService, logger.Logger)
	courseHandler := handlers.NewCourseHandler(catalogService, progressService, logger.Logger)
	lessonHandler := handlers.NewLessonHandler(contentService, progressService, logger.Logger)
	quizHandler := handlers.NewQuizHandler(quizService, scoringService, logger.Logger)
	generationHandler := handlers.NewGenerationHandler(ingestionService, logger.Logger)

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(middlewares.RequestIDMiddleware)
	r.Use(middlewares.LoggerMiddleware(logger.Logger))
	r.Use(middlewares.RecoveryMiddleware(logger.Logger))
	r.Use(middlewares.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(httprate.LimitByIP(100, time.Minute))
	r.Use(middlewares.RequestSizeLimitMiddleware(10 * 1024 * 1024)) // 10MB

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port)),
	))

	// Register routes
	categoryHandler.RegisterRoutes(r, authMiddleware)
	courseHandler.RegisterRoutes(r, authMiddleware)
	lessonHandler.RegisterRoutes(r, authMiddleware)
	quizHandler.RegisterRoutes(r, authMiddleware)
	generationHandler.RegisterRoutes(r, authMiddleware)

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // generation calls can be slow
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}

// connectDB connects to the database
func connectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// runMigrations runs database migrations
func runMigrations(db *sql.DB) error {
	driver, err := mysql.WithInstance(db, &mysql.Config{
		MigrationsTable: "learn_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	migrationPath := "file://migrations"
	if _, err := os.Stat("migrations"); os.IsNotExist(err) {
		// Try parent directory if running from cmd
		if _, err := os.Stat("../migrations"); err == nil {
			migrationPath = "file://../migrations"
		}
	}

	m, err := migrate.NewWithDatabaseInstance(
		migrationPath,
		"mysql",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
