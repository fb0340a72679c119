package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"psychiatry-booking/config"
	deliveryHttp "psychiatry-booking/internal/delivery/http"
	"psychiatry-booking/internal/delivery/http/handler"
	"psychiatry-booking/internal/delivery/http/middleware"
	"psychiatry-booking/internal/infrastructure/cache"
	"psychiatry-booking/internal/infrastructure/database"
	"psychiatry-booking/internal/repository"
	"psychiatry-booking/internal/service"
	"psychiatry-booking/internal/usecase"
	"psychiatry-booking/pkg/jwt"
	"psychiatry-booking/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// App holds all dependencies for the application
type App struct {
	Config        *config.Config
	Log           *logrus.Logger
	DB            *gorm.DB
	RedisClient   *redis.Client
	Server        *http.Server
	DirectorySync *service.DirectorySyncService
}

// New creates a new App instance with all dependencies initialized.
// Pending migrations are applied before the server is built.
func New(configPath string) (*App, error) {
	app := &App{}

	// Load configuration
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	// Setup logger
	log := setupLogger(cfg.App.LogLevel)
	app.Log = log
	log.Info("Configuration loaded successfully")

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB, log, !cfg.IsProduction())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	log.Info("Database connected successfully")

	if err := database.RunMigrations(db, log, database.MigrateUp); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis, log)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	log.Info("Redis connected successfully")

	// Initialize all layers
	if err := app.initializeServer(); err != nil {
		app.Close()
		return nil, err
	}

	return app, nil
}

// Migrate applies or rolls back the schema without starting the server.
func Migrate(configPath string, direction database.MigrationDirection) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := setupLogger(cfg.App.LogLevel)

	db, err := database.NewPostgresConnection(cfg.DB, log, false)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer closeDB(db)

	return database.RunMigrations(db, log, direction)
}

// setupLogger configures the logrus logger
func setupLogger(level string) *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)
	return log
}

// initializeServer wires repositories, services, usecases and handlers
// and creates the HTTP server
func (app *App) initializeServer() error {
	cfg, db, log := app.Config, app.DB, app.Log

	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize repositories
	userRepo := repository.NewUserRepository()
	roleRepo := repository.NewRoleRepository()
	psychiatristRepo := repository.NewPsychiatristRepository()
	patientRepo := repository.NewPatientRepository()
	appointmentRepo := repository.NewAppointmentRequestRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	// Initialize services
	tokenStore := service.NewRedisTokenStore(app.RedisClient)
	directoryCache := service.NewRedisDirectoryCache(app.RedisClient, cfg.Cache.DirectoryTTL)
	auditService := service.NewAuditService(db, log, auditLogRepo)

	// Initialize usecases
	authUsecase := usecase.NewAuthUsecase(db, log, userRepo, roleRepo, psychiatristRepo, patientRepo, jwtService, tokenStore, directoryCache, auditService)
	appointmentUsecase := usecase.NewAppointmentUsecase(db, log, customValidator, appointmentRepo, psychiatristRepo)
	psychiatristUsecase := usecase.NewPsychiatristUsecase(db, log, customValidator, psychiatristRepo, directoryCache, auditService)
	patientUsecase := usecase.NewPatientUsecase(db, log, patientRepo)
	adminUsecase := usecase.NewAdminUsecase(db, log, psychiatristRepo, patientRepo, appointmentRepo)
	auditLogUsecase := usecase.NewAuditLogUsecase(db, log, auditLogRepo)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := authUsecase.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		return fmt.Errorf("failed to seed admin account: %w", err)
	}

	// Warm the directory cache; a cold cache only costs a database read
	app.DirectorySync = service.NewDirectorySyncService(db, psychiatristRepo, directoryCache, log, cfg.Cache.DirectoryTTL)
	if err := app.DirectorySync.SyncOnStartup(ctx); err != nil {
		log.Warnf("Directory cache left cold: %+v", err)
	}

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authUsecase, customValidator)
	appointmentHandler := handler.NewAppointmentHandler(appointmentUsecase)
	psychiatristHandler := handler.NewPsychiatristHandler(psychiatristUsecase)
	patientHandler := handler.NewPatientHandler(patientUsecase)
	adminHandler := handler.NewAdminHandler(adminUsecase)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(authUsecase)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.CORS.AllowedOrigins)
	loggingMiddleware := middleware.NewLoggingMiddleware(log)

	// Initialize router
	router := deliveryHttp.NewRouter(
		authHandler,
		appointmentHandler,
		psychiatristHandler,
		patientHandler,
		adminHandler,
		auditLogHandler,
		authMiddleware,
		corsMiddleware,
		loggingMiddleware,
	)

	// Create server
	app.Server = &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return nil
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() error {
	serverErr := make(chan error, 1)

	// Start server in goroutine
	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal or a listener failure
	return app.waitForShutdown(serverErr)
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown(serverErr <-chan error) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case <-quit:
	case runErr = <-serverErr:
		app.Log.Errorf("Failed to start server: %v", runErr)
	}

	app.Log.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	app.Log.Info("Server shutdown complete")
	return runErr
}

// Close stops background work and closes all connections
func (app *App) Close() {
	if app.DirectorySync != nil {
		app.DirectorySync.Stop()
	}

	if app.DB != nil {
		closeDB(app.DB)
	}

	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}

func closeDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err == nil {
		sqlDB.Close()
	}
}
