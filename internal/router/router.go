package router

import (
	"log"
	"log/slog"

	"firebase.google.com/go/v4/auth"
	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/locketbot/backend/internal/handlers"
	"github.com/locketbot/backend/internal/middleware"
	"github.com/locketbot/backend/internal/models"
	"github.com/locketbot/backend/internal/ratelimit"
	"github.com/locketbot/backend/internal/repositories"
	"github.com/locketbot/backend/internal/services"
	"github.com/locketbot/backend/pkg/config"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// Deps bundles the external collaborators injected into the service layer.
type Deps struct {
	Postgres     *gorm.DB
	Mongo        *mongo.Client
	Redis        *redis.Client
	FirebaseAuth *auth.Client
	Channel      services.ChannelStore
	Notifier     services.Notifier
	Logger       *slog.Logger
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, cfg *config.Config, deps Deps) {
	// AutoMigrate PostgreSQL models
	err := deps.Postgres.AutoMigrate(
		&models.User{},
		&models.Connection{},
		&models.MediaItem{},
		&models.DeliveryRecord{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed for all models.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(deps.Postgres)
	connectionRepo := repositories.NewPostgresConnectionRepository(deps.Postgres)
	mediaRepo := repositories.NewPostgresMediaRepository(deps.Postgres)
	deliveryRepo := repositories.NewPostgresDeliveryRepository(deps.Postgres)
	momentRepo := repositories.NewMongoMomentRepository(deps.Mongo.Database("locket"))

	// --- Initialize Services ---
	limiter := ratelimit.New(deps.Redis)
	connectionService := services.NewConnectionService(userRepo, connectionRepo, deps.Logger)
	mediaStore := services.NewMediaStore(deps.Channel, deps.Logger)
	distributionService := services.NewDistributionService(
		connectionService, mediaRepo, deliveryRepo, momentRepo,
		mediaStore, deps.Notifier, limiter, deps.Logger,
	)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo, connectionService, deps.FirebaseAuth, cfg.JWTSecret)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Println("Auth routes configured.")

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	log.Println("JWT authentication middleware applied to /api/v1 group.")

	// Profile and settings routes
	userHandler := handlers.NewUserHandler(userRepo)
	userHandler.RegisterUserRoutes(api)
	log.Println("User routes configured.")

	// Connection graph routes
	connectionHandler := handlers.NewConnectionHandler(connectionService, userRepo, limiter)
	connectionHandler.RegisterConnectionRoutes(api)
	log.Println("Connection routes configured.")

	// Media distribution and feed routes
	mediaHandler := handlers.NewMediaHandler(distributionService, userRepo)
	mediaHandler.RegisterMediaRoutes(api)
	log.Println("Media routes configured.")

	log.Println("All routes configured.")
}
