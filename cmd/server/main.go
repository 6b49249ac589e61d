package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/locketbot/backend/internal/router"
	"github.com/locketbot/backend/pkg/config"
	"github.com/locketbot/backend/pkg/discord"
	"github.com/locketbot/backend/pkg/firebase"
	"github.com/locketbot/backend/validators"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	// Initialize Redis (rate limiter counter store)
	rdb, err := config.InitRedis(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}
	defer rdb.Close()

	// Initialize Firebase
	ctx := context.Background()
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	// Initialize the Discord session (dump channel store + DM notifier)
	discordClient, err := discord.New(cfg.DiscordToken, cfg.DumpChannelID)
	if err != nil {
		log.Fatalf("Failed to initialize Discord: %v", err)
	}
	defer discordClient.Close()

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	router.SetupRoutes(e, cfg, router.Deps{
		Postgres:     db.Postgres,
		Mongo:        db.Mongo,
		Redis:        rdb,
		FirebaseAuth: firebaseApp.AuthClient,
		Channel:      discordClient,
		Notifier:     discordClient,
		Logger:       logger,
	})

	// Validator
	e.Validator = validators.NewValidator()

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
