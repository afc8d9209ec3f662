package main

import (
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/localnerve/mapsdb/internal/cache"
	"github.com/localnerve/mapsdb/internal/config"
	"github.com/localnerve/mapsdb/internal/database"
	"github.com/localnerve/mapsdb/internal/logging"
	"github.com/localnerve/mapsdb/internal/middleware"
	"github.com/localnerve/mapsdb/internal/server"
	"github.com/localnerve/mapsdb/internal/services"
	"github.com/rs/zerolog/log"
)

// @title mapsdb API
// @version 1.0.0
// @description Projects, market areas, map configurations, presets, reference colors, enrichment usage and label positions
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/localnerve/mapsdb
// @contact.email info@localnerve.com

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// An .env file is optional; the environment wins over it
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatal().Err(err).Msg("Failed to load .env file")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	policy, err := services.NewProjectPolicy(cfg.ProjectVisibility)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid project visibility")
	}

	refCache, err := cache.NewReferenceCache()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create reference cache")
	}
	defer refCache.Close()

	app := server.New(server.Deps{
		Config: cfg,
		DB:     db,
		Cache:  refCache,
		Policy: policy,
		Auth: middleware.AuthConfig{
			Secret: []byte(cfg.JWTSecret),
			Issuer: cfg.JWTIssuer,
		},
	})

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Info().Msg("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	log.Info().Str("port", cfg.Port).Str("project_visibility", policy.Name()).Msg("Starting server")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}

	log.Info().Msg("Server stopped")
}
