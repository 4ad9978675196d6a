package main

import (
	"context"

	"waconsole/internal/config"
	"waconsole/internal/database"
	"waconsole/internal/realtime"
	"waconsole/internal/server"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Setup logger
	logger := cfg.SetupLogger()

	// Initialize database connection
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Database connection failed")
	}
	logger.Info().Msg("Database connection established successfully")

	hub := realtime.NewHub(logger)

	// With Redis configured, mutations publish through the bus and every
	// instance (this one included) forwards bus traffic into its local
	// hub. Without Redis the hub broadcasts directly.
	var publisher realtime.Publisher = hub
	if cfg.HasRedis() {
		bus, err := realtime.NewRedisBus(cfg.RedisAddr, cfg.RedisChannel, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("Redis connection failed")
		}
		defer bus.Close()

		if err := bus.StartForwarder(context.Background(), hub.Broadcast); err != nil {
			logger.Fatal().Err(err).Msg("Redis forwarder failed to start")
		}
		publisher = bus
		logger.Info().Str("addr", cfg.RedisAddr).Msg("Realtime fan-out via Redis enabled")
	}

	// Create and initialize server
	srv, err := server.New(cfg, db, logger, hub, publisher)
	if err != nil {
		logger.Fatal().Err(err).Msg("Server wiring failed")
	}
	srv.Initialize()

	// Start server
	if err := srv.Start(); err != nil {
		logger.Fatal().Err(err).Msg("Server failed to start")
	}
}
