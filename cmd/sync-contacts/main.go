package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"waconsole/internal/config"
	"waconsole/internal/database"
	"waconsole/internal/gateway"
	"waconsole/internal/sync"
)

func main() {
	// Parse command line flags
	timeout := flag.Duration("timeout", 10*time.Minute, "Overall sync timeout")
	flag.Parse()

	// Load configuration
	cfg := config.Load()
	logger := cfg.SetupLogger()

	if !cfg.HasGateway() {
		log.Fatal("WhatsApp gateway not configured: set WASENDER_BASE_URL and WASENDER_API_KEY")
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	contacts, err := database.NewContactService(db)
	if err != nil {
		log.Fatalf("Failed to create contact service: %v", err)
	}

	gw, err := gateway.NewClient(cfg.WasenderBaseURL, cfg.WasenderAPIKey)
	if err != nil {
		log.Fatalf("Failed to create gateway client: %v", err)
	}

	svc := sync.NewService(gw, contacts, logger, cfg.SyncBatchSize, cfg.SyncBatchDelayMs)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	fmt.Println("Pulling contact directory from gateway...")
	result, err := svc.Sync(ctx)
	if err != nil {
		log.Fatalf("Sync failed: %v", err)
	}

	fmt.Println("\n✓ Contact sync complete!")
	fmt.Printf("  - Directory size: %d contacts\n", result.Total)
	fmt.Printf("  - Synced:         %d\n", result.Synced)
	fmt.Printf("  - With avatars:   %d\n", result.WithImages)
}
