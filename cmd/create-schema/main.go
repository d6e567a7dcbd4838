package main

import (
	"context"
	"log"

	"sbc-validator-backend/config"
	"sbc-validator-backend/repository"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			log.Printf("Warning: No .env file found, using environment variables")
		}
	}

	cfg := config.Load()
	ctx := context.Background()

	store, err := repository.OpenRecordStore(ctx, cfg.StoreConfig())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to create schema: %v", err)
	}

	if repository.IsPostgresURL(cfg.Database.URL) {
		log.Println("✓ sbc_records table ready (postgres)")
	} else {
		log.Printf("✓ sbc_records table ready (sqlite: %s)", cfg.Database.SQLitePath)
	}

	records, err := store.List(ctx)
	if err != nil {
		log.Fatalf("Failed to verify schema: %v", err)
	}
	log.Printf("✓ Schema verified, %d existing records", len(records))
}
