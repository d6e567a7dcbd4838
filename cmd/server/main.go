package main

import (
	"context"
	"log"
	"log/slog"

	"sbc-validator-backend/config"
	"sbc-validator-backend/extraction"
	"sbc-validator-backend/handlers"
	"sbc-validator-backend/metrics"
	"sbc-validator-backend/repository"
	"sbc-validator-backend/service"
	"sbc-validator-backend/storage"
	"sbc-validator-backend/textextract"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	// Load .env from the current directory, then the project root
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			log.Printf("Warning: No .env file found, using environment variables")
		}
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx := context.Background()

	store, err := repository.OpenRecordStore(ctx, cfg.StoreConfig())
	if err != nil {
		log.Fatalf("Failed to open record store: %v", err)
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to prepare schema: %v", err)
	}
	if repository.IsPostgresURL(cfg.Database.URL) {
		log.Println("Postgres connection established")
	} else {
		log.Printf("Using SQLite database at %s", cfg.Database.SQLitePath)
	}

	docStorage, err := storage.NewStorage(cfg.StorageConfig())
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	log.Printf("Storage initialized (%s)", cfg.Storage.Type)

	logger := slog.Default()

	pdf := textextract.NewPDFExtractor(
		textextract.WithBinary(cfg.PDF.Binary),
		textextract.WithTimeout(cfg.PDF.Timeout),
		textextract.WithLogger(logger),
	)
	engine := extraction.NewEngine(
		extraction.WithPageExtractor(pdf),
		extraction.WithExplanationConfig(cfg.ExplanationConfig()),
	)

	collector := metrics.NewCollector(cfg.MetricsNS, prometheus.NewRegistry())

	recordService := service.NewRecordService(
		service.WithRecordStore(store),
		service.WithStorage(docStorage),
		service.WithEngine(engine),
		service.WithMetrics(collector),
		service.WithLogger(logger),
		service.WithPresignTTL(cfg.Storage.PresignTTL),
	)

	recordHandler := handlers.NewRecordHandler(recordService, cfg.Server.MaxUploadBytes, logger)

	r := gin.Default()
	r.MaxMultipartMemory = cfg.Server.MaxUploadBytes
	r.Use(handlers.CORS(handlers.DefaultCORSConfig(cfg.Server.CORSOrigins)))

	recordHandler.RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(collector.Handler()))

	log.Printf("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
